// Command surveyctl is the terminal front-end for the Encuestas platform:
// it drives the session and survey collection stores the same way the web
// views do.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/encuestas-platform/client-layer/internal/config"
	"github.com/encuestas-platform/client-layer/internal/httputil"
	"github.com/encuestas-platform/client-layer/internal/persist"
	authsvc "github.com/encuestas-platform/client-layer/internal/services/auth"
	responsesvc "github.com/encuestas-platform/client-layer/internal/services/response"
	surveysvc "github.com/encuestas-platform/client-layer/internal/services/survey"
	"github.com/encuestas-platform/client-layer/internal/store/session"
	"github.com/encuestas-platform/client-layer/internal/store/surveys"
	"github.com/encuestas-platform/client-layer/pkg/logger"
)

// app bundles the wired client layer for the commands.
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	authSvc   *authsvc.Service
	responses *responsesvc.Service
	session   *session.Store
	surveys   *surveys.Store
}

// buildApp wires config, storage, clients, services, and stores. InitAuth
// runs to completion here: no command sees a credential without a valid
// user behind it.
func buildApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logger.New("surveyctl", cfg.LogLevel)

	storage, err := persist.NewFileStorage(cfg.DataDir)
	if err != nil {
		return nil, err
	}
	adapter := persist.NewAdapter(storage, persist.DefaultConfig(), log)

	// The session store is both consumer of the auth service and token
	// source of the client the service runs on; the proxy breaks the loop.
	var sess *session.Store
	client := httputil.NewClient(httputil.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Tokens: httputil.TokenFunc(func() string {
			if sess == nil {
				return ""
			}
			return sess.Token()
		}),
	})
	public := httputil.NewClient(httputil.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})

	auth := authsvc.New(client)
	sess = session.New(auth, adapter, log)
	sess.InitAuth(ctx)

	return &app{
		cfg:       cfg,
		log:       log,
		authSvc:   auth,
		responses: responsesvc.New(client, public),
		session:   sess,
		surveys:   surveys.New(surveysvc.New(client), adapter, log),
	}, nil
}

// requireAuth guards protected commands, the CLI equivalent of the
// router's navigation guard.
func (a *app) requireAuth() error {
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("no hay sesión activa: ejecuta `surveyctl login` primero")
	}
	return nil
}

// requireAdmin guards administrative commands.
func (a *app) requireAdmin() error {
	if err := a.requireAuth(); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return fmt.Errorf("esta operación requiere rol de administrador")
	}
	return nil
}

func main() {
	var configPath string
	var a *app

	rootCmd := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Administra encuestas y respuestas de la plataforma Encuestas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = buildApp(cmd.Context(), configPath)
			return err
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "ruta del archivo de configuración YAML")

	rootCmd.AddCommand(
		newLoginCmd(&a),
		newLogoutCmd(&a),
		newWhoamiCmd(&a),
		newSurveysCmd(&a),
		newResponsesCmd(&a),
		newSubmitCmd(&a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLoginCmd(a **app) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Inicia sesión y guarda la credencial",
		RunE: func(cmd *cobra.Command, args []string) error {
			result := (*a).session.Login(cmd.Context(), username, password)
			if !result.Success {
				return fmt.Errorf("login fallido: %s", result.Error)
			}
			snap := (*a).session.Snapshot()
			fmt.Printf("Sesión iniciada como %s\n", snap.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "nombre de usuario")
	cmd.Flags().StringVarP(&password, "password", "p", "", "contraseña")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Cierra la sesión actual",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Best-effort server-side logout; the local session is cleared
			// regardless.
			if (*a).session.IsAuthenticated() {
				if err := (*a).authSvc.Logout(cmd.Context()); err != nil {
					(*a).log.WithError(err).Warn("server-side logout failed")
				}
			}
			(*a).session.Logout()
			fmt.Println("Sesión cerrada")
			return nil
		},
	}
}

func newWhoamiCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Muestra el usuario autenticado",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			snap := (*a).session.Snapshot()
			if snap.User == nil {
				return fmt.Errorf("credencial presente pero usuario no cargado")
			}
			fmt.Printf("%s (%s %s) roles=%v\n",
				snap.User.Username, snap.User.FirstName, snap.User.LastName, snap.User.Roles)
			return nil
		},
	}
}
