package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/encuestas-platform/client-layer/internal/domain/survey"
)

func newSurveysCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveys",
		Short: "Gestiona las encuestas del usuario",
	}
	cmd.AddCommand(
		newSurveysListCmd(a),
		newSurveysGetCmd(a),
		newSurveysCreateCmd(a),
		newSurveysUpdateCmd(a),
		newSurveysUpdateStatusCmd(a),
		newSurveysPublishCmd(a),
		newSurveysCloseCmd(a),
		newSurveysDeleteCmd(a),
		newSurveysDuplicateCmd(a),
	)
	return cmd
}

func newSurveysListCmd(a **app) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista las encuestas",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			(*a).surveys.FetchSurveys(cmd.Context())
			if msg := (*a).surveys.LastError(); msg != "" {
				return fmt.Errorf("%s", msg)
			}

			list := (*a).surveys.Snapshot().Surveys
			if status != "" {
				list = (*a).surveys.SurveysByStatus(survey.Status(status))
			}
			for _, sv := range list {
				fmt.Printf("%-36s  %-10s  v%-3d  %4d respuestas  %s\n",
					sv.ID, sv.Status, sv.Version, sv.ResponseCount(), sv.Name)
			}
			fmt.Printf("\n%d encuestas, %d publicadas, %d respuestas en total\n",
				(*a).surveys.TotalSurveys(), len((*a).surveys.ActiveSurveys()), (*a).surveys.TotalResponses())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filtra por estado (CREADA, PUBLICADA, PAUSADA, FINALIZADA)")
	return cmd
}

func newSurveysGetCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Muestra una encuesta completa",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			sv, err := (*a).surveys.FetchSurvey(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			return printJSON(sv)
		},
	}
}

func newSurveysCreateCmd(a **app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea una encuesta desde un archivo JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			req, err := readCreateRequest(file)
			if err != nil {
				return err
			}
			created, err := (*a).surveys.CreateSurvey(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta creada: %s (%s)\n", created.ID, created.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "archivo JSON con la encuesta (- para stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSurveysUpdateCmd(a **app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Actualiza una encuesta con datos parciales JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			data, err := readInput(file)
			if err != nil {
				return fmt.Errorf("leer cambios: %w", err)
			}
			var req survey.UpdateRequest
			if err := json.Unmarshal(data, &req); err != nil {
				return fmt.Errorf("parsear cambios: %w", err)
			}
			sv, err := (*a).surveys.UpdateSurvey(cmd.Context(), args[0], req)
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta %s actualizada (v%d)\n", sv.ID, sv.Version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "archivo JSON con los cambios (- para stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newSurveysUpdateStatusCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <estado>",
		Short: "Cambia el estado de una encuesta",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			sv, err := (*a).surveys.UpdateSurveyStatus(cmd.Context(), args[0], survey.Status(args[1]))
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta %s ahora en estado %s\n", sv.ID, sv.Status)
			return nil
		},
	}
}

func newSurveysPublishCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "publish <id>",
		Short: "Publica una encuesta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			sv, err := (*a).surveys.PublishSurvey(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta %s publicada", sv.ID)
			if sv.Code != "" {
				fmt.Printf(" con código %s", sv.Code)
			}
			fmt.Println()
			return nil
		},
	}
}

func newSurveysCloseCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "close <id>",
		Short: "Cierra una encuesta",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			sv, err := (*a).surveys.CloseSurvey(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta %s finalizada\n", sv.ID)
			return nil
		},
	}
}

func newSurveysDeleteCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina una encuesta permanentemente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			if err := (*a).surveys.DeleteSurvey(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta %s eliminada\n", args[0])
			return nil
		},
	}
}

func newSurveysDuplicateCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Duplica una encuesta existente",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAdmin(); err != nil {
				return err
			}
			sv, err := (*a).surveys.DuplicateSurvey(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("%s", (*a).surveys.LastError())
			}
			fmt.Printf("Encuesta duplicada: %s (%s)\n", sv.ID, sv.Name)
			return nil
		},
	}
}

func readInput(file string) ([]byte, error) {
	if file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

func readCreateRequest(file string) (survey.CreateRequest, error) {
	data, err := readInput(file)
	if err != nil {
		return survey.CreateRequest{}, fmt.Errorf("leer encuesta: %w", err)
	}

	var req survey.CreateRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return survey.CreateRequest{}, fmt.Errorf("parsear encuesta: %w", err)
	}
	return req, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
