package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newResponsesCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "responses",
		Short: "Consulta las respuestas de una encuesta",
	}
	cmd.AddCommand(
		newResponsesListCmd(a),
		newResponsesStatsCmd(a),
		newResponsesExportCmd(a),
	)
	return cmd
}

func newResponsesListCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <survey-id>",
		Short: "Lista las respuestas recibidas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			list, err := (*a).responses.BySurvey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			for _, resp := range list {
				fmt.Printf("%-36s  %s  %d respuestas\n", resp.ID, resp.SubmittedAt, len(resp.Answers))
			}
			fmt.Printf("\n%d envíos\n", len(list))
			return nil
		},
	}
}

func newResponsesStatsCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <survey-id>",
		Short: "Muestra estadísticas agregadas",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			stats, err := (*a).responses.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(stats)
		},
	}
}

func newResponsesExportCmd(a **app) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <survey-id>",
		Short: "Exporta las respuestas en CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).requireAuth(); err != nil {
				return err
			}
			data, err := (*a).responses.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Exportadas a %s (%d bytes)\n", out, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "archivo destino (- para stdout)")
	return cmd
}

func newSubmitCmd(a **app) *cobra.Command {
	var answersJSON string

	cmd := &cobra.Command{
		Use:   "submit <survey-id>",
		Short: "Envía una respuesta pública a una encuesta",
		Long: `Envía una respuesta usando el cliente público, sin credencial.
Las respuestas se pasan como un objeto JSON de questionId a valor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var answers map[string]interface{}
			if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
				return fmt.Errorf("parsear respuestas: %w", err)
			}
			if len(answers) == 0 {
				return fmt.Errorf("se requiere al menos una respuesta")
			}
			if err := (*a).responses.Submit(cmd.Context(), args[0], answers); err != nil {
				return err
			}
			fmt.Println("Respuesta enviada")
			return nil
		},
	}
	cmd.Flags().StringVar(&answersJSON, "answers", "", `respuestas JSON, ej. '{"q1":"Sí","q2":4}'`)
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}
