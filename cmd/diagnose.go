package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	app "leaf-doctor/internal/application"
	"leaf-doctor/internal/domain/entity"
	"leaf-doctor/internal/infrastructure/onnx"
)

func diagnoseCmd(flags *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diagnose <image>",
		Short: "Diagnose a single leaf photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(flags)
			if err != nil {
				return err
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			diseases, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			loaded, err := loadModel(cfg, logger)
			if err != nil {
				return err
			}
			defer onnx.Shutdown()

			svc := app.NewDiagnosisService(loaded.preprocessor, loaded.classifier, diseases, nil,
				float32(cfg.Diagnosis.Threshold), logger)

			d, err := svc.Diagnose(cmd.Context(), app.DiagnosisInput{
				Data:     data,
				Filename: filepath.Base(args[0]),
				Source:   entity.SourceUpload,
			})
			if err != nil {
				return err
			}

			if asJSON {
				return writeDiagnosisJSON(cmd.OutOrStdout(), d)
			}
			writeDiagnosisText(cmd.OutOrStdout(), d)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func diseasesCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "diseases",
		Short: "Print the disease reference table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := bootstrap(flags)
			if err != nil {
				return err
			}
			diseases, err := loadCatalog(cfg)
			if err != nil {
				return err
			}
			writeDiseases(cmd.OutOrStdout(), app.NewDiseaseService(diseases).List())
			return nil
		},
	}
}

// diagnosisOutput машинный вывод команды diagnose.
type diagnosisOutput struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	Filename      string             `json:"filename"`
	Label         string             `json:"label"`
	Confidence    float32            `json:"confidence"`
	Probabilities map[string]float32 `json:"probabilities"`
	Threshold     float32            `json:"threshold"`
	Recognized    bool               `json:"recognized"`
	Disease       *diseaseOutput     `json:"disease,omitempty"`
}

type diseaseOutput struct {
	Label       string   `json:"label"`
	Description string   `json:"description"`
	Treatment   []string `json:"treatment"`
	Image       string   `json:"image,omitempty"`
}

func writeDiagnosisJSON(w io.Writer, d *entity.Diagnosis) error {
	out := diagnosisOutput{
		ID:            d.ID,
		CreatedAt:     d.CreatedAt,
		Filename:      d.Filename,
		Label:         d.Prediction.Label,
		Confidence:    d.Prediction.Confidence,
		Probabilities: d.Prediction.Probabilities,
		Threshold:     d.Threshold,
		Recognized:    d.Accepted,
	}
	if d.Disease != nil {
		out.Disease = &diseaseOutput{
			Label:       d.Disease.Label,
			Description: d.Disease.Description,
			Treatment:   d.Disease.Treatment,
			Image:       d.Disease.Image,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeDiagnosisText(w io.Writer, d *entity.Diagnosis) {
	if !d.Accepted {
		fmt.Fprintln(w, "⚠️ Gambar ini kemungkinan bukan daun jambu mete.")
		fmt.Fprintf(w, "Prediksi: %s\n", d.Prediction.Label)
		fmt.Fprintf(w, "Keyakinan: %s\n", d.ConfidencePercent())
		return
	}

	fmt.Fprintf(w, "✅ Gambar dikenali sebagai: %s\n", d.Prediction.Label)
	fmt.Fprintf(w, "Keyakinan: %s\n", d.ConfidencePercent())
	if d.Disease != nil {
		fmt.Fprintln(w)
		writeDisease(w, *d.Disease)
	}
}

func writeDiseases(w io.Writer, list []entity.Disease) {
	for i, d := range list {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeDisease(w, d)
	}
}

func writeDisease(w io.Writer, d entity.Disease) {
	fmt.Fprintf(w, "📌 %s\n", d.Label)
	fmt.Fprintf(w, "Deskripsi: %s\n", d.Description)
	fmt.Fprintln(w, "Penanganan:")
	fmt.Fprintln(w, d.TreatmentText())
}
