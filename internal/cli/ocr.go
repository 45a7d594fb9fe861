package cli

import (
	"fmt"
	"os"

	"lawdesk/internal/config"
	"lawdesk/internal/ocr"

	"github.com/spf13/cobra"
)

func newExtractor(cfg config.Config) *ocr.Extractor {
	return ocr.New(
		ocr.WithDPI(cfg.OCR.DPI),
		ocr.WithBinaries(cfg.OCR.Pdftoppm, cfg.OCR.Tesseract),
	)
}

func newOCRCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ocr FILE.pdf [FILE.pdf...]",
		Short: "Extract text from scanned PDFs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ext := newExtractor(cfg)

			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				text, err := ext.ExtractPDF(cmd.Context(), f)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), text)
				return nil
			}

			results, err := ext.ExtractFiles(cmd.Context(), args)
			for _, path := range args {
				text, ok := results[path]
				if !ok {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "==> %s <==\n%s\n", path, text)
			}
			return err
		},
	}

	return cmd
}
