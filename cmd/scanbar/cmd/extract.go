package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/scanbar/internal/config"
	"github.com/MeKo-Tech/scanbar/internal/pipeline"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Extract barcodes from PDF files",
	Long: `Extract barcodes from PDF files by rasterizing every page and decoding
all barcodes found on it.

Each detected barcode is regenerated as clean PNG and SVG images and paired
with the nearest text label from the PDF text layer. In strict mode the raw
payload bytes of Code 128 and DataMatrix symbols are recovered and the
regenerated barcode reproduces them exactly.

Examples:
  scanbar extract document.pdf
  scanbar extract *.pdf --strict --output results.json
  scanbar extract scan.pdf --pages 1-5 --exclude 3`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         extractBarcodes,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	extractCmd.Flags().BoolP("strict", "s", false, "recover raw payload bytes and regenerate byte-exact barcodes")
	extractCmd.Flags().String("pages", "", "page range to process (e.g., '1-5', '1,3,5')")
	extractCmd.Flags().IntSlice("exclude", nil, "page numbers to skip")
	extractCmd.Flags().StringSlice("formats", nil,
		"barcode formats to detect (e.g., qrcode,datamatrix,code128; default: all)")
	extractCmd.Flags().Bool("debug", false, "retain the working directory with intermediate page images")
	extractCmd.Flags().Bool("ocr", false, "run OCR on pages without a text layer to recover labels")
	extractCmd.Flags().StringSlice("langs", nil, "OCR languages (default: eng)")
}

// extractConfig holds the resolved settings for one extract run.
type extractConfig struct {
	outputFile string
	opts       pipeline.Options
}

// configToExtractConfig maps centralized configuration to extractConfig.
// CLI flags override config file values.
func configToExtractConfig(centralCfg *config.Config, cmd *cobra.Command) (*extractConfig, error) {
	cfg := centralCfg
	if cmd.Flags().Changed("strict") {
		cfg.Pipeline.Strict, _ = cmd.Flags().GetBool("strict")
	}
	if cmd.Flags().Changed("debug") {
		cfg.Pipeline.Debug, _ = cmd.Flags().GetBool("debug")
	}
	if cmd.Flags().Changed("pages") {
		cfg.Pipeline.Pages, _ = cmd.Flags().GetString("pages")
	}
	if cmd.Flags().Changed("exclude") {
		cfg.Pipeline.Exclude, _ = cmd.Flags().GetIntSlice("exclude")
	}
	if cmd.Flags().Changed("formats") {
		cfg.Pipeline.Formats, _ = cmd.Flags().GetStringSlice("formats")
	}
	if cmd.Flags().Changed("ocr") {
		cfg.Pipeline.OCR.Enabled, _ = cmd.Flags().GetBool("ocr")
	}
	if cmd.Flags().Changed("langs") {
		cfg.Pipeline.OCR.Languages, _ = cmd.Flags().GetStringSlice("langs")
	}

	opts, err := cfg.ToPipelineOptions()
	if err != nil {
		return nil, err
	}

	outputFile := cfg.Output.File
	if cmd.Flags().Changed("output") {
		outputFile, _ = cmd.Flags().GetString("output")
	}

	return &extractConfig{outputFile: outputFile, opts: opts}, nil
}

// extractBarcodes handles the main extraction logic.
func extractBarcodes(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("no input files provided")
	}

	centralCfg := GetConfig()
	cfg, err := configToExtractConfig(centralCfg, cmd)
	if err != nil {
		return err
	}

	p, err := pipeline.NewBuilder().WithOptions(cfg.opts).Build()
	if err != nil {
		return err
	}

	results, err := p.ProcessFiles(cmd.Context(), args)
	if werr := writeResults(cmd, results, cfg.outputFile); werr != nil {
		return werr
	}
	return err
}

// writeResults serializes the document results to the output file or stdout.
// A single document is written as one object, multiple documents as an array.
func writeResults(cmd *cobra.Command, results []*pipeline.DocumentResult, outputFile string) error {
	if len(results) == 0 {
		return nil
	}

	var output string
	if len(results) == 1 {
		s, err := results[0].ToJSON()
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		output = s
	} else {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		output = string(data)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(output+"\n"), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), output)
	return nil
}
