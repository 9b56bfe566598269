package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"checkparser/internal/config"
	"checkparser/internal/logger"
	"checkparser/internal/pipeline"
	"checkparser/internal/report"
	"checkparser/pkg/models"
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse scanned checks and write a register report",
	Long: `Parse one or more scanned check files (PDF, PNG, JPEG or TIFF) and
write the extracted records as a formatted XLSX workbook and/or a CSV file.

Each PDF page and each image file counts as one check. Pages that cannot
be parsed are reported individually and do not stop the batch; the report
contains every check that parsed successfully plus a computed total.

Required environment variables:
  OPENAI_API_KEY - inference service API key`,
	Example: `  # Parse a multi-page PDF into check_register.xlsx
  checkparser parse remittance.pdf

  # Parse a mixed batch and write both report formats
  checkparser parse batch.pdf extra-check.png -o register.xlsx --csv register.csv

  # Print the record set as JSON instead of writing files
  checkparser parse remittance.pdf --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

// parseOutput is the JSON structure emitted with --json.
type parseOutput struct {
	Checks []jsonCheck `json:"checks"`
	Errors []string    `json:"errors,omitempty"`
	Total  float64     `json:"total"`
}

type jsonCheck struct {
	Seq         int     `json:"seq"`
	Payer       string  `json:"payer"`
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Bank        string  `json:"bank"`
	CheckNumber string  `json:"check_number"`
	Account     string  `json:"account"`
	Routing     string  `json:"routing"`
	Claim       string  `json:"claim"`
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringP("output", "o", "check_register.xlsx", "XLSX output path (empty to skip)")
	parseCmd.Flags().String("csv", "", "CSV output path (empty to skip)")
	parseCmd.Flags().Bool("json", false, "Print records as JSON to stdout instead of writing files")
	parseCmd.Flags().Int("timeout", 600, "Batch timeout in seconds")
}

func runParse(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("parse")

	xlsxPath, _ := cmd.Flags().GetString("output")
	csvPath, _ := cmd.Flags().GetString("csv")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	docs, err := loadDocuments(args, log)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	// Progress callbacks can arrive from concurrent workers.
	var barMu sync.Mutex
	var bar *progressbar.ProgressBar
	runner, err := pipeline.NewDefaultRunner(cfg.RenderDPI, pipeline.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimitRPM:   cfg.RateLimitRPM,
		OnProgress: func(completed, total int) {
			barMu.Lock()
			defer barMu.Unlock()
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Parsing checks"),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowCount(),
				)
			}
			_ = bar.Set(completed)
		},
	})
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx, docs)
	if err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	for _, docErr := range result.DocumentErrors {
		log.Warn().Err(docErr).Msg("Document skipped")
	}
	for _, page := range result.Failed() {
		log.Warn().Err(page.Err).Int("page", page.Index).Msg("Check not parsed")
	}

	records, totalCents := report.Aggregate(result)
	log.Info().
		Int("pages", len(result.Pages)).
		Int("parsed", len(records)).
		Int("failed", len(result.Pages)-len(records)).
		Str("total", fmt.Sprintf("$%.2f", float64(totalCents)/100)).
		Msg("Batch complete")

	if jsonOutput {
		return printJSON(cmd, result, records, totalCents)
	}

	if xlsxPath != "" {
		data, err := report.WriteXLSX(records, totalCents)
		if err != nil {
			return fmt.Errorf("build XLSX report: %w", err)
		}
		if err := os.WriteFile(xlsxPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", xlsxPath, err)
		}
		log.Info().Str("file", xlsxPath).Msg("Wrote XLSX report")
	}

	if csvPath != "" {
		data, err := report.WriteCSV(records, totalCents)
		if err != nil {
			return fmt.Errorf("build CSV report: %w", err)
		}
		if err := os.WriteFile(csvPath, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", csvPath, err)
		}
		log.Info().Str("file", csvPath).Msg("Wrote CSV report")
	}

	return nil
}

// loadDocuments reads the input files and tags each with a MIME type
// inferred from its extension.
func loadDocuments(paths []string, log zerolog.Logger) ([]models.RawDocument, error) {
	docs := make([]models.RawDocument, 0, len(paths))
	for _, path := range paths {
		mimeType, err := mimeTypeFor(path)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("file is empty: %s", path)
		}
		log.Debug().Str("file", path).Str("mime", mimeType).Int("bytes", len(data)).Msg("Loaded input")
		docs = append(docs, models.RawDocument{
			Name:     filepath.Base(path),
			MIMEType: mimeType,
			Data:     data,
		})
	}
	return docs, nil
}

func mimeTypeFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf", nil
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	case ".tif", ".tiff":
		return "image/tiff", nil
	default:
		return "", fmt.Errorf("unsupported file type: %s (expected pdf, png, jpg, jpeg, tif or tiff)", path)
	}
}

// signalContext creates a context with timeout that is also canceled on
// SIGINT/SIGTERM so an interrupted batch stops dispatching new pages.
func signalContext(timeout time.Duration, log zerolog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info().Str("signal", sig.String()).Msg("Interrupt received, stopping batch")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

func printJSON(cmd *cobra.Command, result models.BatchResult, records []models.IndexedRecord, totalCents int64) error {
	out := parseOutput{
		Checks: make([]jsonCheck, 0, len(records)),
		Total:  float64(totalCents) / 100,
	}
	for _, r := range records {
		out.Checks = append(out.Checks, jsonCheck{
			Seq:         r.Seq,
			Payer:       r.Payer,
			Date:        r.Date,
			Amount:      r.Amount(),
			Bank:        r.Bank,
			CheckNumber: r.CheckNumber,
			Account:     r.Account,
			Routing:     r.Routing,
			Claim:       r.Claim,
		})
	}
	for _, docErr := range result.DocumentErrors {
		out.Errors = append(out.Errors, docErr.Error())
	}
	for _, page := range result.Failed() {
		out.Errors = append(out.Errors, fmt.Sprintf("check %d: %v", page.Index, page.Err))
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
