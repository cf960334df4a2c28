package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-converter/internal/batch"
	"github.com/insightdelivered/statement-converter/internal/buildinfo"
	"github.com/insightdelivered/statement-converter/internal/config"
	"github.com/insightdelivered/statement-converter/internal/converter"
	"github.com/insightdelivered/statement-converter/internal/extractor"
	"github.com/insightdelivered/statement-converter/internal/logger"
	"github.com/insightdelivered/statement-converter/internal/metrics"
)

// app carries the configuration and logger shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
	log zerolog.Logger
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "statement-converter",
		Short: "Convert SBI bank statement PDFs into transaction tables",
		Long: `Converts State Bank of India monthly statements and transaction history
exports into a date-ordered, numbered CSV or XLSX transaction table.`,
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a converter.yaml file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	rootCmd.AddCommand(
		newConvertCommand(a),
		newExtractCommand(a),
		newServeCommand(a),
		newConfigCommand(),
		newVersionCommand(),
	)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.log = logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Out:    cmd.ErrOrStderr(),
	})
	cmd.SetContext(logger.WithContext(cmd.Context(), a.log))
	return nil
}

func (a *app) service(m *metrics.Metrics) *converter.Service {
	return &converter.Service{
		Aggregator: &batch.Aggregator{
			Extractor: extractor.New(extractor.Options{
				Pdftotext: a.cfg.Extraction.Pdftotext,
				OCR:       a.cfg.Extraction.OCR,
			}),
			Metrics:       m,
			PageSeparator: string(a.cfg.Extraction.PageSeparator),
		},
		Metrics:  m,
		BankCode: a.cfg.BankCode,
	}
}
