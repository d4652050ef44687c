// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pharmasage/internal/logging"
	"github.com/pdiddy/pharmasage/internal/research"
)

// --- research command ---

var researchCmd = &cobra.Command{
	Use:   "research <website>",
	Short: "Run deep research on a company and print the discovered buyers",
	Long: `Research asks the configured LLM provider for a buyer-prospect report on
the company at <website> and prints the structured result. Set
research.use_mock (or PHARMASAGE_RESEARCH_USE_MOCK=true) to use the built-in
sample report instead of a live provider.

With --save the run is stored in the catalog like runs made through the API.`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	format, _ := cmd.Flags().GetString("format")
	save, _ := cmd.Flags().GetBool("save")
	products, _ := cmd.Flags().GetStringSlice("product")

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	var runs research.RunStore
	if save {
		store, err := openCatalog(ctx, cfg.Catalog, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer store.Close()
		runs = store
	}

	svc, err := newResearchService(cfg, runs, nil, logger)
	if err != nil {
		return err
	}

	run, err := svc.ResearchBuyers(ctx, name, args[0], products...)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), format, run)
}

// --- parse command ---

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a saved research report into structured results",
	Long: `Parse reads a markdown research report from [file] (or stdin when the
file is "-" or omitted) and prints the composed result without calling any
LLM provider. Use --report to print extraction diagnostics to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	website, _ := cmd.Flags().GetString("website")
	format, _ := cmd.Flags().GetString("format")
	showReport, _ := cmd.Flags().GetBool("report")

	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	if name == "" && website != "" {
		name = research.NameFromWebsite(website)
	}

	result, report := research.ComposeWithReport(string(data), name, website)
	if showReport {
		fmt.Fprintf(cmd.ErrOrStderr(), "strategy: %s, tables: %d, skipped rows: %d, buyers: %d\n",
			report.Strategy, report.Tables, report.SkippedRows, report.Buyers)
	}
	return writeOutput(cmd.OutOrStdout(), format, result)
}

// writeOutput encodes v as indented JSON or YAML.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q: use json or yaml", format)
	}
}

func init() {
	researchCmd.Flags().String("name", "", "company name (default: derived from the website)")
	researchCmd.Flags().String("format", "json", "output format: json or yaml")
	researchCmd.Flags().Bool("save", false, "store the run in the catalog")
	researchCmd.Flags().StringSlice("product", nil, "focus the research on these products (repeatable)")

	parseCmd.Flags().String("name", "", "source company name")
	parseCmd.Flags().String("website", "", "source company website")
	parseCmd.Flags().String("format", "json", "output format: json or yaml")
	parseCmd.Flags().Bool("report", false, "print extraction diagnostics to stderr")

	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(parseCmd)
}
