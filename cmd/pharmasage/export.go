// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharmasage/internal/catalog"
	"github.com/pdiddy/pharmasage/internal/export"
)

const cliExportLimit = 1000

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export catalog data or a research run to CSV, XLSX or JSON",
	Long: `Export writes prospects, products, companies, contacts, or a stored
research run (--type research --run <id>) to the export directory and prints
the written file's path.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("type")
	formatName, _ := cmd.Flags().GetString("format")
	runID, _ := cmd.Flags().GetString("run")
	withContacts, _ := cmd.Flags().GetBool("contacts")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return err
	}
	defer store.Close()

	exporter, err := export.New(cfg.Export)
	if err != nil {
		return err
	}

	ctx := context.Background()
	var dataset export.Dataset
	switch kind {
	case "prospects":
		prospects, err := store.MatchProspects(ctx, catalog.MatchQuery{Limit: cliExportLimit})
		if err != nil {
			return err
		}
		dataset = export.Prospects(prospects, withContacts)
	case "products":
		products, err := store.SearchProducts(ctx, "", cliExportLimit)
		if err != nil {
			return err
		}
		dataset = export.Products(products)
	case "companies":
		companies, err := store.SearchCompanies(ctx, catalog.CompanyQuery{Limit: cliExportLimit})
		if err != nil {
			return err
		}
		dataset = export.Companies(companies)
	case "contacts":
		contacts, err := store.SearchContacts(ctx, catalog.ContactQuery{Limit: cliExportLimit})
		if err != nil {
			return err
		}
		dataset = export.Contacts(contacts)
	case "research":
		if runID == "" {
			return fmt.Errorf("--run is required for research exports")
		}
		run, err := store.GetResearchRun(ctx, runID)
		if err != nil {
			return err
		}
		dataset = export.ResearchRun(run)
	default:
		return fmt.Errorf("unknown export type %q: use prospects, products, companies, contacts or research", kind)
	}

	file, err := exporter.Write(dataset, format)
	if err != nil {
		return err
	}
	path, _, err := exporter.Open(file.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func init() {
	exportCmd.Flags().String("type", "prospects", "data to export: prospects, products, companies, contacts, research")
	exportCmd.Flags().String("format", "csv", "file format: csv, xlsx or json")
	exportCmd.Flags().String("run", "", "research run id (for --type research)")
	exportCmd.Flags().Bool("contacts", true, "include key contacts in prospect exports")
	rootCmd.AddCommand(exportCmd)
}
