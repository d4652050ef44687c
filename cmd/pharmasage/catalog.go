// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pharmasage/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the catalog database (seed, search, runs, exporters)",
	Long: `Catalog manages the local SQLite database of products, companies,
prospects, contacts and stored research runs.`,
}

// --- seed subcommand ---

var catalogSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in sample catalog",
	Long: `Seed loads the built-in sample products, companies, prospects and
contacts. Records with the same ids are replaced, so seeding is repeatable.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := newCatalogStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Seed(context.Background(), cmd.OutOrStdout())
	},
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search catalog products, or companies with --companies",
	RunE:  runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	companies, _ := cmd.Flags().GetBool("companies")
	country, _ := cmd.Flags().GetString("country")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	query := strings.Join(args, " ")

	store, err := newCatalogStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	if companies {
		results, err := store.SearchCompanies(ctx, catalog.CompanyQuery{Query: query, Country: country, Limit: limit})
		if err != nil {
			return err
		}
		if format != "table" {
			return writeOutput(out, format, results)
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOUNTRY\tSECTOR\tSIZE")
		for _, c := range results {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Country, c.Sector, c.Size)
		}
		return tw.Flush()
	}

	results, err := store.SearchProducts(ctx, query, limit)
	if err != nil {
		return err
	}
	if format != "table" {
		return writeOutput(out, format, results)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAPI NAME\tCODE\tCATEGORY\tSYNONYMS")
	for _, p := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.APIName, p.Code, p.TherapeuticCategory, strings.Join(p.Synonyms, ", "))
	}
	return tw.Flush()
}

// --- runs subcommand ---

var catalogRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored research runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := newCatalogStore()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.ListResearchRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No research runs stored.")
			return nil
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tCOMPANY\tWEBSITE\tSTRATEGY\tBUYERS")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", r.ID, r.CreatedAt, r.CompanyName, r.CompanyWebsite,
				r.Result.ExtractionStrategy, len(r.Result.DiscoveredBuyers))
		}
		return tw.Flush()
	},
}

// --- exporters subcommand ---

var catalogExportersCmd = &cobra.Command{
	Use:   "exporters",
	Short: "Rank the top pharmaceutical exporters",
	RunE: func(cmd *cobra.Command, args []string) error {
		region, _ := cmd.Flags().GetString("region")
		productType, _ := cmd.Flags().GetString("product-type")
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

		store, err := newCatalogStore()
		if err != nil {
			return err
		}
		defer store.Close()

		exporters, err := store.TopExporters(context.Background(), catalog.ExporterQuery{
			Region:      region,
			ProductType: productType,
			Limit:       limit,
		})
		if err != nil {
			return err
		}
		if format != "table" {
			return writeOutput(cmd.OutOrStdout(), format, exporters)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "RANK\tCOMPANY\tCOUNTRY\tVOLUME\tSHARE\tGROWTH")
		for _, e := range exporters {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f%%\t%s\n", e.Rank, e.Company, e.Country, e.Volume, e.MarketShare, e.Growth)
		}
		return tw.Flush()
	},
}

// newCatalogStore opens the catalog named by the current configuration
// without seeding it.
func newCatalogStore() (*catalog.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return catalog.NewStore(cfg.Catalog)
}

func init() {
	catalogSearchCmd.Flags().Bool("companies", false, "search companies instead of products")
	catalogSearchCmd.Flags().String("country", "", "restrict company results to a country")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().String("format", "table", "output format: table, json or yaml")

	catalogRunsCmd.Flags().Int("limit", 20, "maximum runs to list")

	catalogExportersCmd.Flags().String("region", "", "restrict to a region or country")
	catalogExportersCmd.Flags().String("product-type", "", "restrict to exporters of a product line")
	catalogExportersCmd.Flags().Int("limit", 0, "maximum results (0 = 5)")
	catalogExportersCmd.Flags().String("format", "table", "output format: table, json or yaml")

	catalogCmd.AddCommand(catalogSeedCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogRunsCmd)
	catalogCmd.AddCommand(catalogExportersCmd)

	rootCmd.AddCommand(catalogCmd)
}
