// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/pharmasage/pkg/types"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedData is the shape of the built-in sample catalog.
type SeedData struct {
	Regions   []string         `yaml:"regions"`
	Products  []types.Product  `yaml:"products"`
	Companies []types.Company  `yaml:"companies"`
	Prospects []types.Prospect `yaml:"prospects"`
	Contacts  []types.Contact  `yaml:"contacts"`
	Market    MarketSeed       `yaml:"market"`
}

// MarketSeed is the market dashboard part of the sample catalog.
// Indicators is keyed by the MarketTrends field it fills, e.g.
// "global_trade_volume".
type MarketSeed struct {
	Indicators        map[string]types.Indicator `yaml:"indicators"`
	RegionalBreakdown []types.RegionalVolume     `yaml:"regional_breakdown"`
	MonthlyTrends     []types.MonthlyTrend       `yaml:"monthly_trends"`
	Exporters         []types.Exporter           `yaml:"exporters"`
	TopProducts       []types.ProductSales       `yaml:"top_products"`
}

// LoadSeed decodes the built-in sample catalog.
func LoadSeed() (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(seedYAML, &data); err != nil {
		return SeedData{}, fmt.Errorf("parsing seed data: %w", err)
	}
	return data, nil
}

// IsEmpty reports whether the catalog holds no products, companies or
// prospects.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT (SELECT count(*) FROM products) + (SELECT count(*) FROM companies) + (SELECT count(*) FROM prospects)`,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking catalog: %w", err)
	}
	return n == 0, nil
}

// Seed loads the built-in sample catalog. Existing records with the same
// ids are replaced, so seeding twice is harmless. Progress is written to w.
func (s *Store) Seed(ctx context.Context, w io.Writer) error {
	data, err := LoadSeed()
	if err != nil {
		return err
	}
	if err := s.load(ctx, data); err != nil {
		return err
	}
	fmt.Fprintf(w, "seeded %d regions, %d products, %d companies, %d prospects, %d contacts, %d exporters\n",
		len(data.Regions), len(data.Products), len(data.Companies), len(data.Prospects), len(data.Contacts),
		len(data.Market.Exporters))
	return nil
}

func (s *Store) load(ctx context.Context, data SeedData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, region := range data.Regions {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO regions (name, position) VALUES (?, ?)`, region, i,
		); err != nil {
			return fmt.Errorf("inserting region %s: %w", region, err)
		}
	}

	for _, p := range data.Products {
		synonyms, _ := json.Marshal(nonNil(p.Synonyms))
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO products (id, api_name, synonyms, code, form, therapeutic_category)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.APIName, string(synonyms), p.Code, p.Form, p.TherapeuticCategory,
		); err != nil {
			return fmt.Errorf("inserting product %s: %w", p.ID, err)
		}
	}

	for _, c := range data.Companies {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO companies (id, name, country, sector, size) VALUES (?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Country, c.Sector, c.Size,
		); err != nil {
			return fmt.Errorf("inserting company %s: %w", c.ID, err)
		}
	}

	for _, p := range data.Prospects {
		if err := upsertProspect(ctx, tx, p); err != nil {
			return err
		}
	}

	for _, c := range data.Contacts {
		if err := insertContact(ctx, tx, c, ""); err != nil {
			return err
		}
	}

	if err := loadMarket(ctx, tx, data.Market); err != nil {
		return err
	}

	return tx.Commit()
}

func loadMarket(ctx context.Context, tx execer, m MarketSeed) error {
	for name, ind := range m.Indicators {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO market_indicators (name, value, unit, currency, change, trend)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			name, ind.Value, ind.Unit, ind.Currency, ind.Change, ind.Trend,
		); err != nil {
			return fmt.Errorf("inserting indicator %s: %w", name, err)
		}
	}

	for i, r := range m.RegionalBreakdown {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO regional_volumes (name, volume, growth, color, position) VALUES (?, ?, ?, ?, ?)`,
			r.Name, r.Volume, r.Growth, r.Color, i,
		); err != nil {
			return fmt.Errorf("inserting regional volume %s: %w", r.Name, err)
		}
	}

	for i, t := range m.MonthlyTrends {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO monthly_trends (position, month, value, color) VALUES (?, ?, ?, ?)`,
			i, t.Month, t.Value, t.Color,
		); err != nil {
			return fmt.Errorf("inserting monthly trend %s: %w", t.Month, err)
		}
	}

	for _, e := range m.Exporters {
		products, _ := json.Marshal(nonNil(e.Products))
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO exporters (rank, company, country, region, volume, market_share, growth, products)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.Rank, e.Company, e.Country, e.Region, e.Volume, e.MarketShare, e.Growth, string(products),
		); err != nil {
			return fmt.Errorf("inserting exporter %s: %w", e.Company, err)
		}
	}

	for _, p := range m.TopProducts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO top_products (rank, name, category, volume, growth) VALUES (?, ?, ?, ?, ?)`,
			p.Rank, p.Name, p.Category, p.Volume, p.Growth,
		); err != nil {
			return fmt.Errorf("inserting top product %s: %w", p.Name, err)
		}
	}
	return nil
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
