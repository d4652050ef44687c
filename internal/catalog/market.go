// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pharmasage/pkg/types"
)

const (
	defaultExporters   = 5
	defaultTopProducts = 10
	defaultTrendPeriod = "12m"
)

// trendPeriod matches "6m" or "2y".
var trendPeriod = regexp.MustCompile(`^(\d+)([my])$`)

// TrendsQuery holds parameters for the market dashboard.
type TrendsQuery struct {
	// Region keeps only that region in the regional breakdown.
	Region string

	// Period limits the monthly trends to the most recent months, written
	// as "3m" or "2y". Empty means 12m.
	Period string
}

// ExporterQuery holds parameters for the top exporter ranking.
type ExporterQuery struct {
	// Region matches the exporter's region or country, ignoring case.
	Region string

	// ProductType matches a substring of one of the exporter's product lines.
	ProductType string

	// Limit caps the result count. Zero means 5.
	Limit int
}

// ProductSalesQuery holds parameters for the top product ranking.
type ProductSalesQuery struct {
	// Category is an exact, case-insensitive filter.
	Category string

	// Limit caps the result count. Zero means 10.
	Limit int
}

// periodMonths converts a trend period to a month count.
func periodMonths(period string) (int, error) {
	period = strings.ToLower(strings.TrimSpace(period))
	if period == "" {
		period = defaultTrendPeriod
	}
	m := trendPeriod.FindStringSubmatch(period)
	if m == nil {
		return 0, fmt.Errorf("%w: time period %q", ErrInvalid, period)
	}
	n, _ := strconv.Atoi(m[1])
	if m[2] == "y" {
		n *= 12
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: time period %q", ErrInvalid, period)
	}
	return n, nil
}

// MarketTrends returns the headline indicators, the regional breakdown and
// the monthly trend index for the requested period.
func (s *Store) MarketTrends(ctx context.Context, q TrendsQuery) (types.MarketTrends, error) {
	months, err := periodMonths(q.Period)
	if err != nil {
		return types.MarketTrends{}, err
	}

	trends := types.MarketTrends{
		RegionalBreakdown: []types.RegionalVolume{},
		MonthlyTrends:     []types.MonthlyTrend{},
	}

	indicators := map[string]*types.Indicator{
		"global_trade_volume": &trends.GlobalTradeVolume,
		"active_products":     &trends.ActiveProducts,
		"export_companies":    &trends.ExportCompanies,
		"active_markets":      &trends.ActiveMarkets,
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, value, unit, currency, change, trend FROM market_indicators`)
	if err != nil {
		return types.MarketTrends{}, fmt.Errorf("querying indicators: %w", err)
	}
	for rows.Next() {
		var (
			name                  string
			ind                   types.Indicator
			unit, currency, trend sql.NullString
		)
		if err := rows.Scan(&name, &ind.Value, &unit, &currency, &ind.Change, &trend); err != nil {
			rows.Close()
			return types.MarketTrends{}, fmt.Errorf("scanning indicator: %w", err)
		}
		ind.Unit, ind.Currency, ind.Trend = unit.String, currency.String, trend.String
		if into, ok := indicators[name]; ok {
			*into = ind
		}
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return types.MarketTrends{}, err
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT name, volume, growth, color FROM regional_volumes WHERE 1=1`)
	if region := strings.TrimSpace(q.Region); region != "" {
		qb.WriteString(` AND lower(name) = lower(?)`)
		args = append(args, region)
	}
	qb.WriteString(` ORDER BY position`)

	rows, err = s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return types.MarketTrends{}, fmt.Errorf("querying regional volumes: %w", err)
	}
	for rows.Next() {
		var (
			r     types.RegionalVolume
			color sql.NullString
		)
		if err := rows.Scan(&r.Name, &r.Volume, &r.Growth, &color); err != nil {
			rows.Close()
			return types.MarketTrends{}, fmt.Errorf("scanning regional volume: %w", err)
		}
		r.Color = color.String
		trends.RegionalBreakdown = append(trends.RegionalBreakdown, r)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return types.MarketTrends{}, err
	}

	// The newest months are selected, then returned oldest first.
	rows, err = s.db.QueryContext(ctx,
		`SELECT month, value, color FROM (
			SELECT position, month, value, color FROM monthly_trends ORDER BY position DESC LIMIT ?
		) ORDER BY position`, months)
	if err != nil {
		return types.MarketTrends{}, fmt.Errorf("querying monthly trends: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			t     types.MonthlyTrend
			color sql.NullString
		)
		if err := rows.Scan(&t.Month, &t.Value, &color); err != nil {
			return types.MarketTrends{}, fmt.Errorf("scanning monthly trend: %w", err)
		}
		t.Color = color.String
		trends.MonthlyTrends = append(trends.MonthlyTrends, t)
	}
	return trends, rows.Err()
}

// TopExporters returns exporters matching q by rank.
func (s *Store) TopExporters(ctx context.Context, q ExporterQuery) ([]types.Exporter, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT rank, company, country, region, volume, market_share, growth, products
		FROM exporters WHERE 1=1`)

	if region := strings.TrimSpace(q.Region); region != "" {
		qb.WriteString(` AND (lower(region) = lower(?) OR lower(country) = lower(?))`)
		args = append(args, region, region)
	}
	if product := strings.TrimSpace(q.ProductType); product != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(exporters.products) WHERE json_each.value LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(product))
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultExporters
	}
	qb.WriteString(` ORDER BY rank LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying exporters: %w", err)
	}
	defer rows.Close()

	exporters := []types.Exporter{}
	for rows.Next() {
		var (
			e                                         types.Exporter
			country, region, volume, growth, products sql.NullString
		)
		if err := rows.Scan(&e.Rank, &e.Company, &country, &region, &volume, &e.MarketShare, &growth, &products); err != nil {
			return nil, fmt.Errorf("scanning exporter: %w", err)
		}
		e.Country = country.String
		e.Region = region.String
		e.Volume = volume.String
		e.Growth = growth.String
		e.Products = []string{}
		if products.Valid {
			json.Unmarshal([]byte(products.String), &e.Products)
		}
		exporters = append(exporters, e)
	}
	return exporters, rows.Err()
}

// TopProducts returns the best selling products by rank.
func (s *Store) TopProducts(ctx context.Context, q ProductSalesQuery) ([]types.ProductSales, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT rank, name, category, volume, growth FROM top_products WHERE 1=1`)
	if category := strings.TrimSpace(q.Category); category != "" {
		qb.WriteString(` AND lower(category) = lower(?)`)
		args = append(args, category)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultTopProducts
	}
	qb.WriteString(` ORDER BY rank LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying top products: %w", err)
	}
	defer rows.Close()

	products := []types.ProductSales{}
	for rows.Next() {
		var (
			p                        types.ProductSales
			category, volume, growth sql.NullString
		)
		if err := rows.Scan(&p.Rank, &p.Name, &category, &volume, &growth); err != nil {
			return nil, fmt.Errorf("scanning top product: %w", err)
		}
		p.Category = category.String
		p.Volume = volume.String
		p.Growth = growth.String
		products = append(products, p)
	}
	return products, rows.Err()
}
