// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// CompanyQuery holds parameters for company search.
type CompanyQuery struct {
	// Query matches a substring of the company name or sector.
	Query string

	// Country restricts results to one country, compared case-insensitively.
	Country string

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

// likePattern wraps q for a substring LIKE match with '\' as escape.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

// SearchProducts returns products whose name, code or one of whose synonyms
// contains q, ignoring case. An empty q lists products in id order.
func (s *Store) SearchProducts(ctx context.Context, q string, limit int) ([]types.Product, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT p.id, p.api_name, p.synonyms, p.code, p.form, p.therapeutic_category
		FROM products p WHERE 1=1`)

	if q = strings.TrimSpace(q); q != "" {
		pattern := likePattern(q)
		qb.WriteString(` AND (p.api_name LIKE ? ESCAPE '\' OR p.code LIKE ? ESCAPE '\'
			OR EXISTS (SELECT 1 FROM json_each(p.synonyms) WHERE json_each.value LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	qb.WriteString(` ORDER BY CAST(p.id AS INTEGER), p.id LIMIT ?`)
	args = append(args, s.limit(limit))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}
	defer rows.Close()

	products := []types.Product{}
	for rows.Next() {
		var (
			p                    types.Product
			synonyms, code, form sql.NullString
			category             sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.APIName, &synonyms, &code, &form, &category); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		p.Code = code.String
		p.Form = form.String
		p.TherapeuticCategory = category.String
		p.Synonyms = []string{}
		if synonyms.Valid {
			json.Unmarshal([]byte(synonyms.String), &p.Synonyms)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// SearchCompanies returns companies whose name or sector contains the query,
// optionally restricted to a country.
func (s *Store) SearchCompanies(ctx context.Context, q CompanyQuery) ([]types.Company, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT id, name, country, sector, size FROM companies WHERE 1=1`)

	if query := strings.TrimSpace(q.Query); query != "" {
		pattern := likePattern(query)
		qb.WriteString(` AND (name LIKE ? ESCAPE '\' OR sector LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if country := strings.TrimSpace(q.Country); country != "" {
		qb.WriteString(` AND lower(country) = lower(?)`)
		args = append(args, country)
	}

	qb.WriteString(` ORDER BY CAST(id AS INTEGER), id LIMIT ?`)
	args = append(args, s.limit(q.Limit))

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("searching companies: %w", err)
	}
	defer rows.Close()

	companies := []types.Company{}
	for rows.Next() {
		var (
			c                     types.Company
			country, sector, size sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &country, &sector, &size); err != nil {
			return nil, fmt.Errorf("scanning company: %w", err)
		}
		c.Country = country.String
		c.Sector = sector.String
		c.Size = size.String
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// GetCompany returns the company with the given id, or ErrNotFound.
func (s *Store) GetCompany(ctx context.Context, id string) (types.Company, error) {
	var (
		c                     types.Company
		country, sector, size sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, country, sector, size FROM companies WHERE id = ?`, id,
	).Scan(&c.ID, &c.Name, &country, &sector, &size)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Company{}, fmt.Errorf("company %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return types.Company{}, fmt.Errorf("getting company %s: %w", id, err)
	}
	c.Country = country.String
	c.Sector = sector.String
	c.Size = size.String
	return c, nil
}

// Regions lists the market regions in their configured order.
func (s *Store) Regions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM regions ORDER BY position, name`)
	if err != nil {
		return nil, fmt.Errorf("listing regions: %w", err)
	}
	defer rows.Close()

	regions := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning region: %w", err)
		}
		regions = append(regions, name)
	}
	return regions, rows.Err()
}
