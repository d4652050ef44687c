// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// MatchQuery holds parameters for prospect matching.
type MatchQuery struct {
	// Markets lists licensed markets. A prospect matches when its region or
	// country equals one of them, ignoring case. Empty matches every market.
	Markets []string

	// Segment matches a substring of the prospect's target segment.
	Segment string

	// Product matches a substring of one of the prospect's key products.
	Product string

	// MinScore drops prospects scoring below it.
	MinScore int

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const prospectColumns = `id, name, country, region, target_segment, website, reason,
	opportunity_score, status, revenue, employees, purchasing_volume,
	last_contact, key_products, key_contacts, description`

// MatchProspects returns catalog prospects matching q, highest opportunity
// score first.
func (s *Store) MatchProspects(ctx context.Context, q MatchQuery) ([]types.Prospect, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + prospectColumns + ` FROM prospects WHERE opportunity_score >= ?`)
	args = append(args, q.MinScore)

	var markets []string
	for _, m := range q.Markets {
		if m = strings.TrimSpace(m); m != "" {
			markets = append(markets, strings.ToLower(m))
		}
	}
	if len(markets) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(markets)), ", ")
		qb.WriteString(` AND (lower(region) IN (` + placeholders + `) OR lower(country) IN (` + placeholders + `))`)
		for range 2 {
			for _, m := range markets {
				args = append(args, m)
			}
		}
	}

	if segment := strings.TrimSpace(q.Segment); segment != "" {
		qb.WriteString(` AND target_segment LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(segment))
	}

	if product := strings.TrimSpace(q.Product); product != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(prospects.key_products) WHERE json_each.value LIKE ? ESCAPE '\')`)
		args = append(args, likePattern(product))
	}

	qb.WriteString(` ORDER BY opportunity_score DESC, name LIMIT ?`)
	args = append(args, s.limit(q.Limit))

	return s.queryProspects(ctx, qb.String(), args...)
}

// TopProspects returns the n highest scoring prospects.
func (s *Store) TopProspects(ctx context.Context, n int) ([]types.Prospect, error) {
	return s.queryProspects(ctx,
		`SELECT `+prospectColumns+` FROM prospects ORDER BY opportunity_score DESC, name LIMIT ?`,
		s.limit(n))
}

// GetProspect returns the prospect with the given id, or ErrNotFound.
func (s *Store) GetProspect(ctx context.Context, id string) (types.Prospect, error) {
	prospects, err := s.queryProspects(ctx,
		`SELECT `+prospectColumns+` FROM prospects WHERE id = ?`, id)
	if err != nil {
		return types.Prospect{}, err
	}
	if len(prospects) == 0 {
		return types.Prospect{}, fmt.Errorf("prospect %s: %w", id, ErrNotFound)
	}
	return prospects[0], nil
}

// AddProspect stores p, replacing any prospect with the same id, and returns
// it. A prospect without an id is given a new one.
func (s *Store) AddProspect(ctx context.Context, p types.Prospect) (types.Prospect, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return types.Prospect{}, fmt.Errorf("%w: prospect name is required", ErrInvalid)
	}
	if p.OpportunityScore < 0 || p.OpportunityScore > 100 {
		return types.Prospect{}, fmt.Errorf("%w: opportunity score %d outside 0-100", ErrInvalid, p.OpportunityScore)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.KeyContacts == nil {
		p.KeyContacts = []types.KeyContact{}
	}
	if err := upsertProspect(ctx, s.db, p); err != nil {
		return types.Prospect{}, err
	}
	return p, nil
}

func upsertProspect(ctx context.Context, db execer, p types.Prospect) error {
	keyProducts, _ := json.Marshal(nonNil(p.KeyProducts))
	contacts := p.KeyContacts
	if contacts == nil {
		contacts = []types.KeyContact{}
	}
	keyContacts, _ := json.Marshal(contacts)

	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO prospects (`+prospectColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Country, p.Region, p.TargetSegment, p.Website,
		p.ReasonForRecommendation, p.OpportunityScore, p.Status,
		p.Revenue, p.Employees, p.PurchasingVolume, p.LastContact,
		string(keyProducts), string(keyContacts), p.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting prospect %s: %w", p.ID, err)
	}
	return nil
}

func (s *Store) queryProspects(ctx context.Context, query string, args ...any) ([]types.Prospect, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying prospects: %w", err)
	}
	defer rows.Close()

	prospects := []types.Prospect{}
	for rows.Next() {
		var (
			p                                           types.Prospect
			country, region, segment, website, reason   sql.NullString
			status, revenue, employees, volume, contact sql.NullString
			keyProducts, keyContacts, description       sql.NullString
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &country, &region, &segment, &website, &reason,
			&p.OpportunityScore, &status, &revenue, &employees, &volume,
			&contact, &keyProducts, &keyContacts, &description,
		); err != nil {
			return nil, fmt.Errorf("scanning prospect: %w", err)
		}
		p.Country = country.String
		p.Region = region.String
		p.TargetSegment = segment.String
		p.Website = website.String
		p.ReasonForRecommendation = reason.String
		p.Status = status.String
		p.Revenue = revenue.String
		p.Employees = employees.String
		p.PurchasingVolume = volume.String
		p.LastContact = contact.String
		p.Description = description.String

		p.KeyContacts = []types.KeyContact{}
		if keyContacts.Valid {
			json.Unmarshal([]byte(keyContacts.String), &p.KeyContacts)
		}
		if keyProducts.Valid {
			json.Unmarshal([]byte(keyProducts.String), &p.KeyProducts)
		}
		prospects = append(prospects, p)
	}
	return prospects, rows.Err()
}
