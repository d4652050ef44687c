// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Contact sources.
const (
	SourceSeed     = "seed"
	SourceManual   = "manual"
	SourceResearch = "research"
)

// ContactQuery holds parameters for contact search.
type ContactQuery struct {
	// Query matches a substring of the contact's name or role.
	Query string

	ProspectID string

	// Department and Seniority are exact, case-insensitive filters.
	Department string
	Seniority  string

	// Limit caps the result count. Zero uses the store default.
	Limit int
}

const contactColumns = `id, prospect_id, company, name, role, email, phone,
	linkedin_url, department, seniority, notes, source`

// ProspectContacts returns the contacts recorded for a prospect.
func (s *Store) ProspectContacts(ctx context.Context, prospectID string) ([]types.Contact, error) {
	return s.queryContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE prospect_id = ? ORDER BY name`, prospectID)
}

// SearchContacts returns contacts matching q ordered by name.
func (s *Store) SearchContacts(ctx context.Context, q ContactQuery) ([]types.Contact, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + contactColumns + ` FROM contacts WHERE 1=1`)

	if query := strings.TrimSpace(q.Query); query != "" {
		pattern := likePattern(query)
		qb.WriteString(` AND (name LIKE ? ESCAPE '\' OR role LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if q.ProspectID != "" {
		qb.WriteString(` AND prospect_id = ?`)
		args = append(args, q.ProspectID)
	}
	if q.Department != "" {
		qb.WriteString(` AND lower(department) = lower(?)`)
		args = append(args, q.Department)
	}
	if q.Seniority != "" {
		qb.WriteString(` AND lower(seniority) = lower(?)`)
		args = append(args, q.Seniority)
	}

	qb.WriteString(` ORDER BY name, id LIMIT ?`)
	args = append(args, s.limit(q.Limit))

	return s.queryContacts(ctx, qb.String(), args...)
}

// AddContact stores a manually entered contact and returns it with its
// generated id.
func (s *Store) AddContact(ctx context.Context, c types.Contact) (types.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return types.Contact{}, fmt.Errorf("%w: contact name is required", ErrInvalid)
	}
	c.ID = uuid.NewString()
	if c.Source == "" {
		c.Source = SourceManual
	}
	if err := insertContact(ctx, s.db, c, ""); err != nil {
		return types.Contact{}, err
	}
	return c, nil
}

// ContactStats counts contacts in total and per department, seniority and
// source. Contacts without a department or seniority count as "Other".
func (s *Store) ContactStats(ctx context.Context) (types.ContactStats, error) {
	stats := types.ContactStats{
		ByDepartment: map[string]int{},
		BySeniority:  map[string]int{},
		BySource:     map[string]int{},
	}

	total, err := s.count(ctx, "contacts")
	if err != nil {
		return types.ContactStats{}, err
	}
	stats.Total = total

	groups := []struct {
		column string
		into   map[string]int
	}{
		{"department", stats.ByDepartment},
		{"seniority", stats.BySeniority},
		{"source", stats.BySource},
	}
	for _, g := range groups {
		rows, err := s.db.QueryContext(ctx,
			`SELECT coalesce(nullif(`+g.column+`, ''), 'Other'), count(*) FROM contacts GROUP BY 1`)
		if err != nil {
			return types.ContactStats{}, fmt.Errorf("grouping contacts by %s: %w", g.column, err)
		}
		for rows.Next() {
			var (
				key string
				n   int
			)
			if err := rows.Scan(&key, &n); err != nil {
				rows.Close()
				return types.ContactStats{}, fmt.Errorf("scanning %s count: %w", g.column, err)
			}
			g.into[key] = n
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return types.ContactStats{}, err
		}
	}

	return stats, nil
}

func insertContact(ctx context.Context, db execer, c types.Contact, runID string) error {
	var run any
	if runID != "" {
		run = runID
	}
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO contacts (id, prospect_id, run_id, company, name, role, email, phone,
			linkedin_url, department, seniority, notes, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.ProspectID, run, c.Company, c.Name, c.Role, c.Email, c.Phone,
		c.LinkedInURL, c.Department, c.Seniority, c.Notes, c.Source,
	)
	if err != nil {
		return fmt.Errorf("inserting contact %s: %w", c.ID, err)
	}
	return nil
}

func (s *Store) queryContacts(ctx context.Context, query string, args ...any) ([]types.Contact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying contacts: %w", err)
	}
	defer rows.Close()

	contacts := []types.Contact{}
	for rows.Next() {
		var (
			c                                       types.Contact
			prospectID, company, role, email, phone sql.NullString
			linkedIn, department, seniority, notes  sql.NullString
		)
		if err := rows.Scan(
			&c.ID, &prospectID, &company, &c.Name, &role, &email, &phone,
			&linkedIn, &department, &seniority, &notes, &c.Source,
		); err != nil {
			return nil, fmt.Errorf("scanning contact: %w", err)
		}
		c.ProspectID = prospectID.String
		c.Company = company.String
		c.Role = role.String
		c.Email = email.String
		c.Phone = phone.String
		c.LinkedInURL = linkedIn.String
		c.Department = department.String
		c.Seniority = seniority.String
		c.Notes = notes.String
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
