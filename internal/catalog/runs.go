// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// SaveResearchRun stores a research run and records the key contacts of its
// discovered buyers as research contacts. Saving the same run id again
// replaces the run and its contacts.
func (s *Store) SaveResearchRun(ctx context.Context, run types.ResearchRun) error {
	result, err := json.Marshal(run.Result)
	if err != nil {
		return fmt.Errorf("encoding research result: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM contacts WHERE run_id = ?`, run.ID); err != nil {
		return fmt.Errorf("deleting old run contacts: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO research_runs (id, company_name, company_website, strategy, buyers, result, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			company_name=excluded.company_name, company_website=excluded.company_website,
			strategy=excluded.strategy, buyers=excluded.buyers,
			result=excluded.result, created_at=excluded.created_at`,
		run.ID, run.CompanyName, run.CompanyWebsite, string(run.Result.ExtractionStrategy),
		len(run.Result.DiscoveredBuyers), string(result), run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting research run %s: %w", run.ID, err)
	}

	for _, buyer := range run.Result.DiscoveredBuyers {
		for _, kc := range buyer.KeyContacts {
			c := types.Contact{
				ID:         uuid.NewString(),
				ProspectID: run.ID + "/" + buyer.ID,
				Company:    buyer.Name,
				Name:       kc.Name,
				Role:       kc.Role,
				Source:     SourceResearch,
			}
			if err := insertContact(ctx, tx, c, run.ID); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// GetResearchRun returns the stored run with the given id, or ErrNotFound.
func (s *Store) GetResearchRun(ctx context.Context, id string) (types.ResearchRun, error) {
	runs, err := s.queryRuns(ctx,
		`SELECT id, company_name, company_website, result, created_at FROM research_runs WHERE id = ?`, id)
	if err != nil {
		return types.ResearchRun{}, err
	}
	if len(runs) == 0 {
		return types.ResearchRun{}, fmt.Errorf("research run %s: %w", id, ErrNotFound)
	}
	return runs[0], nil
}

// ListResearchRuns returns the most recent runs first.
func (s *Store) ListResearchRuns(ctx context.Context, limit int) ([]types.ResearchRun, error) {
	return s.queryRuns(ctx,
		`SELECT id, company_name, company_website, result, created_at
		 FROM research_runs ORDER BY created_at DESC, id LIMIT ?`, s.limit(limit))
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]types.ResearchRun, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying research runs: %w", err)
	}
	defer rows.Close()

	runs := []types.ResearchRun{}
	for rows.Next() {
		var (
			run    types.ResearchRun
			result string
		)
		if err := rows.Scan(&run.ID, &run.CompanyName, &run.CompanyWebsite, &result, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning research run: %w", err)
		}
		if err := json.Unmarshal([]byte(result), &run.Result); err != nil {
			return nil, fmt.Errorf("decoding research run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
