// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"

	"github.com/pdiddy/pharmasage/pkg/types"
)

const topProspects = 5

// Summary counts the catalog tables and lists the top prospects by score.
func (s *Store) Summary(ctx context.Context) (types.DashboardSummary, error) {
	var (
		summary types.DashboardSummary
		err     error
	)
	counts := []struct {
		table string
		into  *int
	}{
		{"products", &summary.Products},
		{"companies", &summary.Companies},
		{"prospects", &summary.Prospects},
		{"contacts", &summary.Contacts},
		{"research_runs", &summary.ResearchRuns},
	}
	for _, c := range counts {
		if *c.into, err = s.count(ctx, c.table); err != nil {
			return types.DashboardSummary{}, err
		}
	}

	if summary.TopProspects, err = s.TopProspects(ctx, topProspects); err != nil {
		return types.DashboardSummary{}, err
	}
	return summary, nil
}
