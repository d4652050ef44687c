// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Event types recorded by the API.
const (
	EventSearch   = "search"
	EventMatch    = "match"
	EventExport   = "export"
	EventResearch = "research"
	EventGuidance = "guidance"
)

const defaultMetricPeriod = "7d"

// metricEvents maps a usage metric to the event type it counts. The empty
// type counts every event.
var metricEvents = map[string]string{
	"search_volume":    EventSearch,
	"export_volume":    EventExport,
	"prospect_matches": EventMatch,
	"research_runs":    EventResearch,
	"user_engagement":  "",
}

// metricPeriod matches "24h", "7d", "2w", "1m" or "1y".
var metricPeriod = regexp.MustCompile(`^(\d+)([hdwmy])$`)

var periodUnits = map[string]time.Duration{
	"h": time.Hour,
	"d": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"m": 30 * 24 * time.Hour,
	"y": 365 * 24 * time.Hour,
}

// RecordEvent stores a usage event. A search event without Query takes it
// from Data["query"].
func (s *Store) RecordEvent(ctx context.Context, e types.Event) error {
	eventType := strings.ToLower(strings.TrimSpace(e.Type))
	if eventType == "" {
		return fmt.Errorf("%w: event type is required", ErrInvalid)
	}
	query := strings.TrimSpace(e.Query)
	if query == "" {
		if q, ok := e.Data["query"].(string); ok {
			query = strings.TrimSpace(q)
		}
	}
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("%w: encoding event data: %v", ErrInvalid, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO events (id, type, query, data, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), eventType, query, string(data), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

// UsageMetric counts the events behind metricType over the trailing period.
// Periods are written as a count and a unit: h, d, w, m (30 days) or y.
func (s *Store) UsageMetric(ctx context.Context, metricType, period string) (types.UsageMetric, error) {
	eventType, ok := metricEvents[metricType]
	if !ok {
		return types.UsageMetric{}, fmt.Errorf("%w: unknown metric type %q", ErrInvalid, metricType)
	}
	if period == "" {
		period = defaultMetricPeriod
	}
	m := metricPeriod.FindStringSubmatch(period)
	if m == nil {
		return types.UsageMetric{}, fmt.Errorf("%w: time period %q", ErrInvalid, period)
	}
	n, _ := strconv.Atoi(m[1])

	now := s.now().UTC()
	since := now.Add(-time.Duration(n) * periodUnits[m[2]]).Format(time.RFC3339)

	query := `SELECT count(*) FROM events WHERE created_at >= ?`
	args := []any{since}
	if eventType != "" {
		query += ` AND type = ?`
		args = append(args, eventType)
	}

	metric := types.UsageMetric{
		MetricType: metricType,
		TimePeriod: period,
		Timestamp:  now.Format(time.RFC3339),
	}
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&metric.Value); err != nil {
		return types.UsageMetric{}, fmt.Errorf("counting %s events: %w", metricType, err)
	}
	return metric, nil
}

// PopularSearches returns the most frequent search queries, compared
// case-insensitively, with the time each was last run.
func (s *Store) PopularSearches(ctx context.Context, limit int) ([]types.PopularSearch, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT lower(query) AS q, count(*) AS n, max(created_at)
		 FROM events WHERE type = ? AND coalesce(query, '') <> ''
		 GROUP BY q ORDER BY n DESC, max(created_at) DESC, q LIMIT ?`,
		EventSearch, s.limit(limit))
	if err != nil {
		return nil, fmt.Errorf("querying popular searches: %w", err)
	}
	defer rows.Close()

	searches := []types.PopularSearch{}
	for rows.Next() {
		var ps types.PopularSearch
		if err := rows.Scan(&ps.Query, &ps.Count, &ps.LastSearch); err != nil {
			return nil, fmt.Errorf("scanning popular search: %w", err)
		}
		searches = append(searches, ps)
	}
	return searches, rows.Err()
}
