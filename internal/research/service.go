// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/internal/cache"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// RunStore persists completed research runs.
type RunStore interface {
	SaveResearchRun(ctx context.Context, run types.ResearchRun) error
}

// Status describes whether deep research can be served. Mode is "mock" when
// answers come from MockBackend and "live" otherwise.
type Status struct {
	Service       string `json:"service"`
	Provider      string `json:"provider"`
	Status        string `json:"status"`
	Mode          string `json:"mode"`
	APIConfigured bool   `json:"api_configured"`
	Message       string `json:"message"`
}

// Service runs deep research for a company and composes the answer. It
// owns the response cache; the parser functions never see it.
type Service struct {
	backend   Backend
	cache     cache.Cache
	runs      RunStore
	metrics   *Metrics
	logger    *zap.Logger
	maxTokens int

	now   func() time.Time
	newID func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCache sets the response cache. The default caches nothing.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRunStore persists every successful run.
func WithRunStore(r RunStore) Option {
	return func(s *Service) { s.runs = r }
}

// WithMetrics records request, cache and extraction metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMaxTokens caps backend responses. Zero leaves it to the provider.
func WithMaxTokens(n int) Option {
	return func(s *Service) { s.maxTokens = n }
}

// NewService returns a Service that queries backend.
func NewService(backend Backend, opts ...Option) *Service {
	s := &Service{
		backend: backend,
		cache:   cache.Nop{},
		logger:  zap.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResponseKey is the cache key for a prompt and token limit.
func ResponseKey(prompt string, maxTokens int) string {
	sum := sha256.Sum256([]byte(prompt + ":" + strconv.Itoa(maxTokens)))
	return hex.EncodeToString(sum[:])
}

// Status reports the backend's availability.
func (s *Service) Status() Status {
	st := Status{Service: "research", Mode: "live"}
	if s.backend != nil {
		st.Provider = s.backend.Name()
		st.APIConfigured = s.backend.Configured()
	}
	if st.Provider == (MockBackend{}).Name() {
		st.Mode = "mock"
	}

	if !st.APIConfigured {
		st.Status = "unconfigured"
		st.Message = "Research service is not configured. Set an API key for the research provider."
		return st
	}
	st.Status = "available"
	st.Message = "Research service is available."
	if st.Mode == "mock" {
		st.Message = "Research service is running in mock mode."
	}
	return st
}

// Ping checks the response cache's backing store.
func (s *Service) Ping(ctx context.Context) error {
	if err := cache.Ping(ctx, s.cache); err != nil {
		return fmt.Errorf("research cache: %w", err)
	}
	return nil
}

// ResearchBuyers runs deep research for the company at website and returns
// the composed result as a new run. An empty name is derived from website.
// Products, when given, narrow the research to those product lines.
func (s *Service) ResearchBuyers(ctx context.Context, name, website string, products ...string) (types.ResearchRun, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return types.ResearchRun{}, fmt.Errorf("company website is required: %w", ErrInvalidRequest)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = NameFromWebsite(website)
	}
	if s.backend == nil {
		return types.ResearchRun{}, fmt.Errorf("no research backend: %w", ErrNotConfigured)
	}

	prompt, err := RenderProspectPrompt(name, website, products...)
	if err != nil {
		return types.ResearchRun{}, err
	}

	text, err := s.fetch(ctx, prompt)
	if err != nil {
		return types.ResearchRun{}, fmt.Errorf("researching %s: %w", website, err)
	}

	run := types.ResearchRun{
		ID:             s.newID(),
		CompanyName:    name,
		CompanyWebsite: website,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
		Result:         s.Parse(text, name, website),
	}

	if s.runs != nil {
		if err := s.runs.SaveResearchRun(ctx, run); err != nil {
			s.logger.Warn("saving research run failed", zap.String("run_id", run.ID), zap.Error(err))
		}
	}

	s.logger.Info("research completed",
		zap.String("run_id", run.ID),
		zap.String("website", website),
		zap.String("strategy", string(run.Result.ExtractionStrategy)),
		zap.Int("buyers", len(run.Result.DiscoveredBuyers)),
	)
	return run, nil
}

// Parse composes a result from a report already in hand and records
// extraction diagnostics.
func (s *Service) Parse(doc, name, website string) types.ResearchResult {
	result, report := ComposeWithReport(doc, name, website)
	if report.SkippedRows > 0 {
		s.logger.Debug("skipped malformed table rows",
			zap.Int("skipped", report.SkippedRows),
			zap.Int("tables", report.Tables),
		)
	}
	s.metrics.composed(report)
	return result
}

// fetch returns the backend's answer for prompt, from cache when possible.
func (s *Service) fetch(ctx context.Context, prompt string) (string, error) {
	key := ResponseKey(prompt, s.maxTokens)

	cached, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("research cache read failed", zap.Error(err))
	}
	s.metrics.cacheAccess(ok)
	if ok {
		s.logger.Debug("research cache hit", zap.String("key", key))
		s.metrics.request(s.backend.Name(), "cached")
		return string(cached), nil
	}

	start := time.Now()
	text, err := s.backend.Research(ctx, prompt, s.maxTokens)
	s.metrics.backendCall(s.backend.Name(), time.Since(start))
	if err != nil {
		s.metrics.request(s.backend.Name(), "error")
		return "", err
	}
	s.metrics.request(s.backend.Name(), "ok")

	if err := s.cache.Set(ctx, key, []byte(text)); err != nil {
		s.logger.Warn("research cache write failed", zap.Error(err))
	}
	return text, nil
}
