// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server provides the PharmaSage HTTP API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/internal/catalog"
	"github.com/pdiddy/pharmasage/internal/export"
	"github.com/pdiddy/pharmasage/internal/research"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// DefaultRequestTimeout bounds requests when the config leaves it unset.
// Deep research calls routinely take minutes.
const DefaultRequestTimeout = 10 * time.Minute

// Catalog is the data store behind the search, match, contact, run and
// dashboard endpoints.
type Catalog interface {
	SearchProducts(ctx context.Context, q string, limit int) ([]types.Product, error)
	SearchCompanies(ctx context.Context, q catalog.CompanyQuery) ([]types.Company, error)
	Regions(ctx context.Context) ([]string, error)
	MatchProspects(ctx context.Context, q catalog.MatchQuery) ([]types.Prospect, error)
	GetProspect(ctx context.Context, id string) (types.Prospect, error)
	ProspectContacts(ctx context.Context, prospectID string) ([]types.Contact, error)
	SearchContacts(ctx context.Context, q catalog.ContactQuery) ([]types.Contact, error)
	AddContact(ctx context.Context, c types.Contact) (types.Contact, error)
	ContactStats(ctx context.Context) (types.ContactStats, error)
	GetResearchRun(ctx context.Context, id string) (types.ResearchRun, error)
	ListResearchRuns(ctx context.Context, limit int) ([]types.ResearchRun, error)
	GetCompany(ctx context.Context, id string) (types.Company, error)
	AddProspect(ctx context.Context, p types.Prospect) (types.Prospect, error)
	Summary(ctx context.Context) (types.DashboardSummary, error)
	MarketTrends(ctx context.Context, q catalog.TrendsQuery) (types.MarketTrends, error)
	TopExporters(ctx context.Context, q catalog.ExporterQuery) ([]types.Exporter, error)
	TopProducts(ctx context.Context, q catalog.ProductSalesQuery) ([]types.ProductSales, error)
	RecordEvent(ctx context.Context, e types.Event) error
	UsageMetric(ctx context.Context, metricType, period string) (types.UsageMetric, error)
	PopularSearches(ctx context.Context, limit int) ([]types.PopularSearch, error)
	Ping(ctx context.Context) error
}

// Researcher runs deep research, writes outreach guidance and parses
// research documents.
type Researcher interface {
	ResearchBuyers(ctx context.Context, name, website string, products ...string) (types.ResearchRun, error)
	Guidance(ctx context.Context, req research.GuidanceRequest) (types.Guidance, error)
	Parse(doc, name, website string) types.ResearchResult
	Status() research.Status
	Ping(ctx context.Context) error
}

// Server is the HTTP server for the PharmaSage API.
type Server struct {
	catalog    Catalog
	researcher Researcher
	exporter   *export.Exporter
	gatherer   prometheus.Gatherer
	config     types.ServerConfig
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies. A nil gatherer
// serves the default Prometheus registry.
func NewServer(
	cat Catalog,
	researcher Researcher,
	exporter *export.Exporter,
	gatherer prometheus.Gatherer,
	cfg types.ServerConfig,
	logger *zap.Logger,
) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		catalog:    cat,
		researcher: researcher,
		exporter:   exporter,
		gatherer:   gatherer,
		config:     cfg,
		logger:     logger,
	}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors(s.config.CORSOrigins))
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/search", func(r chi.Router) {
			r.Get("/products", s.handleSearchProducts)
			r.Get("/companies", s.handleSearchCompanies)
			r.Get("/regions", s.handleRegions)
		})
		r.Route("/match", func(r chi.Router) {
			r.Post("/prospects", s.handleMatchProspects)
			r.Post("/prospect", s.handleAddProspect)
			r.Get("/prospect/{id}", s.handleGetProspect)
			r.Post("/guidance", s.handleGuidance)
		})
		r.Route("/prospect", func(r chi.Router) {
			r.Get("/stats", s.handleContactStats)
			r.Post("/contacts", s.handleAddContact)
			r.Post("/contacts/search", s.handleSearchContacts)
			r.Get("/{id}/contacts", s.handleProspectContacts)
		})
		r.Route("/research", func(r chi.Router) {
			r.Post("/buyers", s.handleResearchBuyers)
			r.Post("/parse", s.handleParse)
			r.Get("/status", s.handleResearchStatus)
			r.Get("/runs", s.handleListRuns)
			r.Get("/runs/{id}", s.handleGetRun)
		})
		r.Route("/export", func(r chi.Router) {
			r.Post("/results", s.handleExport)
			r.Post("/dashboard", s.handleExportDashboard)
			r.Get("/download/{id}", s.handleDownload)
		})
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", s.handleSummary)
			r.Get("/trends", s.handleTrends)
			r.Get("/top-exporters", s.handleTopExporters)
			r.Get("/top-products", s.handleTopProducts)
		})
		r.Route("/analytics", func(r chi.Router) {
			r.Post("/event", s.handleTrackEvent)
			r.Get("/metrics", s.handleUsageMetric)
			r.Get("/popular-searches", s.handlePopularSearches)
		})
	})

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
