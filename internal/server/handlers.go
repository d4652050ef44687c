// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pdiddy/pharmasage/internal/catalog"
	"github.com/pdiddy/pharmasage/internal/export"
	"github.com/pdiddy/pharmasage/internal/research"
	"github.com/pdiddy/pharmasage/pkg/types"
)

const (
	maxBodyBytes = 4 << 20
	exportLimit  = 1000

	// runIDHeader carries the stored run's id on research responses.
	runIDHeader = "X-Research-Run-ID"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	if err := s.researcher.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.respondError(w, http.StatusServiceUnavailable, "cache unavailable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- search ---

func (s *Server) handleSearchProducts(w http.ResponseWriter, r *http.Request) {
	q := queryParam(r, "q", "query")
	products, err := s.catalog.SearchProducts(r.Context(), q, intParam(r, "limit"))
	if err != nil {
		s.fail(w, "search products", err)
		return
	}
	if q != "" {
		s.record(r.Context(), types.Event{
			Type:  catalog.EventSearch,
			Query: q,
			Data:  map[string]any{"kind": "products", "results": len(products)},
		})
	}
	s.respondJSON(w, http.StatusOK, products)
}

func (s *Server) handleSearchCompanies(w http.ResponseWriter, r *http.Request) {
	q := queryParam(r, "q", "query")
	companies, err := s.catalog.SearchCompanies(r.Context(), catalog.CompanyQuery{
		Query:   q,
		Country: r.URL.Query().Get("country"),
		Limit:   intParam(r, "limit"),
	})
	if err != nil {
		s.fail(w, "search companies", err)
		return
	}
	if q != "" {
		s.record(r.Context(), types.Event{
			Type:  catalog.EventSearch,
			Query: q,
			Data:  map[string]any{"kind": "companies", "results": len(companies)},
		})
	}
	s.respondJSON(w, http.StatusOK, companies)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := s.catalog.Regions(r.Context())
	if err != nil {
		s.fail(w, "list regions", err)
		return
	}
	s.respondJSON(w, http.StatusOK, regions)
}

// --- matching ---

type matchRequest struct {
	CompanyName     string   `json:"company_name"`
	Products        []string `json:"products"`
	LicensedMarkets []string `json:"licensed_markets"`
	Segment         string   `json:"segment"`
	MinScore        int      `json:"min_score"`
	Limit           int      `json:"limit"`
}

func (s *Server) handleMatchProspects(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if !s.decode(w, r, &req) {
		return
	}
	limit := req.Limit
	if n := intParam(r, "limit"); n > 0 {
		limit = n
	}

	q := catalog.MatchQuery{
		Markets:  req.LicensedMarkets,
		Segment:  req.Segment,
		MinScore: req.MinScore,
		Limit:    limit,
	}
	if len(req.Products) == 1 {
		q.Product = req.Products[0]
	}

	prospects, err := s.catalog.MatchProspects(r.Context(), q)
	if err != nil {
		s.fail(w, "match prospects", err)
		return
	}
	s.record(r.Context(), types.Event{
		Type: catalog.EventMatch,
		Data: map[string]any{
			"company":  req.CompanyName,
			"products": req.Products,
			"markets":  req.LicensedMarkets,
			"results":  len(prospects),
		},
	})
	s.respondJSON(w, http.StatusOK, prospects)
}

func (s *Server) handleAddProspect(w http.ResponseWriter, r *http.Request) {
	var p types.Prospect
	if !s.decode(w, r, &p) {
		return
	}
	created, err := s.catalog.AddProspect(r.Context(), p)
	if err != nil {
		s.fail(w, "add prospect", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProspect(w http.ResponseWriter, r *http.Request) {
	p, err := s.catalog.GetProspect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get prospect", err)
		return
	}
	s.respondJSON(w, http.StatusOK, p)
}

type guidanceRequest struct {
	ProspectID string   `json:"prospect_id"`
	CompanyID  string   `json:"company_id"`
	Products   []string `json:"products"`
}

// handleGuidance writes outreach guidance for a catalog prospect. The
// optional company_id names the seller; an unknown one is ignored.
func (s *Server) handleGuidance(w http.ResponseWriter, r *http.Request) {
	var req guidanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProspectID) == "" {
		s.respondError(w, http.StatusBadRequest, "prospect_id is required")
		return
	}

	ctx := r.Context()
	prospect, err := s.catalog.GetProspect(ctx, req.ProspectID)
	if err != nil {
		s.fail(w, "guidance", err)
		return
	}
	contacts, err := s.catalog.ProspectContacts(ctx, prospect.ID)
	if err != nil {
		s.fail(w, "guidance", err)
		return
	}

	greq := research.GuidanceRequest{Prospect: prospect, Contacts: contacts, Products: req.Products}
	if req.CompanyID != "" {
		seller, err := s.catalog.GetCompany(ctx, req.CompanyID)
		switch {
		case err == nil:
			greq.Seller = seller.Name
		case errors.Is(err, catalog.ErrNotFound):
			s.logger.Debug("guidance seller not found", zap.String("company_id", req.CompanyID))
		default:
			s.fail(w, "guidance", err)
			return
		}
	}

	guidance, err := s.researcher.Guidance(ctx, greq)
	if err != nil {
		s.fail(w, "guidance", err)
		return
	}
	s.record(ctx, types.Event{
		Type: catalog.EventGuidance,
		Data: map[string]any{"prospect_id": prospect.ID, "company_id": req.CompanyID},
	})
	s.respondJSON(w, http.StatusOK, guidance)
}

// --- contacts ---

func (s *Server) handleProspectContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.catalog.ProspectContacts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "prospect contacts", err)
		return
	}
	s.respondJSON(w, http.StatusOK, contacts)
}

type contactSearchRequest struct {
	Query      string `json:"query"`
	CompanyID  string `json:"company_id"`
	Department string `json:"department"`
	Seniority  string `json:"seniority"`
	Limit      int    `json:"limit"`
}

func (s *Server) handleSearchContacts(w http.ResponseWriter, r *http.Request) {
	var req contactSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	limit := req.Limit
	if n := intParam(r, "limit"); n > 0 {
		limit = n
	}
	contacts, err := s.catalog.SearchContacts(r.Context(), catalog.ContactQuery{
		Query:      req.Query,
		ProspectID: req.CompanyID,
		Department: req.Department,
		Seniority:  req.Seniority,
		Limit:      limit,
	})
	if err != nil {
		s.fail(w, "search contacts", err)
		return
	}
	s.respondJSON(w, http.StatusOK, contacts)
}

func (s *Server) handleAddContact(w http.ResponseWriter, r *http.Request) {
	var c types.Contact
	if !s.decode(w, r, &c) {
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	c.Source = ""
	created, err := s.catalog.AddContact(r.Context(), c)
	if err != nil {
		s.fail(w, "add contact", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleContactStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.ContactStats(r.Context())
	if err != nil {
		s.fail(w, "contact stats", err)
		return
	}
	s.respondJSON(w, http.StatusOK, stats)
}

// --- research ---

type researchRequest struct {
	CompanyName    string   `json:"company_name"`
	CompanyWebsite string   `json:"company_website"`
	Products       []string `json:"products"`
}

// researchResponse is the research result with the stored run's id beside
// it, so clients can export or reload the run later.
type researchResponse struct {
	types.ResearchResult
	RunID string `json:"runId"`
}

func (s *Server) handleResearchBuyers(w http.ResponseWriter, r *http.Request) {
	var req researchRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("research request",
		zap.String("company", req.CompanyName),
		zap.String("website", req.CompanyWebsite),
		zap.Strings("products", req.Products),
	)

	run, err := s.researcher.ResearchBuyers(r.Context(), req.CompanyName, req.CompanyWebsite, req.Products...)
	if err != nil {
		s.fail(w, "research buyers", err)
		return
	}
	s.record(r.Context(), types.Event{
		Type: catalog.EventResearch,
		Data: map[string]any{
			"run_id":  run.ID,
			"website": run.CompanyWebsite,
			"buyers":  len(run.Result.DiscoveredBuyers),
		},
	})
	w.Header().Set(runIDHeader, run.ID)
	s.respondJSON(w, http.StatusOK, researchResponse{ResearchResult: run.Result, RunID: run.ID})
}

type parseRequest struct {
	Document       string `json:"document"`
	CompanyName    string `json:"company_name"`
	CompanyWebsite string `json:"company_website"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.respondJSON(w, http.StatusOK, s.researcher.Parse(req.Document, req.CompanyName, req.CompanyWebsite))
}

func (s *Server) handleResearchStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.researcher.Status())
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.catalog.ListResearchRuns(r.Context(), intParam(r, "limit"))
	if err != nil {
		s.fail(w, "list research runs", err)
		return
	}
	s.respondJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.catalog.GetResearchRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "get research run", err)
		return
	}
	s.respondJSON(w, http.StatusOK, run)
}

// --- export ---

type exportRequest struct {
	// Type is prospects, products, companies, contacts or research.
	Type            string   `json:"type"`
	Format          string   `json:"format"`
	ResultIDs       []string `json:"result_ids"`
	RunID           string   `json:"run_id"`
	IncludeContacts *bool    `json:"include_contacts"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.respondError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}

	var req exportRequest
	if !s.decode(w, r, &req) {
		return
	}
	q := r.URL.Query()
	if v := q.Get("export_type"); v != "" {
		req.Format = v
	}
	if v, err := strconv.ParseBool(q.Get("include_contacts")); err == nil {
		req.IncludeContacts = &v
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dataset, err := s.dataset(r.Context(), req)
	if err != nil {
		s.fail(w, "export", err)
		return
	}

	s.writeExport(w, r, dataset, format)
}

// writeExport writes dataset in format and responds with the file's
// download details.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, dataset export.Dataset, format export.Format) {
	file, err := s.exporter.Write(dataset, format)
	if err != nil {
		s.fail(w, "export", err)
		return
	}
	s.logger.Info("export written", zap.String("file_id", file.ID), zap.String("file_name", file.Name))
	s.record(r.Context(), types.Event{
		Type: catalog.EventExport,
		Data: map[string]any{"kind": dataset.Kind, "format": string(format), "file_id": file.ID},
	})
	s.respondJSON(w, http.StatusOK, file)
}

type dashboardExportRequest struct {
	// DashboardType is trends, top-exporters or top-products.
	DashboardType string         `json:"dashboard_type"`
	Format        string         `json:"format"`
	Filters       map[string]any `json:"filters"`
}

// filter returns a dashboard filter as text. Numbers and strings are both
// accepted.
func (req dashboardExportRequest) filter(key string) string {
	v, ok := req.Filters[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func (s *Server) handleExportDashboard(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.respondError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}

	var req dashboardExportRequest
	if !s.decode(w, r, &req) {
		return
	}
	if v := r.URL.Query().Get("export_type"); v != "" {
		req.Format = v
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	dataset, err := s.dashboardDataset(r.Context(), req)
	if err != nil {
		s.fail(w, "export dashboard", err)
		return
	}
	s.writeExport(w, r, dataset, format)
}

func (s *Server) dashboardDataset(ctx context.Context, req dashboardExportRequest) (export.Dataset, error) {
	limit, _ := strconv.Atoi(req.filter("limit"))

	switch strings.ToLower(strings.TrimSpace(req.DashboardType)) {
	case "", "trends":
		trends, err := s.catalog.MarketTrends(ctx, catalog.TrendsQuery{
			Region: req.filter("region"),
			Period: req.filter("time_period"),
		})
		return export.MarketTrends(trends), err
	case "top-exporters", "exporters":
		exporters, err := s.catalog.TopExporters(ctx, catalog.ExporterQuery{
			Region:      req.filter("region"),
			ProductType: req.filter("product_type"),
			Limit:       limit,
		})
		return export.Exporters(exporters), err
	case "top-products", "products":
		products, err := s.catalog.TopProducts(ctx, catalog.ProductSalesQuery{Category: req.filter("category"), Limit: limit})
		return export.TopProducts(products), err
	default:
		return export.Dataset{}, fmt.Errorf("%w: unknown dashboard type %q", errBadRequest, req.DashboardType)
	}
}

func (s *Server) dataset(ctx context.Context, req exportRequest) (export.Dataset, error) {
	withContacts := req.IncludeContacts == nil || *req.IncludeContacts

	switch strings.ToLower(req.Type) {
	case "", "prospects":
		var prospects []types.Prospect
		if len(req.ResultIDs) == 0 {
			var err error
			if prospects, err = s.catalog.MatchProspects(ctx, catalog.MatchQuery{Limit: exportLimit}); err != nil {
				return export.Dataset{}, err
			}
		}
		for _, id := range req.ResultIDs {
			p, err := s.catalog.GetProspect(ctx, id)
			if err != nil {
				return export.Dataset{}, err
			}
			prospects = append(prospects, p)
		}
		return export.Prospects(prospects, withContacts), nil
	case "products":
		products, err := s.catalog.SearchProducts(ctx, "", exportLimit)
		return export.Products(products), err
	case "companies":
		companies, err := s.catalog.SearchCompanies(ctx, catalog.CompanyQuery{Limit: exportLimit})
		return export.Companies(companies), err
	case "contacts":
		contacts, err := s.catalog.SearchContacts(ctx, catalog.ContactQuery{Limit: exportLimit})
		return export.Contacts(contacts), err
	case "research":
		id := req.RunID
		if id == "" && len(req.ResultIDs) > 0 {
			id = req.ResultIDs[0]
		}
		run, err := s.catalog.GetResearchRun(ctx, id)
		if err != nil {
			return export.Dataset{}, err
		}
		return export.ResearchRun(run), nil
	default:
		return export.Dataset{}, fmt.Errorf("%w: unknown export type %q", errBadRequest, req.Type)
	}
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.respondError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}
	path, name, err := s.exporter.Open(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, "download", err)
		return
	}
	w.Header().Set("Content-Type", export.FormatOf(name).ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeFile(w, r, path)
}

// --- dashboard ---

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.catalog.Summary(r.Context())
	if err != nil {
		s.fail(w, "dashboard summary", err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	trends, err := s.catalog.MarketTrends(r.Context(), catalog.TrendsQuery{
		Region: q.Get("region"),
		Period: q.Get("time_period"),
	})
	if err != nil {
		s.fail(w, "market trends", err)
		return
	}
	s.respondJSON(w, http.StatusOK, trends)
}

func (s *Server) handleTopExporters(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	exporters, err := s.catalog.TopExporters(r.Context(), catalog.ExporterQuery{
		Region:      q.Get("region"),
		ProductType: q.Get("product_type"),
		Limit:       intParam(r, "limit"),
	})
	if err != nil {
		s.fail(w, "top exporters", err)
		return
	}
	s.respondJSON(w, http.StatusOK, exporters)
}

func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.catalog.TopProducts(r.Context(), catalog.ProductSalesQuery{
		Category: r.URL.Query().Get("category"),
		Limit:    intParam(r, "limit"),
	})
	if err != nil {
		s.fail(w, "top products", err)
		return
	}
	s.respondJSON(w, http.StatusOK, products)
}

// --- analytics ---

func (s *Server) handleTrackEvent(w http.ResponseWriter, r *http.Request) {
	var e types.Event
	if !s.decode(w, r, &e) {
		return
	}
	if err := s.catalog.RecordEvent(r.Context(), e); err != nil {
		s.fail(w, "track event", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Event tracked successfully",
	})
}

func (s *Server) handleUsageMetric(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	metricType := q.Get("metric_type")
	if metricType == "" {
		metricType = "user_engagement"
	}
	metric, err := s.catalog.UsageMetric(r.Context(), metricType, q.Get("time_period"))
	if err != nil {
		s.fail(w, "usage metric", err)
		return
	}
	s.respondJSON(w, http.StatusOK, metric)
}

func (s *Server) handlePopularSearches(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit")
	if limit == 0 {
		limit = 10
	}
	searches, err := s.catalog.PopularSearches(r.Context(), limit)
	if err != nil {
		s.fail(w, "popular searches", err)
		return
	}
	s.respondJSON(w, http.StatusOK, searches)
}

// record stores a usage event. Failures are logged and never fail the
// request that caused them.
func (s *Server) record(ctx context.Context, e types.Event) {
	if err := s.catalog.RecordEvent(ctx, e); err != nil {
		s.logger.Warn("recording event failed", zap.String("type", e.Type), zap.Error(err))
	}
}

// --- helpers ---

var errBadRequest = errors.New("bad request")

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, catalog.ErrInvalid),
		errors.Is(err, research.ErrInvalidRequest),
		errors.Is(err, export.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, export.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, research.ErrNotConfigured),
		errors.Is(err, research.ErrUnauthorized),
		errors.Is(err, research.ErrRateLimited),
		errors.Is(err, research.ErrUpstream):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err and writes the mapped error response. Internal errors are
// not echoed to the client.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", zap.Error(err), zap.Int("status", status))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	} else {
		s.logger.Debug(op+" rejected", zap.Error(err), zap.Int("status", status))
	}
	s.respondError(w, status, msg)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func queryParam(r *http.Request, names ...string) string {
	for _, name := range names {
		if v := r.URL.Query().Get(name); v != "" {
			return v
		}
	}
	return ""
}

func intParam(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
