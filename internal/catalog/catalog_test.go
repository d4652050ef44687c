// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// --- test helpers ---

func testSetup(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(types.CatalogConfig{DataDir: t.TempDir(), MaxResults: 10})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seededStore(t *testing.T) *Store {
	t.Helper()
	store := testSetup(t)
	var out bytes.Buffer
	require.NoError(t, store.Seed(context.Background(), &out))
	return store
}

func productNames(products []types.Product) []string {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = p.APIName
	}
	return names
}

func prospectNames(prospects []types.Prospect) []string {
	names := make([]string, len(prospects))
	for i, p := range prospects {
		names[i] = p.Name
	}
	return names
}

// --- seed ---

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := testSetup(t)

	empty, err := store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.True(t, empty)

	var out bytes.Buffer
	require.NoError(t, store.Seed(ctx, &out))
	assert.Contains(t, out.String(), "10 products, 10 companies, 5 prospects, 5 contacts")

	empty, err = store.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)

	// Seeding again replaces rows instead of duplicating them.
	require.NoError(t, store.Seed(ctx, &out))
	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Products)
	assert.Equal(t, 10, summary.Companies)
	assert.Equal(t, 5, summary.Prospects)
	assert.Equal(t, 5, summary.Contacts)
	assert.Equal(t, 0, summary.ResearchRuns)
}

func TestNewStore_ReopensExistingDatabase(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewStore(types.CatalogConfig{DataDir: dir})
	require.NoError(t, err)
	require.NoError(t, first.Seed(ctx, &bytes.Buffer{}))
	require.NoError(t, first.Close())

	second, err := NewStore(types.CatalogConfig{DataDir: dir})
	require.NoError(t, err)
	defer second.Close()

	empty, err := second.IsEmpty(ctx)
	require.NoError(t, err)
	assert.False(t, empty)
	assert.NoError(t, second.Ping(ctx))
}

// --- search ---

func TestSearchProducts(t *testing.T) {
	store := seededStore(t)

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"by name", "amox", 0, []string{"Amoxicillin"}},
		{"case insensitive", "IBUPROFEN", 0, []string{"Ibuprofen"}},
		{"by code", "N06AB", 0, []string{"Sertraline", "Fluoxetine"}},
		{"by synonym", "acetaminophen", 0, []string{"Paracetamol"}},
		{"by synonym substring", "motr", 0, []string{"Ibuprofen"}},
		{"empty query lists in id order", "", 3, []string{"Paracetamol", "Ibuprofen", "Amoxicillin"}},
		{"no match", "unobtainium", 0, []string{}},
		{"wildcards are literal", "%", 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchProducts(context.Background(), tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, productNames(got))
		})
	}
}

func TestSearchProducts_DefaultLimit(t *testing.T) {
	store, err := NewStore(types.CatalogConfig{DataDir: t.TempDir(), MaxResults: 4})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Seed(context.Background(), &bytes.Buffer{}))

	got, err := store.SearchProducts(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)
	assert.Equal(t, []string{"Acetaminophen"}, got[0].Synonyms)
	assert.Equal(t, "N02BE01", got[0].Code)
}

func TestSearchCompanies(t *testing.T) {
	store := seededStore(t)

	tests := []struct {
		name  string
		query CompanyQuery
		want  []string
	}{
		{"by name", CompanyQuery{Query: "novartis"}, []string{"Novartis"}},
		{"by sector", CompanyQuery{Query: "generic"}, []string{"Teva Pharmaceutical", "MedCore Pharmaceuticals"}},
		{"country filter", CompanyQuery{Country: "switzerland"}, []string{"Novartis", "Roche"}},
		{"query and country", CompanyQuery{Query: "vaccines", Country: "United States"}, []string{"Pfizer"}},
		{"country is exact", CompanyQuery{Country: "Switz"}, nil},
		{"limit", CompanyQuery{Limit: 2}, []string{"Teva Pharmaceutical", "Novartis"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchCompanies(context.Background(), tt.query)
			require.NoError(t, err)
			var names []string
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestRegions(t *testing.T) {
	store := seededStore(t)
	got, err := store.Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"North America", "Europe", "Asia Pacific", "Latin America", "Africa", "Middle East",
	}, got)
}

// --- matching ---

func TestMatchProspects(t *testing.T) {
	store := seededStore(t)

	tests := []struct {
		name  string
		query MatchQuery
		want  []string
	}{
		{
			name: "all sorted by score",
			want: []string{
				"MedCore Pharmaceuticals", "Global Health Networks", "BioPharma Solutions",
				"PharmaVision Corp", "MediTech Innovations",
			},
		},
		{"market by region", MatchQuery{Markets: []string{"asia pacific"}}, []string{"Global Health Networks", "MediTech Innovations"}},
		{"market by country", MatchQuery{Markets: []string{"Germany", "Brazil"}}, []string{"MedCore Pharmaceuticals", "BioPharma Solutions"}},
		{"blank markets ignored", MatchQuery{Markets: []string{" "}, Limit: 1}, []string{"MedCore Pharmaceuticals"}},
		{"min score", MatchQuery{MinScore: 80}, []string{"MedCore Pharmaceuticals", "Global Health Networks"}},
		{"segment", MatchQuery{Segment: "specialty"}, []string{"BioPharma Solutions"}},
		{"product", MatchQuery{Product: "vaccine"}, []string{"Global Health Networks"}},
		{"no match", MatchQuery{Markets: []string{"Africa"}}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.MatchProspects(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, prospectNames(got))
		})
	}
}

func TestGetProspect(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	p, err := store.GetProspect(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "MedCore Pharmaceuticals", p.Name)
	assert.Equal(t, "Germany", p.Country)
	assert.Equal(t, "Europe", p.Region)
	assert.Equal(t, 92, p.OpportunityScore)
	assert.Equal(t, "Hot Lead", p.Status)
	assert.Equal(t, []string{"Antibiotics", "Pain Relief", "Cardiovascular"}, p.KeyProducts)
	assert.NotNil(t, p.KeyContacts)
	assert.Contains(t, p.Description, "generic medications in Europe")

	_, err = store.GetProspect(ctx, "999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddProspect(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   types.Prospect
	}{
		{"missing name", types.Prospect{ID: "x"}},
		{"blank name", types.Prospect{Name: "   "}},
		{"score above range", types.Prospect{Name: "Acme", OpportunityScore: 101}},
		{"negative score", types.Prospect{Name: "Acme", OpportunityScore: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.AddProspect(ctx, tt.in)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	p := types.Prospect{
		ID:               "x",
		Name:             " Acme ",
		OpportunityScore: 60,
		KeyContacts:      []types.KeyContact{{Name: "Jo", Role: "CPO"}},
	}
	added, err := store.AddProspect(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "x", added.ID)
	assert.Equal(t, "Acme", added.Name)

	got, err := store.GetProspect(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	assert.Equal(t, p.KeyContacts, got.KeyContacts)

	generated, err := store.AddProspect(ctx, types.Prospect{Name: "Beta Labs"})
	require.NoError(t, err)
	assert.NotEmpty(t, generated.ID)
	assert.NotNil(t, generated.KeyContacts)

	got, err = store.GetProspect(ctx, generated.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beta Labs", got.Name)
}

// --- contacts ---

func TestProspectContacts(t *testing.T) {
	store := seededStore(t)

	got, err := store.ProspectContacts(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dr. Sarah Chen", got[0].Name)
	assert.Equal(t, "s.chen@medcore.com", got[0].Email)
	assert.Equal(t, SourceSeed, got[0].Source)
	assert.Equal(t, "Thomas Weber", got[1].Name)

	none, err := store.ProspectContacts(context.Background(), "5")
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}

func TestSearchContacts(t *testing.T) {
	store := seededStore(t)

	tests := []struct {
		name  string
		query ContactQuery
		want  []string
	}{
		{"by name", ContactQuery{Query: "priya"}, []string{"Dr. Priya Sharma"}},
		{"by role", ContactQuery{Query: "procurement"}, []string{"Dr. Sarah Chen"}},
		{"department", ContactQuery{Department: "research & development"}, []string{"Dr. Priya Sharma", "Thomas Weber"}},
		{"seniority", ContactQuery{Seniority: "VP Level"}, []string{"Marcus Rodriguez"}},
		{"prospect", ContactQuery{ProspectID: "4"}, []string{"James Mitchell"}},
		{"limit", ContactQuery{Limit: 1}, []string{"Dr. Priya Sharma"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchContacts(context.Background(), tt.query)
			require.NoError(t, err)
			var names []string
			for _, c := range got {
				names = append(names, c.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestAddContact(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := store.AddContact(ctx, types.Contact{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalid)

	c, err := store.AddContact(ctx, types.Contact{
		ProspectID: "5",
		Company:    "MediTech Innovations",
		Name:       " Aiko Tanaka ",
		Role:       "Purchasing Manager",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Aiko Tanaka", c.Name)
	assert.Equal(t, SourceManual, c.Source)

	got, err := store.ProspectContacts(ctx, "5")
	require.NoError(t, err)
	assert.Equal(t, []types.Contact{c}, got)
}

func TestContactStats(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	_, err := store.AddContact(ctx, types.Contact{Name: "No Department"})
	require.NoError(t, err)

	stats, err := store.ContactStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, map[string]int{
		"Procurement":            1,
		"Research & Development": 2,
		"Business Development":   1,
		"Operations":             1,
		"Other":                  1,
	}, stats.ByDepartment)
	assert.Equal(t, 2, stats.BySeniority["Director Level"])
	assert.Equal(t, 1, stats.BySeniority["Other"])
	assert.Equal(t, map[string]int{SourceSeed: 5, SourceManual: 1}, stats.BySource)
}

// --- research runs ---

func sampleRun(id, createdAt string) types.ResearchRun {
	return types.ResearchRun{
		ID:             id,
		CompanyName:    "Acme",
		CompanyWebsite: "https://acme.example",
		CreatedAt:      createdAt,
		Result: types.ResearchResult{
			SourceCompany:      types.SourceCompany{Name: "Acme", URL: "https://acme.example", Overview: "Makes APIs."},
			ExtractionStrategy: types.StrategyTable,
			DiscoveredBuyers: []types.Prospect{
				{
					ID:          "research-1",
					Name:        "Beta Pharma",
					KeyContacts: []types.KeyContact{{Name: "Ann Lee", Role: "CPO"}, {Name: "Bo Chan"}},
				},
				{ID: "research-2", Name: "Gamma Labs", KeyContacts: []types.KeyContact{}},
			},
		},
	}
}

func TestSaveResearchRun(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	run := sampleRun("run-1", "2026-01-02T03:04:05Z")
	require.NoError(t, store.SaveResearchRun(ctx, run))

	got, err := store.GetResearchRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, got)

	contacts, err := store.ProspectContacts(ctx, "run-1/research-1")
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Ann Lee", contacts[0].Name)
	assert.Equal(t, "CPO", contacts[0].Role)
	assert.Equal(t, "Beta Pharma", contacts[0].Company)
	assert.Equal(t, SourceResearch, contacts[0].Source)

	// Saving again replaces the run's contacts.
	require.NoError(t, store.SaveResearchRun(ctx, run))
	stats, err := store.ContactStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)

	_, err = store.GetResearchRun(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListResearchRuns(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	require.NoError(t, store.SaveResearchRun(ctx, sampleRun("old", "2026-01-01T00:00:00Z")))
	require.NoError(t, store.SaveResearchRun(ctx, sampleRun("new", "2026-02-01T00:00:00Z")))

	runs, err := store.ListResearchRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].ID)
	assert.Equal(t, "old", runs[1].ID)

	runs, err = store.ListResearchRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

// --- summary ---

func TestSummary(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveResearchRun(ctx, sampleRun("run-1", "2026-01-02T03:04:05Z")))

	summary, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Contacts)
	assert.Equal(t, 1, summary.ResearchRuns)
	require.Len(t, summary.TopProspects, 5)
	assert.Equal(t, "MedCore Pharmaceuticals", summary.TopProspects[0].Name)
}

func TestGetCompany(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	companies, err := store.SearchCompanies(ctx, CompanyQuery{Query: "Novartis"})
	require.NoError(t, err)
	require.Len(t, companies, 1)

	got, err := store.GetCompany(ctx, companies[0].ID)
	require.NoError(t, err)
	assert.Equal(t, companies[0], got)

	_, err = store.GetCompany(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- market ---

func TestMarketTrends(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	trends, err := store.MarketTrends(ctx, TrendsQuery{})
	require.NoError(t, err)
	assert.Equal(t, types.Indicator{Value: 847.2, Unit: "B", Currency: "USD", Change: 12.3, Trend: "up"}, trends.GlobalTradeVolume)
	assert.Equal(t, types.Indicator{Value: 187, Change: -2, Trend: "down"}, trends.ActiveMarkets)
	assert.Len(t, trends.RegionalBreakdown, 5)
	require.Len(t, trends.MonthlyTrends, 12)
	assert.Equal(t, "Jan", trends.MonthlyTrends[0].Month)
	assert.Equal(t, "Dec", trends.MonthlyTrends[11].Month)

	tests := []struct {
		name    string
		query   TrendsQuery
		regions int
		months  []string
	}{
		{"region filter ignores case", TrendsQuery{Region: "europe"}, 1, nil},
		{"last three months", TrendsQuery{Period: "3m"}, 5, []string{"Oct", "Nov", "Dec"}},
		{"years cap at available months", TrendsQuery{Period: "2y"}, 5, nil},
		{"unknown region", TrendsQuery{Region: "Antarctica"}, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.MarketTrends(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, got.RegionalBreakdown, tt.regions)
			assert.NotNil(t, got.RegionalBreakdown)
			if tt.months != nil {
				var months []string
				for _, m := range got.MonthlyTrends {
					months = append(months, m.Month)
				}
				assert.Equal(t, tt.months, months)
			}
		})
	}

	for _, period := range []string{"12", "0m", "1w", "soon"} {
		_, err := store.MarketTrends(ctx, TrendsQuery{Period: period})
		assert.ErrorIs(t, err, ErrInvalid, period)
	}
}

func TestTopExporters(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query ExporterQuery
		want  []string
	}{
		{"default limit", ExporterQuery{}, []string{"Teva Pharmaceutical", "Novartis", "Pfizer", "Roche", "Johnson & Johnson"}},
		{"limit", ExporterQuery{Limit: 2}, []string{"Teva Pharmaceutical", "Novartis"}},
		{"region", ExporterQuery{Region: "Europe"}, []string{"Novartis", "Roche"}},
		{"country", ExporterQuery{Region: "united states"}, []string{"Pfizer", "Johnson & Johnson"}},
		{"product type", ExporterQuery{ProductType: "oncology"}, []string{"Novartis", "Pfizer", "Roche"}},
		{"no match", ExporterQuery{Region: "Africa"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.TopExporters(ctx, tt.query)
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, e := range got {
				names[i] = e.Company
			}
			assert.Equal(t, tt.want, names)
		})
	}

	got, err := store.TopExporters(ctx, ExporterQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, types.Exporter{
		Rank: 1, Company: "Teva Pharmaceutical", Country: "Israel", Region: "Middle East",
		Volume: "$72.4B", MarketShare: 8.5, Growth: "+15.2%",
		Products: []string{"Generic APIs", "Biosimilars", "OTC"},
	}, got[0])
}

func TestTopProducts(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()

	all, err := store.TopProducts(ctx, ProductSalesQuery{})
	require.NoError(t, err)
	require.Len(t, all, 10)
	assert.Equal(t, types.ProductSales{Rank: 1, Name: "Adalimumab", Category: "Immunology", Volume: "$21.2B", Growth: "+8.7%"}, all[0])
	assert.Equal(t, "Insulin Glargine", all[9].Name)

	oncology, err := store.TopProducts(ctx, ProductSalesQuery{Category: "ONCOLOGY", Limit: 2})
	require.NoError(t, err)
	require.Len(t, oncology, 2)
	assert.Equal(t, "Pembrolizumab", oncology[0].Name)
	assert.Equal(t, "Lenalidomide", oncology[1].Name)
}

// --- events ---

func TestRecordEvent(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	err := store.RecordEvent(ctx, types.Event{Type: " "})
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: "Search", Data: map[string]any{"query": "Insulin"}}))
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventSearch, Query: "insulin"}))
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventSearch, Query: "oncology"}))
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventExport}))

	searches, err := store.PopularSearches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, searches, 2)
	assert.Equal(t, "insulin", searches[0].Query)
	assert.Equal(t, 2, searches[0].Count)
	assert.NotEmpty(t, searches[0].LastSearch)
	assert.Equal(t, "oncology", searches[1].Query)

	searches, err = store.PopularSearches(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, searches, 1)
}

func TestUsageMetric(t *testing.T) {
	store := testSetup(t)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) { store.now = func() time.Time { return now.Add(-d) } }

	at(0)
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventSearch, Query: "a"}))
	at(3 * 24 * time.Hour)
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventSearch, Query: "b"}))
	at(20 * 24 * time.Hour)
	require.NoError(t, store.RecordEvent(ctx, types.Event{Type: EventMatch}))
	at(0)

	tests := []struct {
		metric string
		period string
		want   int
	}{
		{"search_volume", "1d", 1},
		{"search_volume", "", 2},
		{"search_volume", "30d", 2},
		{"prospect_matches", "7d", 0},
		{"prospect_matches", "1m", 1},
		{"user_engagement", "90d", 3},
		{"export_volume", "1y", 0},
	}
	for _, tt := range tests {
		t.Run(tt.metric+"/"+tt.period, func(t *testing.T) {
			m, err := store.UsageMetric(ctx, tt.metric, tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Value)
			assert.Equal(t, tt.metric, m.MetricType)
			assert.Equal(t, "2026-03-10T12:00:00Z", m.Timestamp)
		})
	}

	_, err := store.UsageMetric(ctx, "page_views", "7d")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = store.UsageMetric(ctx, "search_volume", "forever")
	assert.ErrorIs(t, err, ErrInvalid)
}
