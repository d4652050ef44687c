// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/pdiddy/pharmasage/pkg/types"
)

const fixedID = "3f2c8a4e-7b1d-4c5e-9a6f-0d1e2f3a4b5c"

func testExporter(t *testing.T) *Exporter {
	t.Helper()
	e, err := New(types.ExportConfig{Dir: t.TempDir()})
	require.NoError(t, err)
	e.now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	e.newID = func() string { return fixedID }
	return e
}

var sampleProspects = []types.Prospect{
	{
		ID:               "1",
		Name:             "MedCore Pharmaceuticals",
		Country:          "Germany",
		Region:           "Europe",
		TargetSegment:    "Generic Medications",
		OpportunityScore: 92,
		Status:           "Hot Lead",
		KeyProducts:      []string{"Antibiotics", "Pain Relief"},
		KeyContacts:      []types.KeyContact{{Name: "Dr. Sarah Chen", Role: "CPO"}},
	},
	{
		ID:          "2",
		Name:        "BioPharma Solutions",
		KeyContacts: []types.KeyContact{},
	},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"json", FormatJSON, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteCSV(t *testing.T) {
	e := testExporter(t)

	file, err := e.Write(Prospects(sampleProspects, true), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, File{
		ID:          fixedID,
		Name:        "pharmasage_prospects_20260304_050607.csv",
		DownloadURL: "/api/export/download/" + fixedID,
		Format:      FormatCSV,
	}, file)

	path, name, err := e.Open(file.ID)
	require.NoError(t, err)
	assert.Equal(t, file.Name, name)
	assert.Equal(t, FormatCSV, FormatOf(name))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 5)
	assert.Equal(t, "Company Name", records[0][1])
	assert.Equal(t, []string{
		"1", "MedCore Pharmaceuticals", "", "Germany", "Europe", "Generic Medications",
		"92", "Hot Lead", "", "", "", "Antibiotics; Pain Relief", "",
	}, records[1])
	assert.Equal(t, []string{"Prospect ID", "Company Name", "Name", "Role"}, records[3])
	assert.Equal(t, []string{"1", "MedCore Pharmaceuticals", "Dr. Sarah Chen", "CPO"}, records[4])
}

func TestWriteXLSX(t *testing.T) {
	e := testExporter(t)

	run := types.ResearchRun{
		ID:        "run-1",
		CreatedAt: "2026-03-04T05:06:07Z",
		Result: types.ResearchResult{
			SourceCompany:      types.SourceCompany{Name: "Acme", URL: "https://acme.example"},
			DiscoveredBuyers:   sampleProspects,
			ExtractionStrategy: types.StrategyTable,
		},
	}
	file, err := e.Write(ResearchRun(run), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "pharmasage_research_20260304_050607.xlsx", file.Name)

	path, _, err := e.Open(file.ID)
	require.NoError(t, err)

	x, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer x.Close()

	assert.Equal(t, []string{"Source Company", "Discovered Buyers", "Key Contacts"}, x.GetSheetList())

	rows, err := x.GetRows("Source Company")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Acme"}, rows[3])
	assert.Equal(t, []string{"Extraction Strategy", "table"}, rows[9])

	buyers, err := x.GetRows("Discovered Buyers")
	require.NoError(t, err)
	require.Len(t, buyers, 3)
	assert.Equal(t, "BioPharma Solutions", buyers[2][1])
}

func TestWriteJSON(t *testing.T) {
	e := testExporter(t)

	products := []types.Product{{ID: "1", APIName: "Paracetamol", Synonyms: []string{"Acetaminophen"}}}
	file, err := e.Write(Products(products), FormatJSON)
	require.NoError(t, err)

	path, _, err := e.Open(file.ID)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []types.Product
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, products, got)
}

func TestWrite_UnsupportedFormat(t *testing.T) {
	e := testExporter(t)
	_, err := e.Write(Companies(nil), Format("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestOpen_NotFound(t *testing.T) {
	e := testExporter(t)

	for _, id := range []string{"../etc/passwd", "not-a-uuid", "00000000-0000-0000-0000-000000000000"} {
		_, _, err := e.Open(id)
		assert.ErrorIs(t, err, ErrNotFound, id)
	}
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Sheet3", sheetName("  ", 2))
	assert.Equal(t, "Q1-Q2 - Leads", sheetName("Q1/Q2 : Leads", 0))
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyzabcde", sheetName("abcdefghijklmnopqrstuvwxyzabcdefgh", 0))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/json", FormatJSON.ContentType())
	assert.Equal(t, "application/octet-stream", Format("bin").ContentType())
}

func TestMarketDatasets(t *testing.T) {
	trends := types.MarketTrends{
		GlobalTradeVolume: types.Indicator{Value: 1.2, Unit: "trillion", Currency: "USD", Change: 8.5, Trend: "up"},
		ActiveProducts:    types.Indicator{Value: 15847, Change: 12.3, Trend: "up"},
		RegionalBreakdown: []types.RegionalVolume{{Name: "Europe", Volume: 420, Growth: 7.8}},
		MonthlyTrends:     []types.MonthlyTrend{{Month: "Jan", Value: 85}, {Month: "Feb", Value: 92}},
	}
	exporters := []types.Exporter{{
		Rank: 1, Company: "Teva", Country: "Israel", Region: "Middle East",
		Volume: "$18.2B", MarketShare: 15.2, Growth: "+8.5%", Products: []string{"Generics", "APIs"},
	}}
	products := []types.ProductSales{{Rank: 1, Name: "Paracetamol", Category: "Analgesics", Volume: "$2.1B", Growth: "+5.2%"}}

	tests := []struct {
		name   string
		d      Dataset
		kind   string
		sheets []string
		row    []string
	}{
		{
			name:   "trends",
			d:      MarketTrends(trends),
			kind:   "trends",
			sheets: []string{"Indicators", "Regions", "Monthly Trends"},
			row:    []string{"Global Trade Volume", "1.2", "trillion", "USD", "8.5", "up"},
		},
		{
			name:   "exporters",
			d:      Exporters(exporters),
			kind:   "exporters",
			sheets: []string{"Top Exporters"},
			row:    []string{"1", "Teva", "Israel", "Middle East", "$18.2B", "15.2", "+8.5%", "Generics; APIs"},
		},
		{
			name:   "top products",
			d:      TopProducts(products),
			kind:   "top-products",
			sheets: []string{"Top Products"},
			row:    []string{"1", "Paracetamol", "Analgesics", "$2.1B", "+5.2%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.d.Kind)
			var names []string
			for _, s := range tt.d.Sheets {
				names = append(names, s.Name)
				for _, row := range s.Rows {
					assert.Len(t, row, len(s.Header), s.Name)
				}
			}
			assert.Equal(t, tt.sheets, names)
			require.NotEmpty(t, tt.d.Sheets[0].Rows)
			assert.Equal(t, tt.row, tt.d.Sheets[0].Rows[0])
		})
	}

	t.Run("xlsx", func(t *testing.T) {
		e := testExporter(t)
		file, err := e.Write(MarketTrends(trends), FormatXLSX)
		require.NoError(t, err)
		assert.Equal(t, "pharmasage_trends_20260304_050607.xlsx", file.Name)

		path, _, err := e.Open(file.ID)
		require.NoError(t, err)
		x, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer x.Close()

		rows, err := x.GetRows("Monthly Trends")
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Month", "Value"}, {"Jan", "85"}, {"Feb", "92"}}, rows)
	})
}
