package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pharmasage/internal/markdown"
	"github.com/pdiddy/pharmasage/pkg/types"
)

func row(columns []string, values ...string) markdown.Row {
	return markdown.Row{Columns: columns, Values: values}
}

var fullColumns = []string{
	ColumnCompanyName, ColumnWebsite, ColumnCountryRegion,
	ColumnTargetSegment, ColumnKeyContacts, ColumnReason,
}

func TestBuildProspect(t *testing.T) {
	r := row(fullColumns,
		"Acme Pharma", "https://acme.example", "Germany/Europe",
		"Distributor", "Jane Doe, CEO", "Strong regional fit")

	p := BuildProspect(r, 0)

	assert.Equal(t, types.Prospect{
		ID:                      "research-1",
		Name:                    "Acme Pharma",
		Country:                 "Germany/Europe",
		Region:                  "Europe",
		TargetSegment:           "Distributor",
		Website:                 "https://acme.example",
		KeyContacts:             []types.KeyContact{{Name: "Jane Doe", Role: "CEO"}},
		ReasonForRecommendation: "Strong regional fit",
		OpportunityScore:        75,
		Status:                  "Research",
		Confidence:              types.ConfidenceHigh,
	}, p)
}

func TestBuildProspect_Defaults(t *testing.T) {
	t.Run("missing columns", func(t *testing.T) {
		p := BuildProspect(row([]string{"Other"}, "x"), 4)

		assert.Equal(t, "research-5", p.ID)
		assert.Equal(t, DefaultCompanyName, p.Name)
		assert.Equal(t, DefaultLocation, p.Country)
		assert.Equal(t, "", p.Region)
		assert.Equal(t, DefaultSegment, p.TargetSegment)
		assert.Equal(t, "", p.Website)
		assert.Equal(t, "", p.ReasonForRecommendation)
		assert.NotNil(t, p.KeyContacts)
		assert.Empty(t, p.KeyContacts)
	})

	t.Run("blank cells", func(t *testing.T) {
		p := BuildProspect(row(fullColumns, "", "", " ", "", "", ""), 0)

		assert.Equal(t, DefaultCompanyName, p.Name)
		assert.Equal(t, DefaultLocation, p.Country)
		assert.Equal(t, DefaultSegment, p.TargetSegment)
		assert.Equal(t, "", p.Website)
		assert.Empty(t, p.KeyContacts)
	})

	t.Run("country without region", func(t *testing.T) {
		p := BuildProspect(row([]string{ColumnCountryRegion}, "Brazil"), 0)
		assert.Equal(t, "Brazil", p.Country)
		assert.Equal(t, "", p.Region)
	})
}

func TestBuildProspect_StripsEmphasis(t *testing.T) {
	p := BuildProspect(row([]string{ColumnCompanyName, ColumnReason},
		"**Acme   Pharma**", "[Large](https://x.example) *regional* buyer"), 0)

	assert.Equal(t, "Acme Pharma", p.Name)
	assert.Equal(t, "Large regional buyer", p.ReasonForRecommendation)
}

func TestParseKeyContacts(t *testing.T) {
	tests := []struct {
		in   string
		want []types.KeyContact
	}{
		{"Jane Doe, CTO; John Roe", []types.KeyContact{{Name: "Jane Doe", Role: "CTO"}, {Name: "John Roe", Role: ""}}},
		{"", []types.KeyContact{}},
		{" ; ;", []types.KeyContact{}},
		{"Ana Silva, Head of Procurement, EU", []types.KeyContact{{Name: "Ana Silva", Role: "Head of Procurement, EU"}}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseKeyContacts(tt.in))
		})
	}
}

func TestWebsiteFrom(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://acme.example", "https://acme.example"},
		{"[acme.example](https://acme.example/en)", "https://acme.example/en"},
		{"<https://acme.example>", "https://acme.example"},
		{"see http://acme.example/about.", "http://acme.example/about"},
		{"www.acme.example", "www.acme.example"},
		{"acme.de", "acme.de"},
		{"N/A", ""},
		{"Not available", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, websiteFrom(tt.in))
		})
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in, name, rest string
	}{
		{"Acme Pharma: German generics maker", "Acme Pharma", "German generics maker"},
		{"Acme Pharma - German generics maker", "Acme Pharma", "German generics maker"},
		{"Acme Pharma — German generics maker", "Acme Pharma", "German generics maker"},
		{"Acme Pharma (https://acme.example)", "Acme Pharma (https://acme.example)", ""},
		{"Acme Pharma", "Acme Pharma", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			name, rest := splitName(tt.in)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.rest, rest)
		})
	}
}

func TestSectionListCandidates(t *testing.T) {
	body := `Our picks:

1. **Beta Pharma** - Hospital supplier in Spain
   - Website: https://beta.example
   - Country: Spain/Europe
   - Key Contacts: Luis Ortega, Procurement Director
2. Gamma Health: Large distributor
- Reason: Expanding oncology portfolio`

	cands := sectionListCandidates(body)
	require.Len(t, cands, 2)

	ps := candidateProspects(cands, "Acme", 1)
	require.Len(t, ps, 2)

	beta := ps[0]
	assert.Equal(t, "research-1", beta.ID)
	assert.Equal(t, "Beta Pharma", beta.Name)
	assert.Equal(t, "https://beta.example", beta.Website)
	assert.Equal(t, "Spain/Europe", beta.Country)
	assert.Equal(t, "Europe", beta.Region)
	assert.Equal(t, DefaultFallbackSegment, beta.TargetSegment)
	assert.Equal(t, []types.KeyContact{{Name: "Luis Ortega", Role: "Procurement Director"}}, beta.KeyContacts)
	assert.Equal(t, "Hospital supplier in Spain", beta.ReasonForRecommendation)
	assert.Equal(t, types.ConfidenceLow, beta.Confidence)

	gamma := ps[1]
	assert.Equal(t, "research-2", gamma.ID)
	assert.Equal(t, "Gamma Health", gamma.Name)
	assert.Equal(t, DefaultLocation, gamma.Country)
	assert.Equal(t, "Expanding oncology portfolio", gamma.ReasonForRecommendation)
}

func TestSectionListCandidates_BoldLines(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		names []string
	}{
		{
			name:  "bold names with field lines",
			body:  "**Beta Pharma**\nWebsite: https://beta.example\n\n**Gamma Labs**\n- Reason: distributor",
			names: []string{"Beta Pharma", "Gamma Labs"},
		},
		{
			name:  "numbered bold names",
			body:  "**1. Beta Pharma**\n**2) Gamma Labs - distributor**",
			names: []string{"Beta Pharma", "Gamma Labs"},
		},
		{
			name:  "labels and report headings skipped",
			body:  "**Beta Pharma**\n**Key contacts:**\nJane Doe, CEO\n**Next Steps**\nCall.",
			names: []string{"Beta Pharma"},
		},
		{
			name:  "list items win over bold groupings",
			body:  "**Hospitals**\n- Beta Pharma: supplier\n**Distributors**\n- Gamma Labs",
			names: []string{"Beta Pharma", "Gamma Labs"},
		},
		{
			name: "no names",
			body: "Plain prose only.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, c := range sectionListCandidates(tt.body) {
				names = append(names, c.name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestCandidateProspects_DedupesAndFilters(t *testing.T) {
	cands := []candidate{
		{name: "Delta Labs"},
		{name: "delta labs"},
		{name: "Abc"},
		{name: ""},
	}

	ps := candidateProspects(cands, "", 4)
	require.Len(t, ps, 1)
	assert.Equal(t, "Delta Labs", ps[0].Name)
	assert.Equal(t, "Potential buyer for the source company's products", ps[0].ReasonForRecommendation)
}
