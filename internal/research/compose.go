// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pharmasage/internal/markdown"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// Section titles searched for each part of the source company profile, most
// specific first.
var (
	overviewTitles      = []string{"source company overview", "company overview", "overview"}
	businessModelTitles = []string{"business model", "product portfolio summary", "product portfolio"}
	therapeuticTitles   = []string{"therapeutic coverage", "therapeutic areas", "therapeutic focus"}
	icpTitles           = []string{
		"ideal customer profile",
		"ideal target customer profile",
		"target customer profile",
		"target customer",
		"customer profile",
	}
	targetTitles = []string{
		"recommended target companies table",
		"recommended target companies",
		"recommended targets",
		"potential buyers",
		"target companies",
	}
)

// Placeholders used when a profile section is missing.
const (
	NoOverview      = "No overview available."
	NoBusinessModel = "No business model information available."
	NoTherapeutic   = "No therapeutic coverage information available."
	NoICP           = "No ideal customer profile available."
)

var (
	profileSections = titleSet(overviewTitles, businessModelTitles, therapeuticTitles, icpTitles)
	knownSections   = titleSet(overviewTitles, businessModelTitles, therapeuticTitles, icpTitles, targetTitles)
)

func titleSet(lists ...[]string) map[string]bool {
	set := make(map[string]bool)
	for _, l := range lists {
		for _, t := range l {
			set[t] = true
		}
	}
	return set
}

// thinkTag matches an opening or closing <think> or <thinking> tag.
var thinkTag = regexp.MustCompile(`(?i)<(/?)think(?:ing)?\b[^>]*>`)

// Report describes how a result was extracted.
type Report struct {
	Strategy    types.ExtractionStrategy
	Tables      int
	SkippedRows int
	Buyers      int
}

// StripReasoning removes model reasoning wrapped in <think> or <thinking>
// tags. Tags may nest. An opening tag without a closing tag removes the rest
// of the document. A closing tag that comes before any other tag removes
// everything before it; later stray closing tags are dropped on their own.
func StripReasoning(doc string) string {
	var (
		b     strings.Builder
		depth int
		last  int
	)
	for i, m := range thinkTag.FindAllStringSubmatchIndex(doc, -1) {
		outside := doc[last:m[0]]
		last = m[1]
		closing := m[3] > m[2]

		if depth > 0 {
			if closing {
				depth--
			} else {
				depth++
			}
			continue
		}
		if closing && i == 0 {
			continue
		}
		b.WriteString(outside)
		if !closing {
			depth++
		}
	}
	if depth == 0 {
		b.WriteString(doc[last:])
	}
	return strings.TrimSpace(b.String())
}

// Compose turns a research report into a structured result. It never fails:
// missing sections become placeholders and missing buyers an empty list.
func Compose(doc, companyName, companyWebsite string) types.ResearchResult {
	result, _ := ComposeWithReport(doc, companyName, companyWebsite)
	return result
}

// ComposeWithReport is Compose plus extraction diagnostics.
func ComposeWithReport(doc, companyName, companyWebsite string) (types.ResearchResult, Report) {
	d := newDocument(StripReasoning(doc), companyName)

	overview := firstOr(d.index, NoOverview, overviewTitles...)
	business := firstOr(d.index, NoBusinessModel, businessModelTitles...)

	therapeutic, ok := d.index.First(therapeuticTitles...)
	if !ok {
		therapeutic = business
		if therapeutic == NoBusinessModel {
			therapeutic = NoTherapeutic
		}
	}

	buyers, strat := firstMatch(d, defaultStrategies)

	result := types.ResearchResult{
		SourceCompany: types.SourceCompany{
			Name:                companyName,
			URL:                 companyWebsite,
			Overview:            overview,
			BusinessModel:       business,
			TherapeuticCoverage: therapeutic,
		},
		IdealCustomerProfile: firstOr(d.index, NoICP, icpTitles...),
		DiscoveredBuyers:     buyers,
		ExtractionStrategy:   strat,
	}
	report := Report{
		Strategy:    strat,
		Tables:      len(d.tables),
		SkippedRows: d.skippedRows(),
		Buyers:      len(buyers),
	}
	return result, report
}

func firstOr(idx *markdown.Index, def string, titles ...string) string {
	if body, ok := idx.First(titles...); ok {
		return body
	}
	return def
}
