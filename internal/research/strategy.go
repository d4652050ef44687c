// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"strings"

	"github.com/pdiddy/pharmasage/internal/markdown"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// document is a research report prepared for buyer extraction.
type document struct {
	lines       []string
	index       *markdown.Index
	tables      []markdown.Table
	companyName string
}

func newDocument(text, companyName string) *document {
	d := &document{
		lines:       strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"),
		index:       markdown.NewIndex(text),
		companyName: companyName,
	}
	for _, t := range markdown.FindTables(text) {
		d.tables = append(d.tables, markdown.ParseTable(t))
	}
	return d
}

// skippedRows totals malformed rows across every table in the document.
func (d *document) skippedRows() int {
	n := 0
	for _, t := range d.tables {
		n += t.Skipped
	}
	return n
}

// strategy extracts buyers from a document. A nil or empty result means the
// strategy did not apply.
type strategy struct {
	name    types.ExtractionStrategy
	extract func(d *document) []types.Prospect
}

// defaultStrategies are tried in order; the first to produce buyers wins.
var defaultStrategies = []strategy{
	{name: types.StrategyTable, extract: tableStrategy},
	{name: types.StrategySectionList, extract: sectionListStrategy},
	{name: types.StrategyDocumentHeuristic, extract: documentHeuristicStrategy},
}

// firstMatch runs strategies in order and returns the buyers of the first one
// that yields any. When none does it returns an empty, non-nil slice and
// StrategyNone.
func firstMatch(d *document, strategies []strategy) ([]types.Prospect, types.ExtractionStrategy) {
	for _, s := range strategies {
		if buyers := s.extract(d); len(buyers) > 0 {
			return buyers, s.name
		}
	}
	return []types.Prospect{}, types.StrategyNone
}

// tableStrategy reads the first table that has a Company Name column and at
// least one well-formed row.
func tableStrategy(d *document) []types.Prospect {
	for _, t := range d.tables {
		if !t.HasColumn(ColumnCompanyName) || len(t.Rows) == 0 {
			continue
		}
		buyers := make([]types.Prospect, 0, len(t.Rows))
		for i, row := range t.Rows {
			buyers = append(buyers, BuildProspect(row, i))
		}
		return buyers
	}
	return nil
}

// subItem reports whether a section is a bold-only line naming an item of the
// section above it rather than a section of its own.
func subItem(s markdown.Section) bool {
	return s.Bold && !isReportHeading(s.Title)
}

// sectionListStrategy reads the companies listed under a recommended targets
// heading, including bold-only lines that would otherwise end the section.
func sectionListStrategy(d *document) []types.Prospect {
	body, ok := d.index.FirstBlock(subItem, targetTitles...)
	if !ok {
		return nil
	}
	return candidateProspects(sectionListCandidates(body), d.companyName, 1)
}

// documentHeuristicStrategy scans everything outside the company profile
// sections for items that look like company names.
func documentHeuristicStrategy(d *document) []types.Prospect {
	excluded := make([]bool, len(d.lines))
	for _, s := range d.index.Blocks(subItem) {
		if !profileSections[strings.ToLower(s.Title)] {
			continue
		}
		for i := s.StartLine; i < s.EndLine && i < len(excluded); i++ {
			excluded[i] = true
		}
	}
	cands := documentCandidates(d.lines, func(i int) bool { return excluded[i] })
	return candidateProspects(cands, d.companyName, 4)
}
