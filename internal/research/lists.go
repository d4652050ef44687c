// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"strings"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Prose fallbacks. When a report lists its recommendations as bullets or
// numbered paragraphs instead of a table, items are turned into low
// confidence prospects.

var (
	// listItem matches a bullet or numbered list item and captures its indent.
	listItem = regexp.MustCompile(`^(\s*)(?:[-*+]|\d+[.)])\s+(.*)$`)

	// leadingBold captures "**Name** rest" and "**Name:** rest".
	leadingBold = regexp.MustCompile(`^(?:\*\*|__)(.+?)(?:\*\*|__)(.*)$`)

	numberedHeading = regexp.MustCompile(`^\s{0,3}#{1,6}\s*\d+[.)]\s+(.+?)\s*#*\s*$`)
	numberedBold    = regexp.MustCompile(`^\s*\d+[.)]\s+((?:\*\*|__).+)$`)
	boldNumbered    = regexp.MustCompile(`^\s*(?:\*\*|__)\d+[.)]\s+(.+?)(?:\*\*|__)(.*)$`)
	numberedCapital = regexp.MustCompile(`^\s*\d+[.)]\s+([A-Z].*)$`)
	bulletCapital   = regexp.MustCompile(`^[-*+]\s+([A-Z].*)$`)
	leadingNumber   = regexp.MustCompile(`^\d+[.)]\s+`)
	boldLine        = regexp.MustCompile(`^\s*(?:\*\*([^*]+)\*\*|__([^_]+)__)\s*$`)
	anyHeading      = regexp.MustCompile(`^\s{0,3}#{1,6}(?:\s|$)`)

	fieldLine = regexp.MustCompile(`^([A-Za-z][A-Za-z /]{0,30}?)\s*:\s*(.*)$`)
)

// field identifies a labelled line inside a list item, e.g. "Website: ...".
type field int

const (
	fieldNone field = iota
	fieldWebsite
	fieldReason
	fieldCountry
	fieldSegment
	fieldContacts
)

var fieldLabels = map[string]field{
	"website":                   fieldWebsite,
	"web":                       fieldWebsite,
	"url":                       fieldWebsite,
	"site":                      fieldWebsite,
	"homepage":                  fieldWebsite,
	"reason":                    fieldReason,
	"reason for recommendation": fieldReason,
	"rationale":                 fieldReason,
	"fit":                       fieldReason,
	"why":                       fieldReason,
	"country":                   fieldCountry,
	"country/region":            fieldCountry,
	"location":                  fieldCountry,
	"headquarters":              fieldCountry,
	"hq":                        fieldCountry,
	"segment":                   fieldSegment,
	"target segment":            fieldSegment,
	"sector":                    fieldSegment,
	"type":                      fieldSegment,
	"key contacts":              fieldContacts,
	"contacts":                  fieldContacts,
	"contact":                   fieldContacts,
}

// reportHeadings are numbered headings that structure a report rather than
// name a company.
var reportHeadings = map[string]bool{
	"introduction":      true,
	"executive summary": true,
	"summary":           true,
	"methodology":       true,
	"market analysis":   true,
	"market overview":   true,
	"recommendations":   true,
	"next steps":        true,
	"conclusion":        true,
	"conclusions":       true,
	"references":        true,
	"sources":           true,
	"notes":             true,
}

// isReportHeading reports whether a numbered heading titles a part of the
// report rather than a company.
func isReportHeading(title string) bool {
	key := strings.ToLower(strings.TrimSpace(title))
	return reportHeadings[key] || knownSections[key]
}

// candidate is one recommended company found in prose: a name, the text that
// followed it on the same line, and the lines that belong to it.
type candidate struct {
	name  string
	rest  string
	lines []string
}

// parseField reports which field a line labels and returns its raw value.
func parseField(line string) (field, string) {
	if m := listItem.FindStringSubmatch(line); m != nil {
		line = m[2]
	}
	label, value, ok := strings.Cut(line, ":")
	if !ok {
		return fieldNone, ""
	}
	m := fieldLine.FindStringSubmatch(plainText(label) + ":")
	if m == nil {
		return fieldNone, ""
	}
	f, ok := fieldLabels[strings.ToLower(strings.TrimSpace(m[1]))]
	if !ok {
		return fieldNone, ""
	}
	value = strings.TrimSpace(value)
	value = strings.TrimSpace(strings.TrimLeft(value, "*_"))
	return f, value
}

// splitName separates a company name from the description that follows it.
// The name ends at the first ":" (not part of a URL scheme) or dash separator.
func splitName(text string) (string, string) {
	cut := -1
	width := 0
	for _, sep := range []string{" - ", " – ", " — "} {
		if i := strings.Index(text, sep); i >= 0 && (cut < 0 || i < cut) {
			cut, width = i, len(sep)
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] != ':' || strings.HasPrefix(text[i:], "://") {
			continue
		}
		if cut < 0 || i < cut {
			cut, width = i, 1
		}
		break
	}
	if cut < 0 {
		return strings.TrimSpace(text), ""
	}
	return strings.TrimSpace(text[:cut]), strings.TrimSpace(text[cut+width:])
}

// nameAndRest splits item text into a name and trailing description. A
// leading bold span is taken as the name.
func nameAndRest(text string) (string, string) {
	text = strings.TrimSpace(text)
	if m := leadingBold.FindStringSubmatch(text); m != nil {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		return plainText(name), plainText(trimSeparators(m[2]))
	}
	return splitName(plainText(text))
}

func trimSeparators(s string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), ":-–—*_ "))
}

// boldName returns the company named by a line made only of bold text.
// Labels ending in a colon and report headings name no company.
func boldName(line string) (string, string, bool) {
	m := boldLine.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	text := strings.TrimSpace(m[1] + m[2])
	if text == "" || strings.HasSuffix(text, ":") {
		return "", "", false
	}
	text = leadingNumber.ReplaceAllString(text, "")
	name, rest := splitName(plainText(text))
	if name == "" || isReportHeading(name) {
		return "", "", false
	}
	return name, rest, true
}

// sectionListCandidates returns the companies listed in a section body. The
// top-level list items are used when any of them names a company; otherwise
// each bold-only line starts a company and the lines below it, list items
// included, are its details.
func sectionListCandidates(body string) []candidate {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	if out := listCandidates(lines); len(out) > 0 {
		return out
	}
	return boldCandidates(lines)
}

func boldCandidates(lines []string) []candidate {
	var (
		out     []candidate
		current *candidate
	)
	for _, l := range lines {
		if name, rest, ok := boldName(l); ok {
			out = append(out, candidate{name: name, rest: rest})
			current = &out[len(out)-1]
			continue
		}
		if current != nil {
			current.lines = append(current.lines, l)
		}
	}
	return out
}

// listCandidates returns the top-level list items of lines. Items labelled
// with a known field are folded into the preceding item.
func listCandidates(lines []string) []candidate {
	minIndent := -1
	for _, l := range lines {
		if m := listItem.FindStringSubmatch(l); m != nil {
			if n := indentWidth(m[1]); minIndent < 0 || n < minIndent {
				minIndent = n
			}
		}
	}
	if minIndent < 0 {
		return nil
	}

	var (
		out     []candidate
		current *candidate
	)
	for _, l := range lines {
		m := listItem.FindStringSubmatch(l)
		topLevel := m != nil && indentWidth(m[1]) == minIndent
		if topLevel {
			if f, _ := parseField(l); f == fieldNone {
				name, rest := nameAndRest(m[2])
				out = append(out, candidate{name: name, rest: rest})
				current = &out[len(out)-1]
				continue
			}
		}
		if current != nil {
			current.lines = append(current.lines, l)
		}
	}
	return out
}

// documentCandidates scans the whole document for recommended companies:
// numbered headings, numbered or bold items, capitalized top-level bullets
// and bold-only lines. Lines where excluded reports true are ignored.
func documentCandidates(lines []string, excluded func(int) bool) []candidate {
	var (
		out     []candidate
		current *candidate
		inFence bool
	)
	for i, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") || strings.HasPrefix(strings.TrimSpace(l), "~~~") {
			inFence = !inFence
			continue
		}
		if inFence || excluded(i) {
			current = nil
			continue
		}

		if name, rest, ok := matchCandidate(l); ok {
			out = append(out, candidate{name: name, rest: rest})
			current = &out[len(out)-1]
			continue
		}
		if anyHeading.MatchString(l) {
			current = nil
			continue
		}
		if current != nil {
			current.lines = append(current.lines, l)
		}
	}
	return out
}

// matchCandidate applies the document-wide patterns to one line, in order.
func matchCandidate(line string) (string, string, bool) {
	if f, _ := parseField(line); f != fieldNone {
		return "", "", false
	}

	var name, rest string
	switch {
	case numberedHeading.MatchString(line):
		name, rest = nameAndRest(numberedHeading.FindStringSubmatch(line)[1])
		if isReportHeading(name) {
			return "", "", false
		}
	case numberedBold.MatchString(line):
		name, rest = nameAndRest(numberedBold.FindStringSubmatch(line)[1])
	case boldNumbered.MatchString(line):
		m := boldNumbered.FindStringSubmatch(line)
		name = plainText(strings.TrimSuffix(strings.TrimSpace(m[1]), ":"))
		rest = plainText(trimSeparators(m[2]))
	case numberedCapital.MatchString(line):
		name, rest = nameAndRest(numberedCapital.FindStringSubmatch(line)[1])
	case bulletCapital.MatchString(line):
		name, rest = nameAndRest(bulletCapital.FindStringSubmatch(line)[1])
	case boldLine.MatchString(line):
		var ok bool
		if name, rest, ok = boldName(line); !ok {
			return "", "", false
		}
	default:
		return "", "", false
	}
	return name, rest, true
}

// candidateProspects converts candidates to low confidence prospect records. Names are
// deduplicated case-insensitively and must be at least minName runes long.
func candidateProspects(cands []candidate, companyName string, minName int) []types.Prospect {
	seen := make(map[string]bool)
	var out []types.Prospect
	for _, c := range cands {
		key := strings.ToLower(c.name)
		if len([]rune(c.name)) < minName || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c.prospect(len(out), companyName))
	}
	return out
}

func (c candidate) prospect(index int, companyName string) types.Prospect {
	p := types.Prospect{
		ID:               prospectID(index),
		Name:             c.name,
		Country:          DefaultLocation,
		TargetSegment:    DefaultFallbackSegment,
		KeyContacts:      []types.KeyContact{},
		OpportunityScore: DefaultOpportunityScore,
		Status:           StatusResearch,
		Confidence:       types.ConfidenceLow,
	}

	for _, l := range c.lines {
		f, value := parseField(l)
		switch f {
		case fieldWebsite:
			if p.Website == "" {
				p.Website = websiteFrom(value)
			}
		case fieldReason:
			if p.ReasonForRecommendation == "" {
				p.ReasonForRecommendation = plainText(value)
			}
		case fieldCountry:
			if v := plainText(value); v != "" && p.Country == DefaultLocation {
				p.Country = v
				p.Region = regionOf(v)
			}
		case fieldSegment:
			if v := plainText(value); v != "" {
				p.TargetSegment = v
			}
		case fieldContacts:
			p.KeyContacts = append(p.KeyContacts, parseKeyContacts(value)...)
		}
	}

	if p.Website == "" {
		p.Website = firstURL(c.rest + "\n" + strings.Join(c.lines, "\n"))
	}
	if p.ReasonForRecommendation == "" {
		p.ReasonForRecommendation = c.rest
	}
	if p.ReasonForRecommendation == "" {
		p.ReasonForRecommendation = defaultReason(companyName)
	}
	return p
}

// firstURL returns the first link target or http(s) URL in s.
func firstURL(s string) string {
	if m := markdownLink.FindStringSubmatch(s); m != nil {
		return m[2]
	}
	if m := autoLink.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.TrimRight(bareURL.FindString(s), ".,;")
}

func defaultReason(companyName string) string {
	if companyName == "" {
		companyName = "the source company"
	}
	return "Potential buyer for " + companyName + "'s products"
}

func indentWidth(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}
