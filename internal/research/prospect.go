// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/pharmasage/internal/markdown"
	"github.com/pdiddy/pharmasage/pkg/types"
)

// Column names of the recommended targets table. Lookup is case-sensitive.
const (
	ColumnCompanyName   = "Company Name"
	ColumnWebsite       = "Website"
	ColumnCountryRegion = "Country/Region"
	ColumnTargetSegment = "Target Segment"
	ColumnKeyContacts   = "Key Contacts"
	ColumnReason        = "Reason for Recommendation"
)

// Defaults applied to research prospects.
const (
	DefaultCompanyName      = "Unknown Company"
	DefaultLocation         = "Unknown Location"
	DefaultSegment          = "Unknown Segment"
	DefaultFallbackSegment  = "Pharmaceutical"
	DefaultOpportunityScore = 75
	StatusResearch          = "Research"
)

var (
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\(\s*<?([^)\s>]+)>?[^)]*\)`)
	autoLink     = regexp.MustCompile(`<((?:https?://|www\.)[^>\s]+)>`)
	bareURL      = regexp.MustCompile(`https?://[^\s)\]>|"'` + "`" + `]+`)
	bareDomain   = regexp.MustCompile(`(?i)\b(?:www\.)?[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)*\.[a-z]{2,}(?:/[^\s)\]>|]*)?`)
	emphasis     = regexp.MustCompile(`\*\*|__|\*|` + "`")
)

// BuildProspect converts one row of the recommended targets table into a
// prospect. index is the zero-based row position and determines the id.
func BuildProspect(row markdown.Row, index int) types.Prospect {
	country := cell(row, ColumnCountryRegion, DefaultLocation)

	return types.Prospect{
		ID:                      prospectID(index),
		Name:                    cell(row, ColumnCompanyName, DefaultCompanyName),
		Country:                 country,
		Region:                  regionOf(country),
		TargetSegment:           cell(row, ColumnTargetSegment, DefaultSegment),
		Website:                 websiteFrom(rawCell(row, ColumnWebsite)),
		KeyContacts:             parseKeyContacts(rawCell(row, ColumnKeyContacts)),
		ReasonForRecommendation: plainText(rawCell(row, ColumnReason)),
		OpportunityScore:        DefaultOpportunityScore,
		Status:                  StatusResearch,
		Confidence:              types.ConfidenceHigh,
	}
}

func prospectID(index int) string {
	return "research-" + strconv.Itoa(index+1)
}

func rawCell(row markdown.Row, column string) string {
	v, _ := row.Get(column)
	return v
}

// cell returns the plain text of column, or def when it is missing or blank.
func cell(row markdown.Row, column, def string) string {
	v := plainText(rawCell(row, column))
	if v == "" {
		return def
	}
	return v
}

// regionOf returns the second "/"-separated part of a "Country/Region" value.
func regionOf(countryRegion string) string {
	parts := strings.Split(countryRegion, "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// parseKeyContacts splits "Jane Doe, CTO; John Roe" into contacts. The result
// is never nil.
func parseKeyContacts(s string) []types.KeyContact {
	contacts := []types.KeyContact{}
	for _, frag := range strings.Split(s, ";") {
		frag = plainText(frag)
		if frag == "" {
			continue
		}
		name, role, _ := strings.Cut(frag, ",")
		contacts = append(contacts, types.KeyContact{
			Name: strings.TrimSpace(name),
			Role: strings.TrimSpace(role),
		})
	}
	return contacts
}

// websiteFrom picks a URL out of a cell: a markdown link target, an autolink,
// the first http(s) URL, or a bare domain. It returns "" when none is found.
func websiteFrom(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if m := markdownLink.FindStringSubmatch(s); m != nil {
		return m[2]
	}
	if m := autoLink.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	if u := bareURL.FindString(s); u != "" {
		return strings.TrimRight(u, ".,;")
	}
	if d := bareDomain.FindString(s); d != "" {
		return strings.TrimRight(d, ".,;")
	}
	return ""
}

// plainText unwraps markdown links to their text, drops emphasis markers and
// collapses whitespace.
func plainText(s string) string {
	s = markdownLink.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}
