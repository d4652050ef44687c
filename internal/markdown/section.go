// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package markdown pulls titled sections and pipe tables out of loosely
// structured Markdown such as LLM research reports. Nothing in this package
// returns an error: missing structure is reported as absence.
package markdown

import (
	"regexp"
	"strings"
)

// Section is a titled block of a Markdown document. Body holds everything
// between the heading and the next recognized heading, trimmed.
type Section struct {
	Title string
	Body  string

	// StartLine is the zero-based line of the heading; EndLine is the first
	// line after the body (exclusive).
	StartLine int
	EndLine   int

	// Bold is set when the heading is a line made only of bold text.
	Bold bool
}

var (
	// atxHeading matches "#"-prefixed headings; a space after the hashes is optional.
	atxHeading = regexp.MustCompile(`^\s{0,3}#{1,6}\s*(.*)$`)

	// atxClosing matches an optional closing sequence of hashes.
	atxClosing = regexp.MustCompile(`\s+#+\s*$`)

	// boldHeading matches a line made only of bold text, e.g. "**Overview**" or "**Overview:**".
	boldHeading = regexp.MustCompile(`^\s*(?:\*\*([^*]+)\*\*|__([^_]+)__)\s*:?\s*$`)

	// underline matches a line of three or more dashes.
	underline = regexp.MustCompile(`^\s*-{3,}\s*$`)

	// thematicBreak matches horizontal rules that may trail a section body.
	thematicBreak = regexp.MustCompile(`^\s*(?:-{3,}|\*{3,}|_{3,})\s*$`)

	// leadingEnumeration matches "1. " or "2) " in front of a heading title.
	leadingEnumeration = regexp.MustCompile(`^\d+[.)]\s+`)

	whitespaceRun = regexp.MustCompile(`\s+`)
)

// heading is a recognized heading line and where its body begins.
type heading struct {
	line      int
	title     string
	bodyStart int
	bold      bool
}

// ParseSections returns every section of doc in document order.
//
// Three heading syntaxes are recognized. When a line could be read more than
// one way the first applicable rule wins: a "#" heading, then a line
// underlined with three or more dashes, then a bold-only line. A line is only
// read as underlined when it opens the document or follows a blank line, so a
// rule after a paragraph stays part of the body. Lines inside fenced code
// blocks are never headings.
func ParseSections(doc string) []Section {
	_, _, sections := parse(doc)
	return sections
}

func parse(doc string) ([]string, []heading, []Section) {
	lines := splitLines(doc)
	headings := findHeadings(lines)

	sections := make([]Section, 0, len(headings))
	for i, h := range headings {
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].line
		}
		sections = append(sections, Section{
			Title:     h.title,
			Body:      bodyBetween(lines, h.bodyStart, end),
			StartLine: h.line,
			EndLine:   end,
			Bold:      h.bold,
		})
	}
	return lines, headings, sections
}

func bodyBetween(lines []string, start, end int) string {
	if start >= end {
		return ""
	}
	return trimBody(lines[start:end])
}

// ExtractSection returns the body of the section titled title, compared
// case-insensitively after normalization. The boolean is false when no such
// heading exists. When the title occurs more than once the last occurrence
// wins, matching Index.Lookup.
func ExtractSection(doc, title string) (string, bool) {
	return NewIndex(doc).Lookup(title)
}

// Index is a title-keyed view of a document's sections. Later sections with
// the same normalized title replace earlier ones.
type Index struct {
	lines    []string
	headings []heading
	sections []Section
	byTitle  map[string]int
}

// NewIndex parses doc and indexes its sections by normalized title.
func NewIndex(doc string) *Index {
	lines, headings, sections := parse(doc)
	idx := &Index{
		lines:    lines,
		headings: headings,
		sections: sections,
		byTitle:  make(map[string]int, len(sections)),
	}
	for i, s := range sections {
		key := titleKey(s.Title)
		if key == "" {
			continue
		}
		idx.byTitle[key] = i
	}
	return idx
}

// Sections returns all sections in document order.
func (idx *Index) Sections() []Section {
	return idx.sections
}

// Lookup returns the body of the section titled title.
func (idx *Index) Lookup(title string) (string, bool) {
	s, ok := idx.Section(title)
	if !ok {
		return "", false
	}
	return s.Body, true
}

// Section returns the section titled title.
func (idx *Index) Section(title string) (Section, bool) {
	i, ok := idx.byTitle[titleKey(title)]
	if !ok {
		return Section{}, false
	}
	return idx.sections[i], true
}

// First returns the body of the first title in titles that names a section
// with a non-empty body.
func (idx *Index) First(titles ...string) (string, bool) {
	for _, t := range titles {
		if body, ok := idx.Lookup(t); ok && body != "" {
			return body, true
		}
	}
	return "", false
}

// Block returns the section titled title merged with the sections that
// directly follow it for as long as within reports true for them. The merged
// body runs from the heading to the first section within rejects.
func (idx *Index) Block(title string, within func(Section) bool) (Section, bool) {
	i, ok := idx.byTitle[titleKey(title)]
	if !ok {
		return Section{}, false
	}
	return idx.block(i, within), true
}

// FirstBlock is First for blocks: it returns the body of the first title in
// titles whose block has a non-empty body.
func (idx *Index) FirstBlock(within func(Section) bool, titles ...string) (string, bool) {
	for _, t := range titles {
		if s, ok := idx.Block(t, within); ok && s.Body != "" {
			return s.Body, true
		}
	}
	return "", false
}

// Blocks returns every section in document order with its trailing
// sub-sections merged in, as Block does.
func (idx *Index) Blocks(within func(Section) bool) []Section {
	var out []Section
	for i := 0; i < len(idx.sections); {
		b := idx.block(i, within)
		out = append(out, b)
		i++
		for i < len(idx.sections) && idx.sections[i].StartLine < b.EndLine {
			i++
		}
	}
	return out
}

func (idx *Index) block(i int, within func(Section) bool) Section {
	s := idx.sections[i]
	j := i + 1
	for j < len(idx.sections) && within(idx.sections[j]) {
		j++
	}
	if j == i+1 {
		return s
	}
	s.EndLine = len(idx.lines)
	if j < len(idx.sections) {
		s.EndLine = idx.sections[j].StartLine
	}
	s.Body = bodyBetween(idx.lines, idx.headings[i].bodyStart, s.EndLine)
	return s
}

func findHeadings(lines []string) []heading {
	var headings []heading
	inFence := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if isFence(line) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		if m := atxHeading.FindStringSubmatch(line); m != nil {
			title := atxClosing.ReplaceAllString(m[1], "")
			headings = append(headings, heading{line: i, title: normalizeTitle(title), bodyStart: i + 1})
			continue
		}

		if i+1 < len(lines) && underline.MatchString(lines[i+1]) &&
			strings.TrimSpace(line) != "" && !thematicBreak.MatchString(line) &&
			(i == 0 || strings.TrimSpace(lines[i-1]) == "") {
			headings = append(headings, heading{line: i, title: normalizeTitle(line), bodyStart: i + 2})
			i++
			continue
		}

		if m := boldHeading.FindStringSubmatch(line); m != nil {
			title := m[1]
			if title == "" {
				title = m[2]
			}
			headings = append(headings, heading{line: i, title: normalizeTitle(title), bodyStart: i + 1, bold: true})
		}
	}

	return headings
}

// normalizeTitle strips decoration from heading text: surrounding emphasis,
// a trailing colon, a leading enumeration, and repeated whitespace.
func normalizeTitle(s string) string {
	s = strings.TrimSpace(s)
	for {
		trimmed := strings.TrimSpace(strings.TrimSuffix(s, ":"))
		switch {
		case len(trimmed) > 4 && strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**"):
			trimmed = trimmed[2 : len(trimmed)-2]
		case len(trimmed) > 4 && strings.HasPrefix(trimmed, "__") && strings.HasSuffix(trimmed, "__"):
			trimmed = trimmed[2 : len(trimmed)-2]
		}
		trimmed = strings.TrimSpace(trimmed)
		if trimmed == s {
			break
		}
		s = trimmed
	}
	s = leadingEnumeration.ReplaceAllString(s, "")
	return whitespaceRun.ReplaceAllString(s, " ")
}

func titleKey(title string) string {
	return strings.ToLower(normalizeTitle(title))
}

// trimBody joins lines, drops horizontal rules at either end, and trims.
func trimBody(lines []string) string {
	blank := func(l string) bool {
		return strings.TrimSpace(l) == "" || thematicBreak.MatchString(l)
	}
	start, end := 0, len(lines)
	for start < end && blank(lines[start]) {
		start++
	}
	for end > start && blank(lines[end-1]) {
		end--
	}
	return strings.TrimSpace(strings.Join(lines[start:end], "\n"))
}

func isFence(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "```") || strings.HasPrefix(t, "~~~")
}

func splitLines(doc string) []string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	return strings.Split(doc, "\n")
}
