// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// prospectPromptTmpl asks the model for a markdown report whose section
// titles and table columns match what Compose looks for.
var prospectPromptTmpl = template.Must(template.New("prospects").Parse(`You are an expert B2B market researcher. Analyze the pharmaceutical or life sciences company at {{.CompanyWebsite}}{{if .CompanyName}} ({{.CompanyName}}){{end}}{{if .Products}}, focusing on these products: {{range $i, $p := .Products}}{{if $i}}, {{end}}{{$p}}{{end}},{{end}} and produce a list of real, potential customer companies for its products and services. Follow these steps strictly:

1. Understand the Source Company
- Visit and analyze the source company website.
- Summarize what the company does: its business model (B2B APIs, intermediates, finished dosage formulations, contract manufacturing), its main therapeutic focus areas, its manufacturing and regulatory capabilities, and its differentiators.

2. Identify Product Portfolio
- List key products, services, or technology platforms.
- Specify whether the company offers APIs, finished formulations, CDMO/CMO services, or other value chain offerings.

3. Define the Ideal Target Customer Profile
- Characterize the ideal B2B customer (small-to-midsize formulation manufacturers, regional distributors, specialty pharma, biotech startups, regional CDMOs).
- State which customer needs align with the source company's strengths.

4. Search for Real Target Companies
- Compile real and verifiable companies, excluding the top 50 global pharma companies.
- For each company give its full legal name, official website URL, main business activities, and key decision-makers with names and roles when available.

5. Evidence-Backed Rationales
- For every target give a concise reason for fit referencing the source company's products and the target's verified needs.

6. Output Instructions
Present findings as a Markdown report with exactly these headings:
# Source Company Overview
# Product Portfolio Summary
# Therapeutic Coverage
# Ideal Customer Profile
# Recommended Target Companies Table

The last section must be a single Markdown table with the columns:
| Company Name | Website | Country/Region | Target Segment | Key Contacts | Reason for Recommendation |

Write Country/Region as "Country/Region", for example "Germany/Europe". Write Key Contacts as "Name, Role" pairs separated by semicolons.
Do NOT list any company whose existence and suitability you cannot verify.
`))

// promptData is the template input.
type promptData struct {
	CompanyName    string
	CompanyWebsite string
	Products       []string
}

// RenderProspectPrompt builds the prospect identification prompt for a
// company website, optionally narrowed to some of its products.
func RenderProspectPrompt(companyName, companyWebsite string, products ...string) (string, error) {
	var named []string
	for _, p := range products {
		if p = strings.TrimSpace(p); p != "" {
			named = append(named, p)
		}
	}
	data := promptData{CompanyName: companyName, CompanyWebsite: companyWebsite, Products: named}

	var buf bytes.Buffer
	if err := prospectPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
