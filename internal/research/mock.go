// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package research

import (
	"context"
	"regexp"
	"strings"
)

// mockReport is the canned report returned by MockBackend. %COMPANY% is
// replaced with a name derived from the prompt's URL.
const mockReport = `
# Source Company Overview
%COMPANY% is a pharmaceutical company specializing in generic medications and APIs. They focus on cardiovascular, oncology, and central nervous system therapeutics.

# Product Portfolio Summary
- Generic APIs for cardiovascular treatments
- Oncology formulations
- CNS therapeutics
- Contract manufacturing services

# Ideal Customer Profile
Small to mid-size pharmaceutical manufacturers looking for reliable API suppliers, particularly those focused on cardiovascular and oncology products. Regional distributors in emerging markets are also ideal targets.

# Recommended Target Companies Table
| Company Name | Website | Country/Region | Target Segment | Key Contacts | Reason for Recommendation |
| ------------ | ------- | -------------- | ------------- | ------------ | ------------------------- |
| Pharma Solutions Inc. | https://pharmasolutions.example.com | USA/North America | Generic Manufacturer | John Smith, Procurement Director | Needs reliable API suppliers for cardiovascular products |
| MediCorp | https://medicorp.example.com | Germany/Europe | Distributor | Maria Schmidt, CEO | Expanding distribution network in Europe for oncology products |
| BioTech Innovations | https://biotechinnovations.example.com | India/Asia Pacific | Formulation Developer | Raj Patel, Head of R&D | Developing new formulations requiring high-quality APIs |
| HealthCare Partners | https://healthcarepartners.example.com | Brazil/Latin America | Regional Distributor | Carlos Santos, Business Development | Looking to expand product portfolio in Latin America |
`

// mockGuidance is MockBackend's answer to guidance prompts.
const mockGuidance = `{
  "talkingPoints": [
    "MedCore's expansion into cardiovascular treatments aligns with our API portfolio",
    "Recent EU regulatory changes have created supply chain challenges they're looking to solve",
    "Their purchasing volume increased 12% last year, indicating growth in production capacity",
    "They're actively seeking reliable suppliers with strong quality control processes"
  ],
  "decisionMakers": [
    {
      "name": "Dr. Sarah Chen",
      "title": "Chief Procurement Officer",
      "influence": "Primary decision maker for API sourcing",
      "interests": "Supply chain resilience, quality consistency, competitive pricing"
    },
    {
      "name": "Thomas Weber",
      "title": "Head of R&D",
      "influence": "Technical evaluator for new suppliers",
      "interests": "API purity profiles, stability data, manufacturing processes"
    }
  ],
  "outreachStrategy": {
    "recommendedApproach": "Technical value proposition focused on quality and supply reliability",
    "keyDifferentiators": [
      "Our EU-GMP certified manufacturing facilities",
      "Consistent 99.8% purity profile exceeding industry standards",
      "Guaranteed supply chain redundancy with multiple production sites"
    ],
    "nextSteps": [
      "Send technical documentation package to Dr. Chen",
      "Request technical evaluation meeting with R&D team",
      "Offer facility virtual tour to demonstrate quality processes"
    ]
  }
}`

var promptURL = regexp.MustCompile(`https?://[^\s>"<]+`)

// MockBackend returns a fixed, well-formed report without network access.
// It is used for demos and tests when research.use_mock is set.
type MockBackend struct{}

// Name implements Backend.
func (MockBackend) Name() string { return "mock" }

// Configured implements Backend.
func (MockBackend) Configured() bool { return true }

// Research implements Backend. Guidance prompts get a canned JSON answer.
func (MockBackend) Research(ctx context.Context, prompt string, _ int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.HasPrefix(prompt, guidanceTask) {
		return "```json\n" + mockGuidance + "\n```", nil
	}
	name := NameFromWebsite(promptURL.FindString(prompt))
	if name == "" {
		name = "Example"
	}
	return strings.ReplaceAll(mockReport, "%COMPANY%", name), nil
}

// NameFromWebsite guesses a company name from its website:
// "https://www.acme-pharma.com/x" becomes "Acme-pharma". It returns "" when
// website has no host.
func NameFromWebsite(website string) string {
	host := strings.TrimSpace(website)
	if i := strings.Index(host, "//"); i >= 0 {
		host = host[i+2:]
	}
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	name, _, _ := strings.Cut(host, "/")
	name, _, _ = strings.Cut(name, ".")
	if name == "" {
		return ""
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
