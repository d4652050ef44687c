// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the pharmasage backend:
// research results, catalog records, and configuration.
package types

// Confidence marks how much a prospect record can be trusted. Records built
// from a well-formed table carry ConfidenceHigh; records scraped from prose
// carry ConfidenceLow.
type Confidence string

const (
	ConfidenceHigh Confidence = "high"
	ConfidenceLow  Confidence = "low"
)

// ExtractionStrategy names the strategy that produced a result's buyer list.
type ExtractionStrategy string

const (
	StrategyTable             ExtractionStrategy = "table"
	StrategySectionList       ExtractionStrategy = "section-list"
	StrategyDocumentHeuristic ExtractionStrategy = "document-heuristic"
	StrategyNone              ExtractionStrategy = "none"
)

// KeyContact is a named person at a prospect company. Role may be empty.
type KeyContact struct {
	Name string `json:"name" yaml:"name"`
	Role string `json:"role" yaml:"role"`
}

// Prospect is a candidate buyer company. Research-derived prospects fill
// the core fields only; catalog prospects also carry the commercial profile.
type Prospect struct {
	// ID is "research-<n>" for research records, the catalog key otherwise.
	ID string `json:"id" yaml:"id"`

	Name string `json:"name" yaml:"name"`

	// Country holds the location as written by the source, e.g. "Germany/Europe".
	Country string `json:"country" yaml:"country"`

	// Region is derived from Country on a best-effort basis and may be empty.
	Region string `json:"region" yaml:"region"`

	TargetSegment string `json:"targetSegment" yaml:"target_segment"`

	// Website is the extracted URL, or "" when none was found.
	Website string `json:"website" yaml:"website"`

	KeyContacts []KeyContact `json:"keyContacts" yaml:"key_contacts"`

	ReasonForRecommendation string `json:"reasonForRecommendation" yaml:"reason_for_recommendation"`

	OpportunityScore int `json:"opportunityScore" yaml:"opportunity_score"`

	Status string `json:"status" yaml:"status"`

	Confidence Confidence `json:"confidence,omitempty" yaml:"confidence,omitempty"`

	// Commercial profile, populated for catalog prospects.
	Revenue          string   `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	Employees        string   `json:"employees,omitempty" yaml:"employees,omitempty"`
	PurchasingVolume string   `json:"purchasingVolume,omitempty" yaml:"purchasing_volume,omitempty"`
	LastContact      string   `json:"lastContact,omitempty" yaml:"last_contact,omitempty"`
	KeyProducts      []string `json:"keyProducts,omitempty" yaml:"key_products,omitempty"`
	Description      string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// SourceCompany summarizes the company on whose behalf research was run.
type SourceCompany struct {
	Name                string `json:"name" yaml:"name"`
	URL                 string `json:"url" yaml:"url"`
	Overview            string `json:"overview" yaml:"overview"`
	BusinessModel       string `json:"businessModel" yaml:"business_model"`
	TherapeuticCoverage string `json:"therapeuticCoverage" yaml:"therapeutic_coverage"`
}

// ResearchResult is the structured output of one deep research query.
type ResearchResult struct {
	SourceCompany        SourceCompany      `json:"sourceCompany" yaml:"source_company"`
	IdealCustomerProfile string             `json:"idealCustomerProfile" yaml:"ideal_customer_profile"`
	DiscoveredBuyers     []Prospect         `json:"discoveredBuyers" yaml:"discovered_buyers"`
	ExtractionStrategy   ExtractionStrategy `json:"extractionStrategy" yaml:"extraction_strategy"`
}

// ResearchRun is a persisted research result.
type ResearchRun struct {
	ID             string         `json:"id" yaml:"id"`
	CompanyName    string         `json:"companyName" yaml:"company_name"`
	CompanyWebsite string         `json:"companyWebsite" yaml:"company_website"`
	CreatedAt      string         `json:"createdAt" yaml:"created_at"`
	Result         ResearchResult `json:"result" yaml:"result"`
}
