// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Product is a pharmaceutical product (typically an API) in the catalog.
type Product struct {
	ID                  string   `json:"id" yaml:"id"`
	APIName             string   `json:"api_name" yaml:"api_name"`
	Synonyms            []string `json:"synonyms" yaml:"synonyms"`
	Code                string   `json:"code" yaml:"code"`
	Form                string   `json:"form" yaml:"form"`
	TherapeuticCategory string   `json:"therapeutic_category" yaml:"therapeutic_category"`
}

// Company is a pharmaceutical company in the catalog.
type Company struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Country string `json:"country" yaml:"country"`
	Sector  string `json:"sector" yaml:"sector"`
	Size    string `json:"size" yaml:"size"`
}

// Contact is a person at a prospect company.
type Contact struct {
	ID          string `json:"id" yaml:"id"`
	ProspectID  string `json:"prospectId" yaml:"prospect_id"`
	Company     string `json:"company" yaml:"company"`
	Name        string `json:"name" yaml:"name"`
	Role        string `json:"role" yaml:"role"`
	Email       string `json:"email,omitempty" yaml:"email,omitempty"`
	Phone       string `json:"phone,omitempty" yaml:"phone,omitempty"`
	LinkedInURL string `json:"linkedinUrl,omitempty" yaml:"linkedin_url,omitempty"`
	Department  string `json:"department,omitempty" yaml:"department,omitempty"`
	Seniority   string `json:"seniority,omitempty" yaml:"seniority,omitempty"`
	Notes       string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Source      string `json:"source" yaml:"source"`
}

// ContactStats aggregates the contact table.
type ContactStats struct {
	Total        int            `json:"total"`
	ByDepartment map[string]int `json:"byDepartment"`
	BySeniority  map[string]int `json:"bySeniority"`
	BySource     map[string]int `json:"bySource"`
}

// DashboardSummary is the landing-page overview.
type DashboardSummary struct {
	Products     int        `json:"products"`
	Companies    int        `json:"companies"`
	Prospects    int        `json:"prospects"`
	Contacts     int        `json:"contacts"`
	ResearchRuns int        `json:"researchRuns"`
	TopProspects []Prospect `json:"topProspects"`
}
