// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"strconv"
	"strings"

	"github.com/pdiddy/pharmasage/pkg/types"
)

// Sheet is one tabular block of an export: a worksheet in XLSX, a block of
// records in CSV.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Dataset is the unit of export. Sheets feed CSV and XLSX; Records is
// marshalled as-is for JSON.
type Dataset struct {
	// Kind appears in the file name, e.g. "prospects".
	Kind    string
	Sheets  []Sheet
	Records any
}

// Prospects exports prospects, one row each. With withContacts set the key
// contacts are listed in a second sheet.
func Prospects(prospects []types.Prospect, withContacts bool) Dataset {
	sheet := Sheet{
		Name: "Prospects",
		Header: []string{
			"ID", "Company Name", "Website", "Country", "Region", "Target Segment",
			"Opportunity Score", "Status", "Revenue", "Employees", "Purchasing Volume",
			"Key Products", "Reason for Recommendation",
		},
	}
	for _, p := range prospects {
		sheet.Rows = append(sheet.Rows, []string{
			p.ID, p.Name, p.Website, p.Country, p.Region, p.TargetSegment,
			strconv.Itoa(p.OpportunityScore), p.Status, p.Revenue, p.Employees, p.PurchasingVolume,
			strings.Join(p.KeyProducts, "; "), p.ReasonForRecommendation,
		})
	}

	d := Dataset{Kind: "prospects", Sheets: []Sheet{sheet}, Records: prospects}
	if withContacts {
		d.Sheets = append(d.Sheets, keyContactSheet(prospects))
	}
	return d
}

func keyContactSheet(prospects []types.Prospect) Sheet {
	sheet := Sheet{Name: "Key Contacts", Header: []string{"Prospect ID", "Company Name", "Name", "Role"}}
	for _, p := range prospects {
		for _, c := range p.KeyContacts {
			sheet.Rows = append(sheet.Rows, []string{p.ID, p.Name, c.Name, c.Role})
		}
	}
	return sheet
}

// Products exports catalog products.
func Products(products []types.Product) Dataset {
	sheet := Sheet{
		Name:   "Products",
		Header: []string{"ID", "API Name", "Code", "Form", "Therapeutic Category", "Synonyms"},
	}
	for _, p := range products {
		sheet.Rows = append(sheet.Rows, []string{
			p.ID, p.APIName, p.Code, p.Form, p.TherapeuticCategory, strings.Join(p.Synonyms, "; "),
		})
	}
	return Dataset{Kind: "products", Sheets: []Sheet{sheet}, Records: products}
}

// Companies exports catalog companies.
func Companies(companies []types.Company) Dataset {
	sheet := Sheet{Name: "Companies", Header: []string{"ID", "Name", "Country", "Sector", "Size"}}
	for _, c := range companies {
		sheet.Rows = append(sheet.Rows, []string{c.ID, c.Name, c.Country, c.Sector, c.Size})
	}
	return Dataset{Kind: "companies", Sheets: []Sheet{sheet}, Records: companies}
}

// Contacts exports contacts.
func Contacts(contacts []types.Contact) Dataset {
	sheet := Sheet{
		Name: "Contacts",
		Header: []string{
			"ID", "Prospect ID", "Company", "Name", "Role", "Email", "Phone",
			"LinkedIn", "Department", "Seniority", "Source",
		},
	}
	for _, c := range contacts {
		sheet.Rows = append(sheet.Rows, []string{
			c.ID, c.ProspectID, c.Company, c.Name, c.Role, c.Email, c.Phone,
			c.LinkedInURL, c.Department, c.Seniority, c.Source,
		})
	}
	return Dataset{Kind: "contacts", Sheets: []Sheet{sheet}, Records: contacts}
}

// ResearchRun exports a stored research run: a field/value sheet for the
// source company followed by the discovered buyers and their contacts.
func ResearchRun(run types.ResearchRun) Dataset {
	r := run.Result
	source := Sheet{
		Name:   "Source Company",
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Run ID", run.ID},
			{"Created At", run.CreatedAt},
			{"Name", r.SourceCompany.Name},
			{"Website", r.SourceCompany.URL},
			{"Overview", r.SourceCompany.Overview},
			{"Business Model", r.SourceCompany.BusinessModel},
			{"Therapeutic Coverage", r.SourceCompany.TherapeuticCoverage},
			{"Ideal Customer Profile", r.IdealCustomerProfile},
			{"Extraction Strategy", string(r.ExtractionStrategy)},
		},
	}

	buyers := Prospects(r.DiscoveredBuyers, true)
	buyers.Sheets[0].Name = "Discovered Buyers"

	return Dataset{
		Kind:    "research",
		Sheets:  append([]Sheet{source}, buyers.Sheets...),
		Records: run,
	}
}

// MarketTrends exports the market dashboard: the headline indicators, the
// regional breakdown and the monthly trend index.
func MarketTrends(t types.MarketTrends) Dataset {
	indicators := Sheet{Name: "Indicators", Header: []string{"Indicator", "Value", "Unit", "Currency", "Change", "Trend"}}
	for _, ind := range []struct {
		name string
		v    types.Indicator
	}{
		{"Global Trade Volume", t.GlobalTradeVolume},
		{"Active Products", t.ActiveProducts},
		{"Export Companies", t.ExportCompanies},
		{"Active Markets", t.ActiveMarkets},
	} {
		indicators.Rows = append(indicators.Rows, []string{
			ind.name, formatFloat(ind.v.Value), ind.v.Unit, ind.v.Currency, formatFloat(ind.v.Change), ind.v.Trend,
		})
	}

	regions := Sheet{Name: "Regions", Header: []string{"Region", "Volume", "Growth"}}
	for _, r := range t.RegionalBreakdown {
		regions.Rows = append(regions.Rows, []string{r.Name, formatFloat(r.Volume), formatFloat(r.Growth)})
	}

	months := Sheet{Name: "Monthly Trends", Header: []string{"Month", "Value"}}
	for _, m := range t.MonthlyTrends {
		months.Rows = append(months.Rows, []string{m.Month, formatFloat(m.Value)})
	}

	return Dataset{Kind: "trends", Sheets: []Sheet{indicators, regions, months}, Records: t}
}

// Exporters exports the top exporter ranking.
func Exporters(exporters []types.Exporter) Dataset {
	sheet := Sheet{
		Name:   "Top Exporters",
		Header: []string{"Rank", "Company", "Country", "Region", "Volume", "Market Share", "Growth", "Products"},
	}
	for _, e := range exporters {
		sheet.Rows = append(sheet.Rows, []string{
			strconv.Itoa(e.Rank), e.Company, e.Country, e.Region, e.Volume,
			formatFloat(e.MarketShare), e.Growth, strings.Join(e.Products, "; "),
		})
	}
	return Dataset{Kind: "exporters", Sheets: []Sheet{sheet}, Records: exporters}
}

// TopProducts exports the top product ranking.
func TopProducts(products []types.ProductSales) Dataset {
	sheet := Sheet{Name: "Top Products", Header: []string{"Rank", "Product", "Category", "Volume", "Growth"}}
	for _, p := range products {
		sheet.Rows = append(sheet.Rows, []string{strconv.Itoa(p.Rank), p.Name, p.Category, p.Volume, p.Growth})
	}
	return Dataset{Kind: "top-products", Sheets: []Sheet{sheet}, Records: products}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
