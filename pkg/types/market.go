// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Indicator is one headline figure of the market dashboard.
type Indicator struct {
	Value    float64 `json:"value" yaml:"value"`
	Unit     string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Currency string  `json:"currency,omitempty" yaml:"currency,omitempty"`
	Change   float64 `json:"change" yaml:"change"`

	// Trend is "up" or "down".
	Trend string `json:"trend" yaml:"trend"`
}

// RegionalVolume is the trade volume of one region, in billions of USD.
type RegionalVolume struct {
	Name   string  `json:"name" yaml:"name"`
	Volume float64 `json:"volume" yaml:"volume"`
	Growth float64 `json:"growth" yaml:"growth"`
	Color  string  `json:"color" yaml:"color"`
}

// MonthlyTrend is one point of the trade volume index.
type MonthlyTrend struct {
	Month string  `json:"month" yaml:"month"`
	Value float64 `json:"value" yaml:"value"`
	Color string  `json:"color" yaml:"color"`
}

// MarketTrends is the market dashboard payload.
type MarketTrends struct {
	GlobalTradeVolume Indicator        `json:"global_trade_volume" yaml:"global_trade_volume"`
	ActiveProducts    Indicator        `json:"active_products" yaml:"active_products"`
	ExportCompanies   Indicator        `json:"export_companies" yaml:"export_companies"`
	ActiveMarkets     Indicator        `json:"active_markets" yaml:"active_markets"`
	RegionalBreakdown []RegionalVolume `json:"regional_breakdown" yaml:"regional_breakdown"`
	MonthlyTrends     []MonthlyTrend   `json:"monthly_trends" yaml:"monthly_trends"`
}

// Exporter is a ranked pharmaceutical exporter.
type Exporter struct {
	Rank        int      `json:"rank" yaml:"rank"`
	Company     string   `json:"company" yaml:"company"`
	Country     string   `json:"country" yaml:"country"`
	Region      string   `json:"region" yaml:"region"`
	Volume      string   `json:"volume" yaml:"volume"`
	MarketShare float64  `json:"marketShare" yaml:"market_share"`
	Growth      string   `json:"growth" yaml:"growth"`
	Products    []string `json:"products" yaml:"products"`
}

// ProductSales is a ranked product by traded volume.
type ProductSales struct {
	Rank     int    `json:"rank" yaml:"rank"`
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category" yaml:"category"`
	Volume   string `json:"volume" yaml:"volume"`
	Growth   string `json:"growth" yaml:"growth"`
}

// Event is a recorded usage event. Query carries the search text of search
// events.
type Event struct {
	Type      string         `json:"event_type"`
	Data      map[string]any `json:"event_data"`
	Query     string         `json:"query,omitempty"`
	CreatedAt string         `json:"created_at,omitempty"`
}

// PopularSearch is a search query and how often it was run.
type PopularSearch struct {
	Query      string `json:"query"`
	Count      int    `json:"count"`
	LastSearch string `json:"last_search"`
}

// UsageMetric is an event count over a trailing time period.
type UsageMetric struct {
	MetricType string `json:"metric_type"`
	TimePeriod string `json:"time_period"`
	Value      int    `json:"value"`
	Timestamp  string `json:"timestamp"`
}

// DecisionMaker is a person to address in outreach.
type DecisionMaker struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Influence string `json:"influence"`
	Interests string `json:"interests"`
}

// OutreachStrategy is the recommended way to approach a prospect.
type OutreachStrategy struct {
	RecommendedApproach string   `json:"recommendedApproach"`
	KeyDifferentiators  []string `json:"keyDifferentiators"`
	NextSteps           []string `json:"nextSteps"`
}

// Guidance is generated outreach advice for one prospect.
type Guidance struct {
	TalkingPoints    []string         `json:"talkingPoints"`
	DecisionMakers   []DecisionMaker  `json:"decisionMakers"`
	OutreachStrategy OutreachStrategy `json:"outreachStrategy"`
}
