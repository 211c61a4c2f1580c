package models

// StatsOverview carries the headline counters of the admin stats payload.
type StatsOverview struct {
	Total                 int     `json:"total"`
	Pending               int     `json:"pending"`
	Contacted             int     `json:"contacted"`
	Resolved              int     `json:"resolved"`
	Recent                int     `json:"recent"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
}

// TypeCount aggregates inquiries per inquiry type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// ProgramCount aggregates inquiries per interested program.
type ProgramCount struct {
	Program string `json:"program"`
	Count   int    `json:"count"`
}

// TrendPoint is one day of the 30-day daily trend.
type TrendPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Stats is the server-aggregated admin analytics payload. It is read-only
// from this layer's perspective and re-fetched after every mutation.
type Stats struct {
	Overview   StatsOverview  `json:"overview"`
	ByType     []TypeCount    `json:"byType"`
	ByProgram  []ProgramCount `json:"byProgram"`
	DailyTrend []TrendPoint   `json:"dailyTrend"`
}

// PublicStats is the unauthenticated subset shown on the home page.
type PublicStats struct {
	TotalInquiries    int     `json:"totalInquiries"`
	ResolvedInquiries int     `json:"resolvedInquiries"`
	Satisfaction      float64 `json:"satisfaction"`
}
