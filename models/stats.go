package models

// SummaryStats is the summary-statistics document, fully regenerated on
// every successful synchronization.
type SummaryStats struct {
	Updated  UpdatedInfo `json:"updated"`
	Draws    DrawTotals  `json:"draws"`
	DrawDate DateRange   `json:"draw_date"`
	Size     FieldSummary `json:"size"`
	Score    FieldSummary `json:"score"`
}

type UpdatedInfo struct {
	Last string `json:"last"`
}

type DrawTotals struct {
	Total int `json:"total"`
}

type DateRange struct {
	Earliest *string `json:"earliest"`
	Latest   *string `json:"latest"`
}

// FieldSummary aggregates one numeric field. Nil means "not available":
// every value was absent, or the mean was exactly zero (coefficient of
// variation), or fewer than two values existed (standard deviation).
type FieldSummary struct {
	Count                  int      `json:"count"`
	Highest                *int     `json:"highest"`
	Average                *float64 `json:"average"`
	Lowest                 *int     `json:"lowest"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
}

// TimeStats is the time-distribution document derived from the raw draw
// timestamps, fully regenerated on every successful synchronization.
type TimeStats struct {
	TotalDrawsWithTimes int             `json:"total_draws_with_times"`
	UnparsedCount       int             `json:"unparsed_count"`
	HourDistribution    [24]int         `json:"hour_distribution"`
	MostCommonHour      *string         `json:"most_common_hour"`
	AverageHour         *float64        `json:"average_hour"`
	DrawTimes           []DrawTime      `json:"draw_times"`
	DrawTimeline        []TimelinePoint `json:"draw_timeline"`
	AnalysisDate        string          `json:"analysis_date"`
}

// DrawTime is one successfully parsed draw timestamp with its provenance.
type DrawTime struct {
	DrawNumber     int    `json:"drawNumber"`
	Hour           int    `json:"hour"`
	Time           string `json:"time"`
	Date           string `json:"date"`
	DatetimeISO    string `json:"datetime_iso"`
	DrawName       string `json:"drawName"`
	OriginalString string `json:"original_string"`
}

// TimelinePoint is one chart-ready entry of the chronological timeline.
// Time is the decimal hour (hour + minute/60) used for plotting.
type TimelinePoint struct {
	Date       string  `json:"date"`
	Datetime   string  `json:"datetime"`
	Time       float64 `json:"time"`
	Hour       int     `json:"hour"`
	Minute     int     `json:"minute"`
	DrawNumber int     `json:"drawNumber"`
	DrawName   string  `json:"drawName"`
	DrawSize   *int    `json:"drawSize"`
	DrawCRS    *int    `json:"drawCRS"`
}
