package models

// Stats are the dashboard header numbers, recomputed from the full record set
// on every request.
type Stats struct {
	Total         int              `json:"total"`
	CategoryCount int              `json:"categoryCount"`
	RecentCount   int              `json:"recentCount"`
	CategoryStats map[Category]int `json:"categoryStats"`
}

// CategoryShare is one row of the category distribution chart.
type CategoryShare struct {
	Name       Category `json:"name"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
}

// TagCount is one entry of the tag frequency cloud.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// DateCount is one bucket of the per-date activity list.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DetailedStats extends Stats with the breakdowns shown in the stats dialog.
type DetailedStats struct {
	Stats
	CategoryDistribution []CategoryShare `json:"categoryDistribution"`
	TagFrequency         []TagCount      `json:"tagFrequency"`
	ActivityByDate       []DateCount     `json:"activityByDate"`
}
