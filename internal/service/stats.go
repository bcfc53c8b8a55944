package service

import (
	"math"
	"sort"
	"time"

	"naviai-server/internal/models"
)

const (
	recentWindow      = 7 * 24 * time.Hour
	tagFrequencyLimit = 20
	activityLimit     = 10
)

// ComputeStats derives the dashboard header numbers from the full record set.
// A scenario counts as recent when its CreatedAt parses and falls within the
// last seven days of now; malformed timestamps are simply not recent.
func ComputeStats(scenarios []models.Scenario, now time.Time) models.Stats {
	stats := models.Stats{
		Total:         len(scenarios),
		CategoryStats: make(map[models.Category]int),
	}

	cutoff := now.Add(-recentWindow)
	for _, s := range scenarios {
		stats.CategoryStats[s.Category]++
		if createdAt, err := models.ParseDisplayTime(s.CreatedAt); err == nil && createdAt.After(cutoff) {
			stats.RecentCount++
		}
	}
	stats.CategoryCount = len(stats.CategoryStats)
	return stats
}

// ComputeDetailedStats extends the header numbers with the chart breakdowns:
// category shares, the 20 most frequent tags and the 10 most recent activity
// dates.
func ComputeDetailedStats(scenarios []models.Scenario, now time.Time) models.DetailedStats {
	detailed := models.DetailedStats{
		Stats:                ComputeStats(scenarios, now),
		CategoryDistribution: []models.CategoryShare{},
		TagFrequency:         []models.TagCount{},
		ActivityByDate:       []models.DateCount{},
	}

	if detailed.Total > 0 {
		for _, category := range models.Categories {
			count := detailed.CategoryStats[category]
			if count == 0 {
				continue
			}
			detailed.CategoryDistribution = append(detailed.CategoryDistribution, models.CategoryShare{
				Name:       category,
				Count:      count,
				Percentage: math.Round(float64(count)/float64(detailed.Total)*1000) / 10,
			})
		}
	}

	tagCounts := make(map[string]int)
	dateCounts := make(map[string]int)
	for _, s := range scenarios {
		for _, tag := range s.Tags {
			tagCounts[tag]++
		}
		if _, err := models.ParseDisplayTime(s.CreatedAt); err == nil {
			dateCounts[s.CreatedAt[:len("2006-01-02")]]++
		}
	}

	for tag, count := range tagCounts {
		detailed.TagFrequency = append(detailed.TagFrequency, models.TagCount{Tag: tag, Count: count})
	}
	sort.Slice(detailed.TagFrequency, func(i, j int) bool {
		a, b := detailed.TagFrequency[i], detailed.TagFrequency[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Tag < b.Tag
	})
	if len(detailed.TagFrequency) > tagFrequencyLimit {
		detailed.TagFrequency = detailed.TagFrequency[:tagFrequencyLimit]
	}

	for date, count := range dateCounts {
		detailed.ActivityByDate = append(detailed.ActivityByDate, models.DateCount{Date: date, Count: count})
	}
	sort.Slice(detailed.ActivityByDate, func(i, j int) bool {
		return detailed.ActivityByDate[i].Date > detailed.ActivityByDate[j].Date
	})
	if len(detailed.ActivityByDate) > activityLimit {
		detailed.ActivityByDate = detailed.ActivityByDate[:activityLimit]
	}

	return detailed
}
