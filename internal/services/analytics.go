package services

import (
	"math"
	"sort"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

const (
	TimeframeWeek    = "week"
	TimeframeMonth   = "month"
	TimeframeQuarter = "quarter"
)

// TimeframeDays maps a timeframe name to its day window. Unknown values
// fall back to a month.
func TimeframeDays(timeframe string) int {
	switch timeframe {
	case TimeframeWeek:
		return 7
	case TimeframeQuarter:
		return 90
	default:
		return 30
	}
}

// moodScale is the fixed ordinal mood table. Moods not listed here are
// omitted from the trend, never coerced to a default.
var moodScale = map[string]float64{
	"overwhelmed": 1,
	"sad":         2,
	"stressed":    3,
	"anxious":     4,
	"neutral":     5,
	"okay":        6,
	"hopeful":     7,
	"good":        8,
	"great":       9,
	"excellent":   10,
}

type AnalyticsSummary struct {
	Timeframe     string  `json:"timeframe"`
	Days          int     `json:"days"`
	CheckinCount  int     `json:"checkin_count"`
	MoodTrend     float64 `json:"mood_trend"`
	AdherenceRate *int    `json:"adherence_rate"`
}

// SummarizeCheckins computes the two summary statistics both schema paths
// must reproduce identically, from V1-shaped rows in any order.
func SummarizeCheckins(timeframe string, rows []*types.DailyCheckin) *AnalyticsSummary {
	chronological := make([]*types.DailyCheckin, len(rows))
	copy(chronological, rows)
	sort.Slice(chronological, func(i, j int) bool {
		return chronological[i].CheckinDate.Before(chronological[j].CheckinDate)
	})

	return &AnalyticsSummary{
		Timeframe:     timeframe,
		Days:          TimeframeDays(timeframe),
		CheckinCount:  len(rows),
		MoodTrend:     moodTrend(chronological),
		AdherenceRate: adherenceRate(chronological),
	}
}

// moodTrend is mean(last min(3,N) scored moods) minus mean(the remaining
// scored moods), rounded to two decimals. Zero whenever either window is
// empty, which also covers the fewer-than-two-entries rule.
func moodTrend(chronological []*types.DailyCheckin) float64 {
	var scored []float64
	for _, row := range chronological {
		if v, ok := moodScale[row.MoodToday]; ok {
			scored = append(scored, v)
		}
	}
	if len(scored) < 2 {
		return 0
	}

	recentCount := 3
	if recentCount > len(scored) {
		recentCount = len(scored)
	}
	earlier := scored[:len(scored)-recentCount]
	recent := scored[len(scored)-recentCount:]
	if len(earlier) == 0 {
		return 0
	}

	trend := mean(recent) - mean(earlier)
	return math.Round(trend*100) / 100
}

// adherenceRate is round(100 * taken / (taken + missed)) over rows where
// medication tracking is enabled; nil when no tracked rows exist.
func adherenceRate(rows []*types.DailyCheckin) *int {
	taken, missed := 0, 0
	for _, row := range rows {
		switch row.MedicationTaken {
		case types.MedicationTakenYes:
			taken++
		case types.MedicationTakenNo:
			missed++
		}
	}
	tracked := taken + missed
	if tracked == 0 {
		return nil
	}
	rate := int(math.Round(float64(taken) / float64(tracked) * 100))
	return &rate
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
