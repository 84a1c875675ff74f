package services

import (
	"fmt"

	apperrors "github.com/yungbote/healthjournal-backend/internal/pkg/errors"
)

// AssessmentPHQ4 is the four-item anxiety/depression screener.
const AssessmentPHQ4 = "PHQ-4"

type scoringFunc func(responses map[string]int) map[string]any

var assessmentScorers = map[string]scoringFunc{
	AssessmentPHQ4: scorePHQ4,
}

// ScoreAssessment dispatches to the scoring function registered for the
// assessment name.
func ScoreAssessment(name string, responses map[string]int) (map[string]any, error) {
	scorer, ok := assessmentScorers[name]
	if !ok {
		return nil, fmt.Errorf("no scorer for assessment %q: %w", name, apperrors.ErrInvalidArgument)
	}
	return scorer(responses), nil
}

// PHQ-4: anxiety = q1+q2, depression = q3+q4, total = anxiety+depression.
// Severity bands: >=9 severe, >=6 moderate, >=3 mild, else minimal.
func scorePHQ4(responses map[string]int) map[string]any {
	anxiety := responses["q1"] + responses["q2"]
	depression := responses["q3"] + responses["q4"]
	total := anxiety + depression

	severity := "minimal"
	switch {
	case total >= 9:
		severity = "severe"
	case total >= 6:
		severity = "moderate"
	case total >= 3:
		severity = "mild"
	}

	return map[string]any{
		"anxiety":    anxiety,
		"depression": depression,
		"total":      total,
		"severity":   severity,
	}
}
