package services

import (
	"testing"
	"time"

	types "github.com/yungbote/healthjournal-backend/internal/domain"
)

func checkinRow(dayOffset int, mood, medicationTaken string) *types.DailyCheckin {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return &types.DailyCheckin{
		CheckinDate:     base.AddDate(0, 0, dayOffset),
		MoodToday:       mood,
		MedicationTaken: medicationTaken,
	}
}

func TestTimeframeDays(t *testing.T) {
	cases := map[string]int{
		TimeframeWeek:    7,
		TimeframeMonth:   30,
		TimeframeQuarter: 90,
		"bogus":          30,
		"":               30,
	}
	for timeframe, want := range cases {
		if got := TimeframeDays(timeframe); got != want {
			t.Fatalf("TimeframeDays(%q): want=%d got=%d", timeframe, want, got)
		}
	}
}

func TestMoodTrendRecentWindowMinusEarlier(t *testing.T) {
	// Scored series 3,3,3,7,9: recent window [3,7,9] mean 6.33, earlier
	// [3,3] mean 3.
	rows := []*types.DailyCheckin{
		checkinRow(0, "stressed", types.MedicationNotTracked),
		checkinRow(1, "stressed", types.MedicationNotTracked),
		checkinRow(2, "stressed", types.MedicationNotTracked),
		checkinRow(3, "hopeful", types.MedicationNotTracked),
		checkinRow(4, "great", types.MedicationNotTracked),
	}

	summary := SummarizeCheckins(TimeframeWeek, rows)
	if summary.MoodTrend != 3.33 {
		t.Fatalf("mood trend: want=3.33 got=%v", summary.MoodTrend)
	}
	if summary.CheckinCount != 5 {
		t.Fatalf("checkin count: want=5 got=%d", summary.CheckinCount)
	}
}

func TestMoodTrendInputOrderIrrelevant(t *testing.T) {
	rows := []*types.DailyCheckin{
		checkinRow(4, "great", types.MedicationNotTracked),
		checkinRow(1, "stressed", types.MedicationNotTracked),
		checkinRow(3, "hopeful", types.MedicationNotTracked),
		checkinRow(0, "stressed", types.MedicationNotTracked),
		checkinRow(2, "stressed", types.MedicationNotTracked),
	}

	summary := SummarizeCheckins(TimeframeWeek, rows)
	if summary.MoodTrend != 3.33 {
		t.Fatalf("mood trend: want=3.33 got=%v", summary.MoodTrend)
	}
}

func TestMoodTrendZeroWithoutEarlierWindow(t *testing.T) {
	// Three or fewer scored moods leaves nothing before the recent window.
	rows := []*types.DailyCheckin{
		checkinRow(0, "sad", types.MedicationNotTracked),
		checkinRow(1, "okay", types.MedicationNotTracked),
		checkinRow(2, "great", types.MedicationNotTracked),
	}
	if got := SummarizeCheckins(TimeframeMonth, rows).MoodTrend; got != 0 {
		t.Fatalf("mood trend: want=0 got=%v", got)
	}
}

func TestMoodTrendZeroWithFewerThanTwoEntries(t *testing.T) {
	rows := []*types.DailyCheckin{checkinRow(0, "good", types.MedicationNotTracked)}
	if got := SummarizeCheckins(TimeframeMonth, rows).MoodTrend; got != 0 {
		t.Fatalf("mood trend: want=0 got=%v", got)
	}
}

func TestMoodTrendSkipsUnknownMoods(t *testing.T) {
	rows := []*types.DailyCheckin{
		checkinRow(0, "stressed", types.MedicationNotTracked),
		checkinRow(1, "mysterious", types.MedicationNotTracked),
		checkinRow(2, "stressed", types.MedicationNotTracked),
		checkinRow(3, "stressed", types.MedicationNotTracked),
		checkinRow(4, "hopeful", types.MedicationNotTracked),
		checkinRow(5, "great", types.MedicationNotTracked),
	}
	if got := SummarizeCheckins(TimeframeMonth, rows).MoodTrend; got != 3.33 {
		t.Fatalf("mood trend: want=3.33 got=%v", got)
	}
}

func TestAdherenceRateTrackedRowsOnly(t *testing.T) {
	var rows []*types.DailyCheckin
	for i := 0; i < 7; i++ {
		rows = append(rows, checkinRow(i, "okay", types.MedicationTakenYes))
	}
	for i := 7; i < 10; i++ {
		rows = append(rows, checkinRow(i, "okay", types.MedicationTakenNo))
	}
	for i := 10; i < 15; i++ {
		rows = append(rows, checkinRow(i, "okay", types.MedicationNotTracked))
	}

	summary := SummarizeCheckins(TimeframeMonth, rows)
	if summary.AdherenceRate == nil {
		t.Fatalf("adherence rate: want=70 got=nil")
	}
	if *summary.AdherenceRate != 70 {
		t.Fatalf("adherence rate: want=70 got=%d", *summary.AdherenceRate)
	}
}

func TestAdherenceRateNilWhenNothingTracked(t *testing.T) {
	rows := []*types.DailyCheckin{
		checkinRow(0, "okay", types.MedicationNotTracked),
		checkinRow(1, "good", types.MedicationNotTracked),
	}
	if got := SummarizeCheckins(TimeframeMonth, rows).AdherenceRate; got != nil {
		t.Fatalf("adherence rate: want=nil got=%d", *got)
	}
}

func TestSummarizeCheckinsEmpty(t *testing.T) {
	summary := SummarizeCheckins(TimeframeQuarter, nil)
	if summary.CheckinCount != 0 || summary.MoodTrend != 0 || summary.AdherenceRate != nil {
		t.Fatalf("empty summary: got=%+v", summary)
	}
	if summary.Days != 90 {
		t.Fatalf("days: want=90 got=%d", summary.Days)
	}
}
