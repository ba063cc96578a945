package detector

// Thresholds collects the detector's policy constants. The defaults mirror
// observed product behavior; they are tunable parameters, not invariants.
type Thresholds struct {
	// Analysis window and minimum input size.
	WindowDays int
	MinLogs    int

	// Health score trend.
	ScoreDelta    float64 // recent-vs-older mean delta for improving/declining
	TrendWindow   int     // entries per comparison window
	LowScore      float64 // below this a declining trend raises an alert
	CriticalScore float64 // below this the alert escalates to urgent

	// Mood trend.
	MoodRecentWindow  int // moods inspected for the recency judgement
	MoodNegativeLimit int // more than this many negatives is concerning

	// Activity frequency trend.
	FreqIncreaseRatio float64
	FreqDecreaseRatio float64

	// Interval rules.
	OverdueRatio        float64 // actual/expected above this fires watering/feeding
	WateringUrgentRatio float64 // watering escalates to urgent above this
	FeedingUrgentRatio  float64 // feeding escalates to urgent above this
	WalkFireRatio       float64 // walk rule fires above this
	WalkWarnRatio       float64 // walk escalates info -> warning above this
	PredictiveRatio     float64 // below this a predictive watering alert may fire
	PredictiveDueDays   float64 // predictive alert fires when due within this many days

	// Prioritization caps.
	MaxAlerts          int
	MaxWarnings        int
	MaxInfoWithWarning int
	MaxInfoOnly        int

	// Synthesis inputs.
	RecentLogsForLLM int // raw logs handed to the advisor
	SymptomNoteScan  int // most recent noted logs scanned for symptom keywords
}

// DefaultThresholds returns the thresholds observed in production.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WindowDays:          30,
		MinLogs:             3,
		ScoreDelta:          0.3,
		TrendWindow:         7,
		LowScore:            3.5,
		CriticalScore:       2.5,
		MoodRecentWindow:    5,
		MoodNegativeLimit:   2,
		FreqIncreaseRatio:   1.2,
		FreqDecreaseRatio:   0.8,
		OverdueRatio:        1.3,
		WateringUrgentRatio: 2.0,
		FeedingUrgentRatio:  1.8,
		WalkFireRatio:       1.5,
		WalkWarnRatio:       2.0,
		PredictiveRatio:     0.7,
		PredictiveDueDays:   2,
		MaxAlerts:           3,
		MaxWarnings:         2,
		MaxInfoWithWarning:  1,
		MaxInfoOnly:         2,
		RecentLogsForLLM:    20,
		SymptomNoteScan:     5,
	}
}
