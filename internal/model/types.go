package model

import "time"

// NurtureType tags a tracked entity. The tag is immutable after creation.
type NurtureType string

const (
	NurtureBaby  NurtureType = "baby"
	NurturePet   NurtureType = "pet"
	NurturePlant NurtureType = "plant"
)

// ValidNurtureType reports whether t is one of the known type tags.
func ValidNurtureType(t NurtureType) bool {
	switch t {
	case NurtureBaby, NurturePet, NurturePlant:
		return true
	}
	return false
}

// Nurture is a tracked baby, pet, or plant.
type Nurture struct {
	NurtureID    string      `json:"nurtureId"`
	OwnerID      string      `json:"ownerId"`
	Name         string      `json:"name"`
	Type         NurtureType `json:"type"`
	Species      *string     `json:"species,omitempty"`
	Breed        *string     `json:"breed,omitempty"`
	BirthDate    *time.Time  `json:"birthDate,omitempty"`
	AvatarRef    *string     `json:"avatarRef,omitempty"`
	CreationTime time.Time   `json:"creationTime"`
}

// Mood labels form a fixed small vocabulary on activity logs.
const (
	MoodHappy   = "happy"
	MoodContent = "content"
	MoodNeutral = "neutral"
	MoodTired   = "tired"
	MoodSad     = "sad"
)

// ValidMood reports whether m is a known mood label.
func ValidMood(m string) bool {
	switch m {
	case MoodHappy, MoodContent, MoodNeutral, MoodTired, MoodSad:
		return true
	}
	return false
}

// ActivityLog is one recorded care event. Logs are immutable after creation;
// edits create new logs rather than updating existing ones.
type ActivityLog struct {
	LogID        string    `json:"logId"`
	NurtureID    string    `json:"nurtureId"`
	CreationTime time.Time `json:"creationTime"`
	RawText      string    `json:"rawText"`
	Action       *string   `json:"action,omitempty"`
	Notes        *string   `json:"notes,omitempty"`
	Mood         *string   `json:"mood,omitempty"`
	HealthScore  *float64  `json:"healthScore,omitempty"`
	Photos       []string  `json:"photos,omitempty"`
}

// AlertClass partitions alerts by severity.
type AlertClass string

const (
	AlertUrgent  AlertClass = "urgent"
	AlertWarning AlertClass = "warning"
	AlertInfo    AlertClass = "info"
)

// AlertCategory names the care concern an alert is about.
type AlertCategory string

const (
	CategoryWatering   AlertCategory = "watering"
	CategoryFeeding    AlertCategory = "feeding"
	CategoryHealth     AlertCategory = "health"
	CategorySchedule   AlertCategory = "schedule"
	CategoryVeterinary AlertCategory = "veterinary"
	CategoryMedical    AlertCategory = "medical"
)

// Urgency grades how quickly the user should act.
type Urgency string

const (
	UrgencyLow    Urgency = "low"
	UrgencyMedium Urgency = "medium"
	UrgencyHigh   Urgency = "high"
)

// ValidAlertClass reports whether c is a known alert class.
func ValidAlertClass(c AlertClass) bool {
	return c == AlertUrgent || c == AlertWarning || c == AlertInfo
}

// ValidAlertCategory reports whether c is a known alert category.
func ValidAlertCategory(c AlertCategory) bool {
	switch c {
	case CategoryWatering, CategoryFeeding, CategoryHealth, CategorySchedule, CategoryVeterinary, CategoryMedical:
		return true
	}
	return false
}

// ValidUrgency reports whether u is a known urgency grade.
func ValidUrgency(u Urgency) bool {
	return u == UrgencyLow || u == UrgencyMedium || u == UrgencyHigh
}

// ClassRank orders alert classes by severity; lower sorts first.
func ClassRank(c AlertClass) int {
	switch c {
	case AlertUrgent:
		return 0
	case AlertWarning:
		return 1
	default:
		return 2
	}
}

// UrgencyRank orders urgencies; lower sorts first.
func UrgencyRank(u Urgency) int {
	switch u {
	case UrgencyHigh:
		return 0
	case UrgencyMedium:
		return 1
	default:
		return 2
	}
}

// AlertData carries the concrete numbers behind an alert.
type AlertData struct {
	ExpectedInterval *float64   `json:"expectedInterval,omitempty"`
	ActualInterval   *float64   `json:"actualInterval,omitempty"`
	LastActivity     *time.Time `json:"lastActivity,omitempty"`
	Trend            *string    `json:"trend,omitempty"`
	HealthScore      *float64   `json:"healthScore,omitempty"`
	DominantMood     *string    `json:"dominantMood,omitempty"`
	NextDue          *time.Time `json:"nextDue,omitempty"`
	Keyword          *string    `json:"keyword,omitempty"`
}

// HealthAlert is a derived, ephemeral advisory. It is regenerated on every
// detector run; its identifier is derived from the alert's content so that
// recomputation yields the same identifier and acknowledgements can suppress
// reappearances.
type HealthAlert struct {
	AlertID          string        `json:"alertId"`
	NurtureID        string        `json:"nurtureId"`
	NurtureName      string        `json:"nurtureName"`
	Type             AlertClass    `json:"type"`
	Category         AlertCategory `json:"category"`
	Title            string        `json:"title"`
	Message          string        `json:"message"`
	Details          string        `json:"details,omitempty"`
	SuggestedActions []string      `json:"suggestedActions,omitempty"`
	Urgency          Urgency       `json:"urgency"`
	DetectedAt       time.Time     `json:"detectedAt"`
	Data             *AlertData    `json:"data,omitempty"`
}

// AckAction is the user action recorded against an alert.
type AckAction string

const (
	AckDismissed   AckAction = "dismissed"
	AckResolved    AckAction = "resolved"
	AckActionTaken AckAction = "action_taken"
)

// ValidAckAction reports whether a is a known acknowledgement action.
func ValidAckAction(a AckAction) bool {
	return a == AckDismissed || a == AckResolved || a == AckActionTaken
}

// Acknowledgement is an append-only record that an alert was dismissed,
// resolved, or acted upon. Records expire by age filtering, never by deletion.
type Acknowledgement struct {
	AlertID      string    `json:"alertId"`
	OwnerID      string    `json:"ownerId"`
	Action       AckAction `json:"action"`
	CreationTime time.Time `json:"creationTime"`
}

// ListLogsRequest captures filters used when listing activity logs.
type ListLogsRequest struct {
	NurtureID string
	Since     *time.Time
	Limit     int
}
