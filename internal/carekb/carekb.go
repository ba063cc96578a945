// Package carekb is the static care knowledge base: expected care intervals
// per nurture type and species. Unknown species fall back to type defaults.
package carekb

import "strings"

// Default intervals used when the species is unknown or has no entry.
const (
	DefaultWateringDays     = 7.0
	DefaultPetFeedingHours  = 10.0
	DefaultBabyFeedingHours = 3.0
)

// wateringDays maps lowercase plant species to expected watering interval in days.
var wateringDays = map[string]float64{
	"pothos":       7,
	"monstera":     7,
	"philodendron": 7,
	"spider plant": 7,
	"peace lily":   5,
	"fern":         3,
	"basil":        2,
	"orchid":       7,
	"succulent":    14,
	"aloe":         14,
	"snake plant":  14,
	"zz plant":     14,
	"cactus":       21,
}

// feedingHours maps lowercase pet species to expected feeding interval in hours.
var feedingHours = map[string]float64{
	"dog":     10,
	"puppy":   6,
	"cat":     10,
	"kitten":  6,
	"rabbit":  8,
	"hamster": 12,
	"fish":    24,
	"bird":    12,
}

// walkDays maps lowercase pet species to expected walk interval in days.
// Species absent from the table are not expected to be walked.
var walkDays = map[string]float64{
	"dog":   1,
	"puppy": 1,
}

func normalize(species *string) string {
	if species == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(*species))
}

// WateringIntervalDays returns the expected watering interval for a plant
// species in days. Unknown species use the generic default.
func WateringIntervalDays(species *string) float64 {
	if d, ok := wateringDays[normalize(species)]; ok {
		return d
	}
	return DefaultWateringDays
}

// FeedingIntervalHours returns the expected feeding interval in hours for a
// pet species or a baby. Unknown pet species use the generic pet default.
func FeedingIntervalHours(isBaby bool, species *string) float64 {
	if isBaby {
		return DefaultBabyFeedingHours
	}
	if h, ok := feedingHours[normalize(species)]; ok {
		return h
	}
	return DefaultPetFeedingHours
}

// WalkIntervalDays returns the expected walk interval in days for a pet
// species. ok is false when the species is not expected to be walked.
func WalkIntervalDays(species *string) (float64, bool) {
	d, ok := walkDays[normalize(species)]
	return d, ok
}
