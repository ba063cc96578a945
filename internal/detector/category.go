package detector

import (
	"strings"

	"github.com/bloomie/bloomie-care/internal/model"
)

// Category is a normalized action label derived from free-text log input.
type Category string

const (
	CatFeeding     Category = "feeding"
	CatWatering    Category = "watering"
	CatWalk        Category = "walk"
	CatSleep       Category = "sleep"
	CatDiaper      Category = "diaper"
	CatMedication  Category = "medication"
	CatGrooming    Category = "grooming"
	CatFertilizing Category = "fertilizing"
	CatRepotting   Category = "repotting"
	CatPlay        Category = "play"
	CatOther       Category = "other"
)

// vocabulary is the ordered categorization table. Matching is case-insensitive
// substring search; the first category with a matching keyword wins, so entry
// order is part of the contract.
var vocabulary = []struct {
	cat      Category
	keywords []string
}{
	{CatFeeding, []string{"feed", "food", "meal", "milk", "bottle", "nurse", "treat", "snack"}},
	{CatWatering, []string{"water", "mist", "spray"}},
	{CatWalk, []string{"walk", "exercise", "jog", "hike"}},
	{CatSleep, []string{"sleep", "nap", "bedtime"}},
	{CatDiaper, []string{"diaper", "nappy"}},
	{CatMedication, []string{"medicine", "medication", "vitamin", "vaccine", "pill", "dose"}},
	{CatGrooming, []string{"groom", "bath", "brush", "nail trim"}},
	{CatFertilizing, []string{"fertiliz", "fertilis"}},
	{CatRepotting, []string{"repot", "transplant"}},
	{CatPlay, []string{"play", "toy"}},
}

// Categorize maps an activity log to a normalized action category using the
// ordered keyword vocabulary. The normalized action label, raw input, and
// notes are all searched. Logs matching no keyword fall into CatOther.
func Categorize(l *model.ActivityLog) Category {
	var b strings.Builder
	if l.Action != nil {
		b.WriteString(*l.Action)
		b.WriteByte(' ')
	}
	b.WriteString(l.RawText)
	if l.Notes != nil {
		b.WriteByte(' ')
		b.WriteString(*l.Notes)
	}
	text := strings.ToLower(b.String())

	for _, entry := range vocabulary {
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				return entry.cat
			}
		}
	}
	return CatOther
}
