package carekb

import "testing"

func strptr(s string) *string { return &s }

func TestWateringIntervalDays(t *testing.T) {
	if got := WateringIntervalDays(strptr("pothos")); got != 7 {
		t.Fatalf("pothos: got %v want 7", got)
	}
	if got := WateringIntervalDays(strptr("  Cactus ")); got != 21 {
		t.Fatalf("cactus (mixed case, padded): got %v want 21", got)
	}
	if got := WateringIntervalDays(strptr("unknownius plantus")); got != DefaultWateringDays {
		t.Fatalf("unknown species: got %v want default %v", got, DefaultWateringDays)
	}
	if got := WateringIntervalDays(nil); got != DefaultWateringDays {
		t.Fatalf("nil species: got %v want default %v", got, DefaultWateringDays)
	}
}

func TestFeedingIntervalHours(t *testing.T) {
	if got := FeedingIntervalHours(true, nil); got != DefaultBabyFeedingHours {
		t.Fatalf("baby: got %v want %v", got, DefaultBabyFeedingHours)
	}
	if got := FeedingIntervalHours(false, strptr("dog")); got != 10 {
		t.Fatalf("dog: got %v want 10", got)
	}
	if got := FeedingIntervalHours(false, strptr("axolotl")); got != DefaultPetFeedingHours {
		t.Fatalf("unknown pet: got %v want default %v", got, DefaultPetFeedingHours)
	}
}

func TestWalkIntervalDays(t *testing.T) {
	if d, ok := WalkIntervalDays(strptr("Dog")); !ok || d != 1 {
		t.Fatalf("dog: got %v ok=%v", d, ok)
	}
	if _, ok := WalkIntervalDays(strptr("cat")); ok {
		t.Fatalf("cats should not have a walk interval")
	}
	if _, ok := WalkIntervalDays(nil); ok {
		t.Fatalf("nil species should not have a walk interval")
	}
}
