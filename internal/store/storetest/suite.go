package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store implementation.
// Implementations should provide a clean, isolated store and return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	ownerID := "owner-" + uuid.New().String()
	species := "pothos"

	// Nurtures
	n, err := s.Nurtures().Create(ctx, &model.Nurture{OwnerID: ownerID, Name: "Planty", Type: model.NurturePlant, Species: &species})
	if err != nil {
		t.Fatalf("CreateNurture: %v", err)
	}
	if n.NurtureID == "" {
		t.Fatalf("CreateNurture: empty nurture id")
	}
	if got, err := s.Nurtures().Get(ctx, ownerID, n.NurtureID); err != nil || got == nil || got.Name != "Planty" || got.Type != model.NurturePlant {
		t.Fatalf("GetNurture: got=%v err=%v", got, err)
	}
	if lst, err := s.Nurtures().List(ctx, ownerID); err != nil || len(lst) != 1 {
		t.Fatalf("ListNurtures: n=%d err=%v", len(lst), err)
	}

	// Get for an unknown ID maps to a domain not-found error.
	if _, err := s.Nurtures().Get(ctx, ownerID, uuid.New().String()); !model.IsNotFoundError(err) {
		t.Fatalf("GetNurture unknown: want NotFoundError, got %v", err)
	}

	// Re-creating with an explicit duplicate ID maps to a domain conflict error.
	if _, err := s.Nurtures().Create(ctx, &model.Nurture{NurtureID: n.NurtureID, OwnerID: ownerID, Name: "Copycat", Type: model.NurturePlant}); !model.IsConflictError(err) {
		t.Fatalf("CreateNurture duplicate id: want ConflictError, got %v", err)
	}

	// Update mutable fields; type stays as created.
	upd := *n
	upd.Name = "Planty Jr"
	if got, err := s.Nurtures().Update(ctx, &upd); err != nil || got.Name != "Planty Jr" || got.Type != model.NurturePlant {
		t.Fatalf("UpdateNurture: got=%v err=%v", got, err)
	}

	// Logs
	mood := model.MoodHappy
	l1, err := s.Logs().Create(ctx, &model.ActivityLog{NurtureID: n.NurtureID, RawText: "watered", Mood: &mood})
	if err != nil {
		t.Fatalf("CreateLog l1: %v", err)
	}
	time.Sleep(5 * time.Millisecond) // ensure monotonic creation time ordering
	l2, err := s.Logs().Create(ctx, &model.ActivityLog{NurtureID: n.NurtureID, RawText: "misted leaves", Photos: []string{"p1.jpg"}})
	if err != nil {
		t.Fatalf("CreateLog l2: %v", err)
	}

	if _, err := s.Logs().Create(ctx, &model.ActivityLog{LogID: l1.LogID, NurtureID: n.NurtureID, RawText: "duplicate"}); !model.IsConflictError(err) {
		t.Fatalf("CreateLog duplicate id: want ConflictError, got %v", err)
	}

	if got, err := s.Logs().Get(ctx, n.NurtureID, l1.LogID); err != nil || got == nil || got.RawText != "watered" || got.Mood == nil || *got.Mood != model.MoodHappy {
		t.Fatalf("GetLog: got=%v err=%v", got, err)
	}
	if got, err := s.Logs().Get(ctx, n.NurtureID, l2.LogID); err != nil || len(got.Photos) != 1 {
		t.Fatalf("GetLog photos: got=%v err=%v", got, err)
	}

	// Newest first
	lst, err := s.Logs().List(ctx, model.ListLogsRequest{NurtureID: n.NurtureID})
	if err != nil || len(lst) != 2 {
		t.Fatalf("ListLogs: n=%d err=%v", len(lst), err)
	}
	if lst[0].LogID != l2.LogID {
		t.Fatalf("ListLogs: want newest first, got %s", lst[0].LogID)
	}

	// Since filter excludes the older log.
	since := l2.CreationTime
	if flt, err := s.Logs().List(ctx, model.ListLogsRequest{NurtureID: n.NurtureID, Since: &since}); err != nil || len(flt) != 1 {
		t.Fatalf("ListLogs since: n=%d err=%v", len(flt), err)
	}

	// Limit caps results.
	if lim, err := s.Logs().List(ctx, model.ListLogsRequest{NurtureID: n.NurtureID, Limit: 1}); err != nil || len(lim) != 1 {
		t.Fatalf("ListLogs limit: n=%d err=%v", len(lim), err)
	}

	// Acks
	now := time.Now().UTC()
	if _, err := s.Acks().Append(ctx, &model.Acknowledgement{AlertID: "alert-1", OwnerID: ownerID, Action: model.AckDismissed, CreationTime: now}); err != nil {
		t.Fatalf("AppendAck: %v", err)
	}
	if _, err := s.Acks().Append(ctx, &model.Acknowledgement{AlertID: "alert-2", OwnerID: ownerID, Action: model.AckResolved, CreationTime: now.Add(-30 * 24 * time.Hour)}); err != nil {
		t.Fatalf("AppendAck old: %v", err)
	}
	active, err := s.Acks().ActiveIDs(ctx, ownerID, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatalf("ActiveIDs: %v", err)
	}
	if !active["alert-1"] || active["alert-2"] {
		t.Fatalf("ActiveIDs: want only alert-1 within the window, got %v", active)
	}

	// Re-acknowledging the same alert appends rather than failing.
	if _, err := s.Acks().Append(ctx, &model.Acknowledgement{AlertID: "alert-1", OwnerID: ownerID, Action: model.AckActionTaken, CreationTime: now}); err != nil {
		t.Fatalf("AppendAck repeat: %v", err)
	}

	// Delete log
	if err := s.Logs().Delete(ctx, n.NurtureID, l2.LogID); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}

	// Delete nurture cascades its remaining logs.
	if err := s.Nurtures().Delete(ctx, ownerID, n.NurtureID); err != nil {
		t.Fatalf("DeleteNurture: %v", err)
	}
	if left, err := s.Logs().List(ctx, model.ListLogsRequest{NurtureID: n.NurtureID}); err != nil || len(left) != 0 {
		t.Fatalf("logs should cascade on nurture delete: n=%d err=%v", len(left), err)
	}
	if _, err := s.Nurtures().Get(ctx, ownerID, n.NurtureID); !model.IsNotFoundError(err) {
		t.Fatalf("GetNurture after delete: want NotFoundError, got %v", err)
	}
}
