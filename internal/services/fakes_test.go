package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/store"
)

// fakeStore is an in-memory store.Store used across the service tests.
type fakeStore struct {
	nurtures map[string]*model.Nurture
	logs     map[string][]*model.ActivityLog
	acks     []*model.Acknowledgement

	ackAppendErr error
	ackReadErr   error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nurtures: make(map[string]*model.Nurture),
		logs:     make(map[string][]*model.ActivityLog),
	}
}

func (f *fakeStore) Nurtures() store.Nurtures { return &fakeNurtures{f} }
func (f *fakeStore) Logs() store.Logs         { return &fakeLogs{f} }
func (f *fakeStore) Acks() store.Acks         { return &fakeAcks{f} }

type fakeNurtures struct{ p *fakeStore }

func (n *fakeNurtures) Create(_ context.Context, m *model.Nurture) (*model.Nurture, error) {
	out := *m
	if out.NurtureID == "" {
		out.NurtureID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	n.p.nurtures[out.NurtureID] = &out
	return &out, nil
}

func (n *fakeNurtures) Get(_ context.Context, ownerID, nurtureID string) (*model.Nurture, error) {
	m, ok := n.p.nurtures[nurtureID]
	if !ok || m.OwnerID != ownerID {
		return nil, model.NewNotFoundError("nurtureId", nurtureID)
	}
	out := *m
	return &out, nil
}

func (n *fakeNurtures) List(_ context.Context, ownerID string) ([]*model.Nurture, error) {
	var out []*model.Nurture
	for _, m := range n.p.nurtures {
		if m.OwnerID == ownerID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (n *fakeNurtures) Update(_ context.Context, m *model.Nurture) (*model.Nurture, error) {
	cur, ok := n.p.nurtures[m.NurtureID]
	if !ok || cur.OwnerID != m.OwnerID {
		return nil, model.NewNotFoundError("nurtureId", m.NurtureID)
	}
	upd := *m
	upd.CreationTime = cur.CreationTime
	n.p.nurtures[m.NurtureID] = &upd
	out := upd
	return &out, nil
}

func (n *fakeNurtures) Delete(_ context.Context, ownerID, nurtureID string) error {
	m, ok := n.p.nurtures[nurtureID]
	if !ok || m.OwnerID != ownerID {
		return model.NewNotFoundError("nurtureId", nurtureID)
	}
	delete(n.p.nurtures, nurtureID)
	delete(n.p.logs, nurtureID)
	return nil
}

type fakeLogs struct{ p *fakeStore }

func (l *fakeLogs) Create(_ context.Context, m *model.ActivityLog) (*model.ActivityLog, error) {
	out := *m
	if out.LogID == "" {
		out.LogID = uuid.New().String()
	}
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	l.p.logs[out.NurtureID] = append(l.p.logs[out.NurtureID], &out)
	return &out, nil
}

func (l *fakeLogs) Get(_ context.Context, nurtureID, logID string) (*model.ActivityLog, error) {
	for _, m := range l.p.logs[nurtureID] {
		if m.LogID == logID {
			out := *m
			return &out, nil
		}
	}
	return nil, model.NewNotFoundError("logId", logID)
}

func (l *fakeLogs) List(_ context.Context, req model.ListLogsRequest) ([]*model.ActivityLog, error) {
	var out []*model.ActivityLog
	for _, m := range l.p.logs[req.NurtureID] {
		if req.Since != nil && m.CreationTime.Before(*req.Since) {
			continue
		}
		c := *m
		out = append(out, &c)
	}
	return out, nil
}

func (l *fakeLogs) Delete(_ context.Context, nurtureID, logID string) error {
	logs := l.p.logs[nurtureID]
	for i, m := range logs {
		if m.LogID == logID {
			l.p.logs[nurtureID] = append(logs[:i], logs[i+1:]...)
			return nil
		}
	}
	return model.NewNotFoundError("logId", logID)
}

type fakeAcks struct{ p *fakeStore }

func (a *fakeAcks) Append(_ context.Context, m *model.Acknowledgement) (*model.Acknowledgement, error) {
	if a.p.ackAppendErr != nil {
		return nil, a.p.ackAppendErr
	}
	out := *m
	if out.CreationTime.IsZero() {
		out.CreationTime = time.Now().UTC()
	}
	a.p.acks = append(a.p.acks, &out)
	return &out, nil
}

func (a *fakeAcks) ActiveIDs(_ context.Context, ownerID string, since time.Time) (map[string]bool, error) {
	if a.p.ackReadErr != nil {
		return nil, a.p.ackReadErr
	}
	out := make(map[string]bool)
	for _, m := range a.p.acks {
		if m.OwnerID == ownerID && !m.CreationTime.Before(since) {
			out[m.AlertID] = true
		}
	}
	return out, nil
}

var errStoreDown = errors.New("store unavailable")
