package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bloomie/bloomie-care/internal/model"
	"github.com/bloomie/bloomie-care/internal/platform/logger"
)

func TestNurtureService_CreateValidation(t *testing.T) {
	svc := NewNurtureService(newFakeStore(), logger.New("test"))
	ctx := context.Background()
	birth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   model.Nurture
	}{
		{"missing owner", model.Nurture{Name: "Rex", Type: model.NurturePet}},
		{"missing name", model.Nurture{OwnerID: "u1", Type: model.NurturePet}},
		{"name too long", model.Nurture{OwnerID: "u1", Name: strings.Repeat("x", 51), Type: model.NurturePet}},
		{"bad type", model.Nurture{OwnerID: "u1", Name: "Rex", Type: "dragon"}},
		{"birth date on plant", model.Nurture{OwnerID: "u1", Name: "Planty", Type: model.NurturePlant, BirthDate: &birth}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateNurture(ctx, &tc.in)
			assert.True(t, model.IsValidationError(err), "want validation error, got %v", err)
		})
	}
}

func TestNurtureService_CreateAndGet(t *testing.T) {
	svc := NewNurtureService(newFakeStore(), logger.New("test"))
	ctx := context.Background()

	birth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreateNurture(ctx, &model.Nurture{OwnerID: "u1", Name: "Mo", Type: model.NurtureBaby, BirthDate: &birth})
	require.NoError(t, err)
	require.NotEmpty(t, created.NurtureID)

	got, err := svc.GetNurture(ctx, "u1", created.NurtureID)
	require.NoError(t, err)
	assert.Equal(t, "Mo", got.Name)
	assert.Equal(t, model.NurtureBaby, got.Type)
}

func TestNurtureService_UpdateKeepsTypeImmutable(t *testing.T) {
	svc := NewNurtureService(newFakeStore(), logger.New("test"))
	ctx := context.Background()

	created, err := svc.CreateNurture(ctx, &model.Nurture{OwnerID: "u1", Name: "Rex", Type: model.NurturePet})
	require.NoError(t, err)

	// Changing the type is rejected.
	bad := *created
	bad.Type = model.NurturePlant
	_, err = svc.UpdateNurture(ctx, &bad)
	assert.True(t, model.IsValidationError(err))

	// Omitting the type keeps the stored one.
	upd := *created
	upd.Type = ""
	upd.Name = "Rexford"
	got, err := svc.UpdateNurture(ctx, &upd)
	require.NoError(t, err)
	assert.Equal(t, model.NurturePet, got.Type)
	assert.Equal(t, "Rexford", got.Name)
}

func TestNurtureService_DeleteCascadesLogs(t *testing.T) {
	fs := newFakeStore()
	svc := NewNurtureService(fs, logger.New("test"))
	logSvc := NewLogService(fs, logger.New("test"))
	ctx := context.Background()

	created, err := svc.CreateNurture(ctx, &model.Nurture{OwnerID: "u1", Name: "Rex", Type: model.NurturePet})
	require.NoError(t, err)
	_, err = logSvc.CreateLog(ctx, "u1", &model.ActivityLog{NurtureID: created.NurtureID, RawText: "fed breakfast"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteNurture(ctx, "u1", created.NurtureID))

	logs, err := logSvc.ListLogs(ctx, model.ListLogsRequest{NurtureID: created.NurtureID})
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = svc.GetNurture(ctx, "u1", created.NurtureID)
	assert.True(t, model.IsNotFoundError(err))
}
