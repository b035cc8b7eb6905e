package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/pravah-api/internal/models"
	"github.com/noah-isme/pravah-api/internal/repository"
	appErrors "github.com/noah-isme/pravah-api/pkg/errors"
)

func historyFixture(t *testing.T) *repository.MemoryStore {
	store := repository.NewMemoryStore()
	seedStudent(t, store, models.Student{ID: "S1", CenterID: "C1", ClassLevel: "5th", Name: "Asha", SchoolName: "ZP School", AdmissionDate: mustDay(t, "2024-03-05")})
	seedStudent(t, store, models.Student{ID: "S2", CenterID: "C1", Name: "Ravi", AdmissionDate: mustDay(t, "2024-03-01")})
	seedAttendance(t, store, "A1", "C1", "2024-03-05", "S1", "S2")
	seedAttendance(t, store, "A2", "C1", "2024-03-06", "S1")
	seedDiary(t, store, "D1", "C1", "2024-03-05", "Kindness is strength")
	seedDiary(t, store, "D2", "C2", "2024-03-07", "")
	return store
}

func newHistoryService(store *repository.MemoryStore) *HistoryService {
	return NewHistoryService(store.Students, store.Attendance, store.Diary, nil, nil)
}

func ids(items []models.HistoryItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func TestHistoryAllOrdersNewestFirstWithGroupedTies(t *testing.T) {
	svc := newHistoryService(historyFixture(t))

	items, err := svc.All(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "S1", "A1", "D1", "S2"}, ids(items))

	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].Date.After(items[i-1].Date))
	}
}

func TestHistoryAllWithoutCenterSpansEveryCenter(t *testing.T) {
	svc := newHistoryService(historyFixture(t))

	items, err := svc.All(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "D2", items[0].ID)
	assert.Len(t, items, 6)
}

func TestHistoryItemDetails(t *testing.T) {
	svc := newHistoryService(historyFixture(t))

	items, err := svc.All(context.Background(), "")
	require.NoError(t, err)
	details := map[string]string{}
	for _, item := range items {
		details[item.ID] = item.Details
	}
	assert.Equal(t, "Asha · Class 5th · ZP School", details["S1"])
	assert.Equal(t, "Ravi", details["S2"])
	assert.Equal(t, "2/3 present", details["A1"])
	assert.Equal(t, "Kindness is strength", details["D1"])
	assert.Equal(t, "12 students, 1 volunteers", details["D2"])
}

func TestHistoryListFilter(t *testing.T) {
	svc := newHistoryService(historyFixture(t))

	diary, err := svc.List(context.Background(), "", models.HistoryFilter{Type: models.HistoryTypeDiary})
	require.NoError(t, err)
	require.Len(t, diary, 2)
	for _, item := range diary {
		assert.Equal(t, models.HistoryTypeDiary, item.Type)
		_, ok := item.Diary()
		assert.True(t, ok)
	}

	all, err := svc.List(context.Background(), "C1", models.HistoryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestHistoryDeleteRoutesByType(t *testing.T) {
	store := historyFixture(t)
	svc := newHistoryService(store)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "S1", models.HistoryTypeAdmission))
	require.NoError(t, svc.Delete(ctx, "A1", models.HistoryTypeAttendance))
	require.NoError(t, svc.Delete(ctx, "D1", models.HistoryTypeDiary))

	items, err := svc.All(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A2", "S2"}, ids(items))

	_, err = store.Students.FindByID(ctx, "S1")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)
}

func TestHistoryDeleteWrongTypeLeavesOtherCollections(t *testing.T) {
	store := historyFixture(t)
	svc := newHistoryService(store)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "S1", models.HistoryTypeDiary))

	items, err := svc.All(ctx, "C1")
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestHistoryDeleteMissingIsNoop(t *testing.T) {
	svc := newHistoryService(historyFixture(t))
	assert.NoError(t, svc.Delete(context.Background(), "nope", models.HistoryTypeAttendance))
}

func TestHistoryDeleteRejectsUnknownType(t *testing.T) {
	svc := newHistoryService(historyFixture(t))
	err := svc.Delete(context.Background(), "S1", models.HistoryType("Grades"))
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestHistoryGet(t *testing.T) {
	svc := newHistoryService(historyFixture(t))

	item, err := svc.Get(context.Background(), models.HistoryTypeAdmission, "S1")
	require.NoError(t, err)
	student, ok := item.Student()
	require.True(t, ok)
	assert.Equal(t, "Asha", student.Name)

	_, err = svc.Get(context.Background(), models.HistoryTypeDiary, "missing")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestHistoryStoreUnavailable(t *testing.T) {
	store := historyFixture(t)
	svc := NewHistoryService(unavailableStudents{}, store.Attendance, store.Diary, nil, nil)

	_, err := svc.All(context.Background(), "C1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStoreUnavailable))

	err = svc.Delete(context.Background(), "S1", models.HistoryTypeAdmission)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrStoreUnavailable))
}

func TestHistoryItemJSON(t *testing.T) {
	svc := newHistoryService(historyFixture(t))
	items, err := svc.List(context.Background(), "C1", models.HistoryFilter{Type: models.HistoryTypeAttendance})
	require.NoError(t, err)

	raw, err := json.Marshal(items[0])
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "2024-03-06", decoded["date"])
	assert.Equal(t, "Attendance", decoded["type"])
	assert.Equal(t, "C1", decoded["centerId"])
	assert.Equal(t, "A2", decoded["data"].(map[string]interface{})["id"])
}

func TestHistoryScopedToCityCenters(t *testing.T) {
	store := repository.NewMemoryStore()
	seedStudent(t, store, models.Student{ID: "N1", CenterID: "NGP-C1", Name: "Asha", AdmissionDate: mustDay(t, "2024-03-01")})
	seedStudent(t, store, models.Student{ID: "M1", CenterID: "MDA-C1", Name: "Intruder", AdmissionDate: mustDay(t, "2024-03-02")})
	seedDiary(t, store, "D1", "NGP-C3", "2024-03-03", "")
	svc := newHistoryService(store)

	items, err := svc.List(context.Background(), "", models.HistoryFilter{CenterIDs: models.CityCenterIDs("NGP-C1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "N1"}, ids(items))
}

func TestHistoryDeleteForChecksCity(t *testing.T) {
	store := repository.NewMemoryStore()
	seedStudent(t, store, models.Student{ID: "M1", CenterID: "MDA-C1", Name: "Intruder"})
	seedAttendance(t, store, "A1", "NGP-C2", "2024-03-04", "S1")
	svc := newHistoryService(store)
	ctx := context.Background()

	err := svc.DeleteFor(ctx, volunteerNGP, "M1", models.HistoryTypeAdmission)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
	_, err = store.Students.FindByID(ctx, "M1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteFor(ctx, volunteerNGP, "A1", models.HistoryTypeAttendance))
	_, err = store.Attendance.FindByID(ctx, "A1")
	assert.ErrorIs(t, err, repository.ErrRecordNotFound)

	assert.NoError(t, svc.DeleteFor(ctx, volunteerNGP, "A1", models.HistoryTypeAttendance))

	_, err = svc.GetFor(ctx, volunteerNGP, models.HistoryTypeAdmission, "M1")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrForbidden))
}
