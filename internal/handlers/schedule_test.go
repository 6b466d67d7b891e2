package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedule_api/internal/response"
	"schedule_api/internal/schedule"
)

type fakeService struct {
	sessions []schedule.ResolvedSession
	days     []schedule.DayCount
	err      error

	onceEdits   []schedule.OnceEditInput
	weeklyEdits []schedule.WeeklyEditInput
}

func (f *fakeService) ScheduleForGroup(_ context.Context, _ string, _ time.Time) ([]schedule.ResolvedSession, error) {
	return f.sessions, f.err
}

func (f *fakeService) ScheduleForTeacher(_ context.Context, _ string, _ time.Time) ([]schedule.ResolvedSession, error) {
	return f.sessions, f.err
}

func (f *fakeService) WeekOverview(_ context.Context, group, teacher string, _ time.Time) ([]schedule.DayCount, error) {
	if (group == "") == (teacher == "") {
		return nil, schedule.ErrInvalidRequest
	}
	return f.days, f.err
}

func (f *fakeService) Groups(_ context.Context) ([]string, error) {
	return []string{"ИС-21", "ПИ-22"}, f.err
}

func (f *fakeService) UpsertOnce(_ context.Context, in schedule.OnceEditInput) error {
	f.onceEdits = append(f.onceEdits, in)
	return f.err
}

func (f *fakeService) UpsertWeekly(_ context.Context, in schedule.WeeklyEditInput) error {
	f.weeklyEdits = append(f.weeklyEdits, in)
	return f.err
}

func (f *fakeService) DeleteOnceForDay(_ context.Context, _ string, _ time.Time) error {
	return f.err
}

func (f *fakeService) Ping(_ context.Context) error { return f.err }

func setupRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc, nil)

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.GET("/api/groups", h.GetGroups)
	r.GET("/api/schedule", h.GetSchedule)
	r.GET("/api/schedule/teacher", h.GetTeacherSchedule)
	r.GET("/api/week", h.GetWeekOverview)
	r.POST("/api/edits/once", h.UpsertOnceEdit)
	r.POST("/api/edits/weekly", h.UpsertWeeklyEdit)
	r.DELETE("/api/edits/once", h.DeleteOnceEditsForDay)
	return r
}

func doRequest(r *gin.Engine, method, url, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Code
}

func TestGetScheduleOK(t *testing.T) {
	svc := &fakeService{sessions: []schedule.ResolvedSession{
		{PairNumber: 1, Subject: "Математика", GroupName: "ИС-21"},
	}}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/schedule?group=%D0%98%D0%A1-21&date=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	var sessions []schedule.ResolvedSession
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sessions))
	require.Len(t, sessions, 1)
	assert.Equal(t, "Математика", sessions[0].Subject)
}

func TestGetScheduleEmptyIsArray(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodGet, "/api/schedule?group=X&date=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestGetScheduleInvalidDate(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodGet, "/api/schedule?group=X&date=01.02.2024", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))
}

func TestGetScheduleMissingParams(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodGet, "/api/schedule?date=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestGetTeacherScheduleInvalidDate(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodGet, "/api/schedule/teacher?teacher=X&date=zzz", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))
}

func TestGetWeekOverviewRequiresOneSubject(t *testing.T) {
	r := setupRouter(&fakeService{})

	// Оба параметра сразу.
	w := doRequest(r, http.MethodGet, "/api/week?group=X&teacher=Y&monday=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	// Ни одного.
	w = doRequest(r, http.MethodGet, "/api/week?monday=2024-01-01", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestGetWeekOverviewOK(t *testing.T) {
	svc := &fakeService{days: []schedule.DayCount{
		{Date: "2024-01-01", Count: 3},
		{Date: "2024-01-02", Count: 0},
	}}
	r := setupRouter(svc)

	w := doRequest(r, http.MethodGet, "/api/week?group=X&monday=2024-01-01", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp WeekOverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Days, 2)
	assert.Equal(t, 3, resp.Days[0].Count)
}

func TestUpsertOnceEditParsesBody(t *testing.T) {
	svc := &fakeService{}
	r := setupRouter(svc)

	body := `{"group_name":"ИС-21","date":"2024-01-01","pair_number":3,"subject":"Химия","deleted":false}`
	w := doRequest(r, http.MethodPost, "/api/edits/once", body)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, svc.onceEdits, 1)
	edit := svc.onceEdits[0]
	assert.Equal(t, "ИС-21", edit.GroupName)
	assert.Equal(t, 3, edit.PairNumber)
	require.NotNil(t, edit.Subject)
	assert.Equal(t, "Химия", *edit.Subject)
	assert.Nil(t, edit.Teacher) // не переданные поля остаются nil
}

func TestUpsertOnceEditInvalidDate(t *testing.T) {
	r := setupRouter(&fakeService{})

	body := `{"group_name":"ИС-21","date":"01.02.2024","pair_number":3}`
	w := doRequest(r, http.MethodPost, "/api/edits/once", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", errorCode(t, w))
}

func TestUpsertWeeklyEditValidationError(t *testing.T) {
	svc := &fakeService{err: schedule.ErrValidation}
	r := setupRouter(svc)

	body := `{"group_name":"ИС-21","day_of_week":8,"pair_number":1}`
	w := doRequest(r, http.MethodPost, "/api/edits/weekly", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestDeleteOnceEditsForDayMissingParams(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodDelete, "/api/edits/once?group=X", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, w))
}

func TestGetGroups(t *testing.T) {
	r := setupRouter(&fakeService{})

	w := doRequest(r, http.MethodGet, "/api/groups", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp GroupsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"ИС-21", "ПИ-22"}, resp.Groups)
}
