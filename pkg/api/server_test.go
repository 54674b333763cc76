package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/timetabler/pkg/core/allocator/criteria"
	"github.com/jakechorley/timetabler/pkg/core/grid"
	"github.com/jakechorley/timetabler/pkg/core/model"
	"github.com/jakechorley/timetabler/pkg/core/services"
	"github.com/jakechorley/timetabler/pkg/db"
	"github.com/jakechorley/timetabler/pkg/export"
)

const cycle = "2025-A"

func testApp(t *testing.T) *fiber.App {
	t.Helper()

	catalogue := &model.Snapshot{
		Teachers: []model.Teacher{
			{ID: "t1", Name: "Ana", Relation: model.Tenured, DefinitiveHours: 4, PreferredStart: "07:00", Shift: model.Morning, Active: true},
			{ID: "t2", Name: "Luis", Relation: model.Interim, DefinitiveHours: 2, Shift: model.Morning, Active: true},
		},
		Subjects: []model.Subject{{ID: "s1", Name: "Algebra", WeeklyHours: 2, Semester: 1}},
		Groups: []model.Group{
			{ID: "g1", Number: "101", Cycle: cycle, Shift: model.Morning, Enrollment: 30},
			{ID: "g2", Number: "102", Cycle: cycle, Shift: model.Morning, Enrollment: 25},
		},
		Rooms: []model.Room{{ID: "r1", Number: "A1", Capacity: 40, Type: model.GeneralRoom, Active: true}},
		Assignments: []model.TeachingAssignment{
			{ID: "a1", TeacherID: "t1", SubjectID: "s1", GroupID: "g1"},
			{ID: "a2", TeacherID: "t2", SubjectID: "s1", GroupID: "g2"},
		},
	}

	g, err := grid.New(grid.Config{
		Days:        []time.Weekday{time.Monday, time.Tuesday},
		SlotMinutes: 50,
		Blocks:      []grid.Block{{Shift: model.Morning, Start: "07:00", Slots: 4}},
	})
	require.NoError(t, err)

	engine, err := services.NewEngine(db.NewMemoryDB(catalogue), services.Settings{
		Grid:              g,
		Criteria:          criteria.Settings{MaxConsecutiveHours: 4, Weights: criteria.DefaultWeights},
		MaxBacktrackDepth: 3,
		ScoringWorkers:    2,
	}, zap.NewNop())
	require.NoError(t, err)

	return New(engine, zap.NewNop())
}

type testResponse struct {
	Code    int             `json:"code"`
	Status  string          `json:"status"`
	Reason  string          `json:"reason"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func call(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, testResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded testResponse
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func entryBody(teacherID, groupID string) map[string]interface{} {
	return map[string]interface{}{
		"ciclo_escolar": cycle,
		"day":           "LUNES",
		"start":         "07:00",
		"end":           "07:50",
		"teacherId":     teacherID,
		"subjectId":     "s1",
		"groupId":       groupID,
		"roomId":        "r1",
	}
}

func TestHealth(t *testing.T) {
	resp, err := testApp(t).Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGenerate(t *testing.T) {
	app := testApp(t)

	resp, body := call(t, app, http.MethodPost, "/api/generador/generar", map[string]interface{}{"ciclo_escolar": cycle})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "success", body.Status)

	var result services.GenerateResult
	require.NoError(t, json.Unmarshal(body.Data, &result))
	assert.Equal(t, 4, result.PlacedCount)
	assert.Len(t, result.Entries, 4)
	assert.Empty(t, result.Unplaceable)
	assert.True(t, result.Committed)

	resp, body = call(t, app, http.MethodGet, "/api/horarios?ciclo_escolar="+cycle, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var entries []model.ScheduleEntry
	require.NoError(t, json.Unmarshal(body.Data, &entries))
	assert.Len(t, entries, 4)
}

func TestGenerate_Errors(t *testing.T) {
	app := testApp(t)

	resp, body := call(t, app, http.MethodPost, "/api/generador/generar", map[string]interface{}{"ciclo_escolar": "2031-B"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "NoEligibleAssignmentsError", body.Reason)

	resp, body = call(t, app, http.MethodPost, "/api/generador/generar", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "ValidationError", body.Reason)
}

func TestPreviewAndStatistics(t *testing.T) {
	app := testApp(t)

	resp, body := call(t, app, http.MethodGet, "/api/generador/vista-previa?ciclo_escolar="+cycle, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview services.PreviewResult
	require.NoError(t, json.Unmarshal(body.Data, &preview))
	assert.True(t, preview.CanGenerate)
	assert.Equal(t, 2, preview.GroupsInCycle)

	resp, body = call(t, app, http.MethodGet, "/api/generador/estadisticas?ciclo_escolar="+cycle, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats services.Statistics
	require.NoError(t, json.Unmarshal(body.Data, &stats))
	assert.Equal(t, 0, stats.TotalEntries)
	assert.Equal(t, 4, stats.RequiredHours)
}

func TestManualEntries(t *testing.T) {
	app := testApp(t)

	resp, body := call(t, app, http.MethodPost, "/api/horarios", entryBody("t1", "g1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created model.ScheduleEntry
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.Manual, created.Origin)

	resp, body = call(t, app, http.MethodPost, "/api/horarios/validar", entryBody("t2", "g2"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var verdict services.EntryValidationResult
	require.NoError(t, json.Unmarshal(body.Data, &verdict))
	assert.False(t, verdict.Valid)

	resp, body = call(t, app, http.MethodPost, "/api/horarios", entryBody("t2", "g2"))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EntryRejectedError", body.Reason)
	assert.NotEmpty(t, body.Errors)

	resp, _ = call(t, app, http.MethodDelete, "/api/horarios/"+created.ID+"?ciclo_escolar="+cycle, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = call(t, app, http.MethodDelete, "/api/horarios/"+created.ID+"?ciclo_escolar="+cycle, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReplaceEntry(t *testing.T) {
	app := testApp(t)

	resp, body := call(t, app, http.MethodPost, "/api/horarios", entryBody("t1", "g1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var first model.ScheduleEntry
	require.NoError(t, json.Unmarshal(body.Data, &first))

	second := entryBody("t2", "g2")
	second["day"] = "MARTES"
	resp, body = call(t, app, http.MethodPost, "/api/horarios", second)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	moved := entryBody("t1", "g1")
	moved["start"], moved["end"] = "07:50", "08:40"
	resp, body = call(t, app, http.MethodPut, "/api/horarios/"+first.ID, moved)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var replaced model.ScheduleEntry
	require.NoError(t, json.Unmarshal(body.Data, &replaced))
	assert.Equal(t, first.ID, replaced.ID)
	assert.Equal(t, 1, replaced.Slot)

	// Tuesday 07:00 belongs to the second entry
	clash := entryBody("t1", "g1")
	clash["day"] = "MARTES"
	resp, body = call(t, app, http.MethodPut, "/api/horarios/"+first.ID, clash)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EntryRejectedError", body.Reason)

	resp, _ = call(t, app, http.MethodPut, "/api/horarios/missing", entryBody("t1", "g1"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInsertEntry_MissingFields(t *testing.T) {
	app := testApp(t)

	body := entryBody("t1", "g1")
	delete(body, "teacherId")
	resp, decoded := call(t, app, http.MethodPost, "/api/horarios", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var problems []model.FieldProblem
	require.NoError(t, json.Unmarshal(decoded.Errors, &problems))
	require.Len(t, problems, 1)
	assert.Equal(t, "teacherId", problems[0].Field)
}

func TestExport(t *testing.T) {
	app := testApp(t)

	resp, _ := call(t, app, http.MethodPost, "/api/generador/generar", map[string]interface{}{"ciclo_escolar": cycle})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := call(t, app, http.MethodGet, "/api/generador/exportar?ciclo_escolar="+cycle+"&tipo=grupo", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var view struct {
		GroupBy  string `json:"groupBy"`
		Sections []struct {
			Key   string `json:"key"`
			Hours int    `json:"hours"`
		} `json:"sections"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &view))
	assert.Equal(t, "group", view.GroupBy)
	require.Len(t, view.Sections, 2)
	assert.Equal(t, 2, view.Sections[0].Hours)

	resp, _ = call(t, app, http.MethodGet, "/api/generador/exportar?ciclo_escolar="+cycle+"&tipo=aula&formato=xlsx", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, export.XLSX.ContentType(), resp.Header.Get("Content-Type"))

	resp, _ = call(t, app, http.MethodGet, "/api/generador/exportar?ciclo_escolar="+cycle+"&tipo=materia", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = call(t, app, http.MethodDelete, "/api/generador/limpiar", map[string]interface{}{"ciclo_escolar": cycle})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared services.ClearResult
	require.NoError(t, json.Unmarshal(body.Data, &cleared))
	assert.Equal(t, 4, cleared.RemovedCount)
}

func TestSchedulesAndRoomAvailability(t *testing.T) {
	app := testApp(t)

	resp, _ := call(t, app, http.MethodPost, "/api/horarios", entryBody("t1", "g1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := call(t, app, http.MethodGet, "/api/docentes/t1/horario?ciclo_escolar="+cycle, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", body.Message)

	resp, _ = call(t, app, http.MethodGet, "/api/grupos/g9/horario?ciclo_escolar="+cycle, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = call(t, app, http.MethodPost, "/api/aulas/r1/verificar-disponibilidad", map[string]interface{}{
		"ciclo_escolar": cycle, "day": "lunes", "start": "07:00", "end": "07:50",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var availability services.RoomAvailability
	require.NoError(t, json.Unmarshal(body.Data, &availability))
	assert.False(t, availability.Available)

	resp, body = call(t, app, http.MethodPost, "/api/aulas/r1/verificar-disponibilidad", map[string]interface{}{
		"ciclo_escolar": cycle, "day": "martes", "start": "07:00", "end": "07:50",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body.Data, &availability))
	assert.True(t, availability.Available)
}
