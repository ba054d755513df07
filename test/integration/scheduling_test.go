package integration

import (
	"encoding/json"
	"net/http"
	"testing"
)

func TestOverlappingSessionRejected(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach One", "coach1@example.com", "coach")

	createSession(t, ts, token, "Morning block", "2026-09-10", "09:00", "10:00")

	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title":        "Overlapping block",
		"scheduled_on": "2026-09-10",
		"start_time":   "09:30",
		"end_time":     "10:30",
	}, bearer(token))
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT envelope, got %+v", env.Error)
	}
}

func TestTouchingIntervalsAllowed(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Two", "coach2@example.com", "coach")

	createSession(t, ts, token, "First hour", "2026-09-11", "09:00", "10:00")
	createSession(t, ts, token, "Second hour", "2026-09-11", "10:00", "11:00")
}

func TestOneMinuteOverlapRejected(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Three", "coach3@example.com", "coach")

	createSession(t, ts, token, "First hour", "2026-09-12", "09:00", "10:00")

	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title":        "One minute early",
		"scheduled_on": "2026-09-12",
		"start_time":   "09:59",
		"end_time":     "11:00",
	}, bearer(token))
	if resp.StatusCode != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected 422 CONFLICT, got %d %+v", resp.StatusCode, env.Error)
	}
}

func TestSameIntervalDifferentDateAllowed(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Four", "coach4@example.com", "coach")

	createSession(t, ts, token, "Monday", "2026-09-14", "09:00", "10:00")
	createSession(t, ts, token, "Tuesday", "2026-09-15", "09:00", "10:00")
}

func TestUpdateExcludesOwnInterval(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Five", "coach5@example.com", "coach")

	id := createSession(t, ts, token, "Original", "2026-09-16", "09:00", "10:00")
	createSession(t, ts, token, "Neighbor", "2026-09-16", "11:00", "12:00")

	// Re-saving the same slot must not conflict with itself.
	resp, env := doJSON(t, ts.client, http.MethodPut, sessionURL(ts, id, ""), map[string]any{
		"title":        "Renamed",
		"scheduled_on": "2026-09-16",
		"start_time":   "09:00",
		"end_time":     "10:00",
	}, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on self-update, got %d %+v", resp.StatusCode, env.Error)
	}

	// Moving into the neighbor's slot must conflict.
	resp, env = doJSON(t, ts.client, http.MethodPut, sessionURL(ts, id, ""), map[string]any{
		"title":        "Moved",
		"scheduled_on": "2026-09-16",
		"start_time":   "11:30",
		"end_time":     "12:30",
	}, bearer(token))
	if resp.StatusCode != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected 422 CONFLICT on move, got %d %+v", resp.StatusCode, env.Error)
	}
}

func TestInvalidIntervalRejected(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Six", "coach6@example.com", "coach")

	resp, env := doJSON(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title":        "Backwards",
		"scheduled_on": "2026-09-17",
		"start_time":   "10:00",
		"end_time":     "09:00",
	}, bearer(token))
	if resp.StatusCode != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 422 VALIDATION_ERROR, got %d %+v", resp.StatusCode, env.Error)
	}
}

func TestDestroyThenSlotReusable(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Seven", "coach7@example.com", "coach")

	id := createSession(t, ts, token, "Ephemeral", "2026-09-18", "09:00", "10:00")

	resp, _ := doRawText(t, ts.client, http.MethodDelete, sessionURL(ts, id, ""), nil, bearer(token))
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204 on destroy, got %d", resp.StatusCode)
	}

	createSession(t, ts, token, "Replacement", "2026-09-18", "09:00", "10:00")
}

func TestPartialUpdateKeepsStoredInterval(t *testing.T) {
	ts := newTestServer(t)
	token := signup(t, ts, "Coach Nine", "coach9@example.com", "coach")

	id := createSession(t, ts, token, "Original", "2026-09-21", "09:00", "10:00")
	createSession(t, ts, token, "Neighbor", "2026-09-21", "11:00", "12:00")

	// A title-only body keeps the stored interval.
	resp, env := doJSON(t, ts.client, http.MethodPatch, sessionURL(ts, id, ""), map[string]any{
		"title": "Renamed only",
	}, bearer(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on title-only patch, got %d %+v", resp.StatusCode, env.Error)
	}

	var view struct {
		Title     string `json:"title"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("decode patched session: %v", err)
	}
	if view.Title != "Renamed only" || view.StartTime != "09:00" || view.EndTime != "10:00" {
		t.Fatalf("patched session = %+v", view)
	}

	// Patching only the times still runs the conflict scan.
	resp, env = doJSON(t, ts.client, http.MethodPatch, sessionURL(ts, id, ""), map[string]any{
		"start_time": "11:30",
		"end_time":   "12:30",
	}, bearer(token))
	if resp.StatusCode != http.StatusUnprocessableEntity || env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected 422 CONFLICT on interval patch, got %d %+v", resp.StatusCode, env.Error)
	}
}
