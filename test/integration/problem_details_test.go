package integration

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestErrorDefaultsToEnvelope(t *testing.T) {
	ts := newTestServer(t)

	resp, env := doJSON(t, ts.client, http.MethodGet, ts.baseURL+"/api/v1/users/me", nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json, got %q", got)
	}
	if env.Error == nil || env.Error.Code != "UNAUTHORIZED" {
		t.Fatalf("expected UNAUTHORIZED envelope, got %+v", env.Error)
	}
}

func TestErrorAsProblemJSONWhenAccepted(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doRawText(t, ts.client, http.MethodGet, ts.baseURL+"/api/v1/users/me", nil, map[string]string{
		"Accept": "application/problem+json",
	})
	assertProblemDetails(t, resp, body, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", "/api/v1/users/me")
}

func TestProblemDetailsAcrossStatusCodes(t *testing.T) {
	ts := newTestServer(t)
	coach := signup(t, ts, "Problem Coach", "problem-coach@example.com", "coach")
	client := signup(t, ts, "Problem Client", "problem-client@example.com", "client")
	headers := func(token string) map[string]string {
		h := bearer(token)
		h["Accept"] = "application/problem+json"
		return h
	}

	// 400
	resp, body := doRawText(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/login", "oops", map[string]string{
		"Accept": "application/problem+json",
	})
	assertProblemDetails(t, resp, body, http.StatusBadRequest, "BAD_REQUEST", "Bad Request", "/api/v1/login")

	// 403
	resp, body = doRawText(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title": "No", "scheduled_on": "2026-09-28", "start_time": "09:00", "end_time": "10:00",
	}, headers(client))
	assertProblemDetails(t, resp, body, http.StatusForbidden, "FORBIDDEN", "Forbidden", "/api/v1/sessions")

	// 404
	resp, body = doRawText(t, ts.client, http.MethodGet, sessionURL(ts, 424242, ""), nil, headers(coach))
	assertProblemDetails(t, resp, body, http.StatusNotFound, "NOT_FOUND", "Not Found", "/api/v1/sessions/424242")

	// 422
	createSession(t, ts, coach, "Anchor", "2026-09-28", "09:00", "10:00")
	resp, body = doRawText(t, ts.client, http.MethodPost, ts.baseURL+"/api/v1/sessions", map[string]any{
		"title": "Clash", "scheduled_on": "2026-09-28", "start_time": "09:30", "end_time": "10:30",
	}, headers(coach))
	assertProblemDetails(t, resp, body, http.StatusUnprocessableEntity, "CONFLICT", "Conflict", "/api/v1/sessions")
}

func assertProblemDetails(t *testing.T, resp *http.Response, raw string, wantStatus int, wantCode, wantTitle, wantInstance string) {
	t.Helper()
	if resp.StatusCode != wantStatus {
		t.Fatalf("expected status %d, got %d body=%q", wantStatus, resp.StatusCode, raw)
	}
	if got := resp.Header.Get("Content-Type"); got != "application/problem+json" {
		t.Fatalf("expected application/problem+json, got %q body=%q", got, raw)
	}
	var p struct {
		Type      string `json:"type"`
		Title     string `json:"title"`
		Status    int    `json:"status"`
		Detail    string `json:"detail"`
		Instance  string `json:"instance"`
		Code      string `json:"code"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode problem details: %v body=%q", err, raw)
	}
	if p.Status != wantStatus || p.Code != wantCode || p.Title != wantTitle || p.Instance != wantInstance {
		t.Fatalf("unexpected problem fields: %+v", p)
	}
	if p.Type != "urn:problem:mini-coaching:"+strings.ToLower(strings.ReplaceAll(wantCode, "_", "-")) {
		t.Fatalf("unexpected type field: %q", p.Type)
	}
	if p.RequestID == "" {
		t.Fatal("expected request_id in problem details")
	}
	if p.Detail == "" {
		t.Fatal("expected detail in problem details")
	}
}
