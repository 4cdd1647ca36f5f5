package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *mockSession) {
	t.Helper()
	relay, session := newRelayFixture([]string{"alice"}, []string{"painters"})
	srv := NewServer(relay, 0, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /notify", srv.handleNotify)
	return withMiddleware(mux, testLogger()), session
}

func postNotify(t *testing.T, handler http.Handler, evt any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/notify", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestNotifyOK(t *testing.T) {
	handler, session := newTestHandler(t)

	rec := postNotify(t, handler, Event{
		State:       "alice",
		Status:      StatusSubmitted,
		Description: "queued",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["code"])
	assert.Len(t, session.texts, 1)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNotifyDestinationNotFound(t *testing.T) {
	handler, session := newTestHandler(t)

	rec := postNotify(t, handler, Event{
		State:  "ghost",
		Status: StatusSuccess,
		Action: ActionUpscale,
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "destination not found")
	assert.Empty(t, session.texts)
}

func TestNotifyBadPayload(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/notify", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, -9, resp["code"])
}

func TestNotifyWrongMethod(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/notify", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
