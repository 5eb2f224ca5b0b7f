package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/store"
	"classclash/internal/ws"
)

const handlersPackJSON = `{
  "id": "classroom",
  "title": "Classroom Classics",
  "acts": {
    "homeroom": [
      {"id": "h1", "text": "Two plus two?", "choices": ["3", "4"], "correct": 1, "value": 100}
    ]
  }
}`

func newTestRouter(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.Port = "8080"
	cfg.Server.Host = "127.0.0.1"

	cat := catalog.New()
	require.NoError(t, cat.Load([]byte(handlersPackJSON), ""))

	log := zap.NewNop()
	st := store.NewMemoryStore(cfg, cat, log)
	sock := ws.NewServer(cfg, st, log)
	st.SetBroadcaster(sock)

	h := New(cfg, st, cat, sock, []byte(handlersPackJSON), log)
	r := SetupRouter(h, cfg, &RouterOptions{
		DisableRateLimiting:  true,
		DisableRequestLogger: true,
	})
	return r, st
}

func TestHealthEndpoints(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestListPacks(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/packs", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Packs []catalog.PackInfo `json:"packs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Packs, 1)
	assert.Equal(t, "classroom", body.Packs[0].ID)
	assert.Equal(t, 1, body.Packs[0].Questions["homeroom"])
}

func TestRoomQR(t *testing.T) {
	r, st := newTestRouter(t)

	// Unknown rooms are a 404
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/XXXXX/qr", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	room, _, err := st.CreateRoom("Ms Frizzle", "")
	require.NoError(t, err)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rooms/"+room.Code+"/qr", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestDevReloadGated(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/dev/reload-packs", nil))
	// Not routed unless enableDevReload is set
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSecurityHeadersApplied(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestMetricsDisabledByDefault(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
