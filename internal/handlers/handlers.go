package handlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/standard"
	"go.uber.org/zap"

	"classclash/internal/catalog"
	"classclash/internal/config"
	"classclash/internal/store"
	"classclash/internal/ws"
)

// Handler carries the dependencies for the HTTP side surface. Gameplay
// itself runs over the websocket; these endpoints serve discovery,
// health and operator tooling.
type Handler struct {
	cfg     *config.ServerConfig
	store   *store.MemoryStore
	catalog *catalog.Catalog
	socket  *ws.Server
	log     *zap.Logger

	embeddedPack []byte
}

// New creates the HTTP handler set
func New(cfg *config.ServerConfig, st *store.MemoryStore, cat *catalog.Catalog, sock *ws.Server, embeddedPack []byte, log *zap.Logger) *Handler {
	return &Handler{
		cfg:          cfg,
		store:        st,
		catalog:      cat,
		socket:       sock,
		log:          log.With(zap.String("component", "http")),
		embeddedPack: embeddedPack,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WebSocket upgrades the connection and hands it to the socket server
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	h.socket.HandleWS(w, r)
}

// ListPacks returns the loaded question packs
func (h *Handler) ListPacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"packs": h.catalog.List()})
}

// LanIP reports a private IPv4 address players on the same network can
// reach, so the host screen can show a joinable URL.
func (h *Handler) LanIP(w http.ResponseWriter, r *http.Request) {
	ip, err := privateIPv4()
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no LAN address found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"ip":   ip,
		"port": h.cfg.Server.Port,
	})
}

func privateIPv4() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		ip := ipNet.IP.To4()
		if ip != nil && ip.IsPrivate() {
			return ip.String(), nil
		}
	}
	return "", fmt.Errorf("no private IPv4 interface")
}

// RoomQR serves a PNG QR code encoding the join URL for a room
func (h *Handler) RoomQR(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	if _, err := h.store.GetRoom(code); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "room not found"})
		return
	}

	joinURL := fmt.Sprintf("http://%s/join/%s", r.Host, code)
	if ip, err := privateIPv4(); err == nil {
		joinURL = fmt.Sprintf("http://%s:%s/join/%s", ip, h.cfg.Server.Port, code)
	}

	png, err := generateQRCode(joinURL)
	if err != nil {
		h.log.Error("qr generation failed", zap.String("room", code), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "QR generation failed"})
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "max-age=300")
	w.Write(png)
}

// generateQRCode renders the URL as a PNG with medium error correction
func generateQRCode(url string) ([]byte, error) {
	qrc, err := qrcode.NewWith(url,
		qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium),
		qrcode.WithEncodingMode(qrcode.EncModeByte),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}

	// The writer wants a file; render to a temp path and read it back.
	tmpFile := fmt.Sprintf("%s/qr_%d.png", os.TempDir(), time.Now().UnixNano())
	wr, err := standard.New(tmpFile,
		standard.WithBuiltinImageEncoder(standard.PNG_FORMAT),
		standard.WithQRWidth(8),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}
	if err := qrc.Save(wr); err != nil {
		return nil, fmt.Errorf("failed to save QR code: %w", err)
	}
	defer os.Remove(tmpFile)

	data, err := os.ReadFile(tmpFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read QR code file: %w", err)
	}
	return data, nil
}

// ReloadPacks re-reads the packs directory. Only routed when dev reload
// is enabled; live rooms keep their current question sets.
func (h *Handler) ReloadPacks(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Load(h.embeddedPack, h.cfg.Server.PacksDir); err != nil {
		h.log.Error("pack reload failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	h.log.Info("packs reloaded", zap.Int("packs", h.catalog.Len()))
	writeJSON(w, http.StatusOK, map[string]any{"packs": h.catalog.List()})
}

// HealthLive always succeeds while the process is up
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady succeeds once at least one pack is loaded
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if h.catalog.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "no packs loaded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"rooms":  h.store.RoomCount(),
	})
}
