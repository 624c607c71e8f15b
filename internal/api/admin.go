package api

import (
	"net/http"

	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type AdminHandler struct {
	store    store.Store
	snapshot *CountrySnapshot
}

func NewAdminHandler(s store.Store, snap *CountrySnapshot) *AdminHandler {
	return &AdminHandler{store: s, snapshot: snap}
}

// Stats handles GET /api/v1/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// FlushCache handles POST /api/v1/cache/flush
func (h *AdminHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	h.snapshot.Invalidate()
	writeJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}
