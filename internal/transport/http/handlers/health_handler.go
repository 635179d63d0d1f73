package handlers

import (
	"context"
	"net/http"
	"time"

	httperrors "github.com/Krunal123456/Bari/internal/transport/http/errors"
)

// Probe reports whether one backing dependency is reachable.
type Probe func(ctx context.Context) error

type HealthHandler struct {
	probes map[string]Probe
}

func NewHealthHandler(probes map[string]Probe) *HealthHandler {
	return &HealthHandler{probes: probes}
}

type healthResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Handle always answers 200; a degraded dependency is reported, not fatal.
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{Status: "ok"}
	if len(h.probes) > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		res.Dependencies = make(map[string]string, len(h.probes))
		for name, probe := range h.probes {
			if probe == nil {
				res.Dependencies[name] = "disabled"
				res.Status = "degraded"
				continue
			}
			if err := probe(ctx); err != nil {
				res.Dependencies[name] = "down"
				res.Status = "degraded"
				continue
			}
			res.Dependencies[name] = "up"
		}
	}
	httperrors.Write(w, http.StatusOK, res)
}
