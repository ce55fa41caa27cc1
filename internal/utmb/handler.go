package utmb

import (
	"context"
	"net/http"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type scoreGetter interface {
	GetScore(ctx context.Context) (*Score, error)
}

type Handler struct {
	api scoreGetter
}

func NewHandler(api scoreGetter) *Handler {
	return &Handler{
		api: api,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/utmb-score", handler.HandleScore).Methods("GET", "OPTIONS").Name("utmb-score")
}

// HandleScore answers null when the score is not configured or the
// UTMB API is not reachable.
func (handler *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.utmb.score")
	defer span.End()

	score, err := handler.api.GetScore(ctx)
	if err != nil {
		log.Errorf("get utmb score: %s", err)
		score = nil
	}

	pkg.WriteJSON(w, score, http.StatusOK)
}
