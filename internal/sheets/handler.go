package sheets

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=sheets_test

type syncer interface {
	Sync(ctx context.Context) (SyncResult, error)
}

type syncResponse struct {
	Message string `json:"message"`
	SyncResult
}

type Handler struct {
	syncer syncer
}

func NewHandler(syncer syncer) *Handler {
	return &Handler{
		syncer: syncer,
	}
}

// SetupSyncRoutes registers the race sync trigger; r is expected to carry
// the rate limit and sync token middlewares.
func (handler *Handler) SetupSyncRoutes(r *mux.Router) {
	r.HandleFunc("/api/sync-races", handler.HandleSyncRaces).Methods("POST", "OPTIONS").Name("sheets-sync")
}

func (handler *Handler) HandleSyncRaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.sheets.sync")
	defer span.End()

	result, err := handler.syncer.Sync(ctx)
	switch {
	case errors.Is(err, ErrMissingSpreadsheetID), errors.Is(err, ErrMissingCredentials):
		log.Errorf("races sync: %s", err)
		pkg.WriteJSONError(w, "Race spreadsheet is not configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, ErrSheetNotFound):
		log.Errorf("races sync: %s", err)
		pkg.WriteJSONError(w, "Races sheet not found", http.StatusInternalServerError)
		return
	case err != nil:
		log.Errorf("races sync: %s", err)
		pkg.WriteJSONError(w, "Failed to sync races", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, syncResponse{
		Message:    "Races synced successfully",
		SyncResult: result,
	}, http.StatusOK)
}
