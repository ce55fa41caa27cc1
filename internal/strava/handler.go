package strava

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=strava_test

const (
	authPath        = "/auth/strava"
	authSuccessPath = "/auth-success.html"
)

type authenticator interface {
	AuthCodeURL(ctx context.Context) (string, error)
	Exchange(ctx context.Context, state, code string) error
}

type syncer interface {
	Sync(ctx context.Context) (SyncResult, error)
}

type syncResponse struct {
	Message string `json:"message"`
	SyncResult
}

type Handler struct {
	auth   authenticator
	syncer syncer
}

func NewHandler(auth authenticator, syncer syncer) *Handler {
	return &Handler{
		auth:   auth,
		syncer: syncer,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc(authPath, handler.HandleAuth).Methods("GET").Name("strava-auth")
	r.HandleFunc(authPath+"/callback", handler.HandleCallback).Methods("GET").Name("strava-callback")
}

// SetupSyncRoutes registers the sync trigger; r is expected to carry the
// rate limit and sync token middlewares.
func (handler *Handler) SetupSyncRoutes(r *mux.Router) {
	r.HandleFunc("/api/sync", handler.HandleSync).Methods("POST", "OPTIONS").Name("strava-sync")
}

func (handler *Handler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	authURL, err := handler.auth.AuthCodeURL(r.Context())
	if err != nil {
		log.Errorf("strava auth: %s", err)
		pkg.WriteJSONError(w, "Failed to start authorization", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (handler *Handler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strava.callback")
	defer span.End()

	query := r.URL.Query()
	if authErr := query.Get("error"); authErr != "" {
		log.Warnf("strava callback: authorization refused: %s", authErr)
		pkg.WriteJSONError(w, "Authorization was not granted", http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		pkg.WriteJSONError(w, "No authorization code received", http.StatusBadRequest)
		return
	}

	if err := handler.auth.Exchange(ctx, query.Get("state"), code); err != nil {
		if errors.Is(err, ErrInvalidState) {
			pkg.WriteJSONError(w, "Invalid authorization state", http.StatusBadRequest)
			return
		}
		log.Errorf("strava callback: %s", err)
		pkg.WriteJSONError(w, "Failed to exchange code for token", http.StatusInternalServerError)
		return
	}

	if _, err := handler.syncer.Sync(ctx); err != nil {
		log.Errorf("strava callback, initial sync: %s", err)
		pkg.WriteJSONError(w, "Failed to sync activities", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, authSuccessPath, http.StatusFound)
}

func (handler *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.strava.sync")
	defer span.End()

	result, err := handler.syncer.Sync(ctx)
	if errors.Is(err, ErrNotAuthenticated) {
		log.Debugf("strava sync: %s, redirecting to authorization", err)
		http.Redirect(w, r, authPath, http.StatusFound)
		return
	}
	if err != nil {
		log.Errorf("strava sync: %s", err)
		pkg.WriteJSONError(w, "Failed to sync activities", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, syncResponse{
		Message:    "Activities synced successfully",
		SyncResult: result,
	}, http.StatusOK)
}
