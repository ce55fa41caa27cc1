package activities

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=activities_mocks_test.go -package=activities_test

type racesRepo interface {
	ListRacesWithActivities(ctx context.Context) ([]RaceWithActivity, error)
	GetFeaturedRace(ctx context.Context) (*RaceWithActivity, error)
}

type Handler struct {
	repo racesRepo
}

func NewHandler(repo racesRepo) *Handler {
	return &Handler{
		repo: repo,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/races", handler.HandleListRaces).Methods("GET", "OPTIONS").Name("list-races")
	r.HandleFunc("/api/featured-race", handler.HandleFeaturedRace).Methods("GET", "OPTIONS").Name("featured-race")
}

func (handler *Handler) HandleListRaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.races")
	defer span.End()

	races, err := handler.repo.ListRacesWithActivities(ctx)
	if err != nil {
		log.Errorf("failed to fetch races from database: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch races from database", http.StatusInternalServerError)
		return
	}

	if races == nil {
		races = []RaceWithActivity{}
	}

	racesJson, err := json.Marshal(races)
	if err != nil {
		log.Errorf("failed to marshal races: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch races from database", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, racesJson)
}

func (handler *Handler) HandleFeaturedRace(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.featuredRace")
	defer span.End()

	featured, err := handler.repo.GetFeaturedRace(ctx)
	if errors.Is(err, ErrNotFound) {
		pkg.WriteJSONResponseOK(w, "null")
		return
	}
	if err != nil {
		log.Errorf("failed to fetch featured race: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch featured race", http.StatusInternalServerError)
		return
	}

	featuredJson, err := json.Marshal(featured)
	if err != nil {
		log.Errorf("failed to marshal featured race: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch featured race", http.StatusInternalServerError)
		return
	}

	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, featuredJson)
}
