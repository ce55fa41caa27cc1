package training

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var errInvalidYear = errors.New("invalid year")

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/api/training/stats", handler.HandleStats).Methods("GET", "OPTIONS").Name("training-stats")
	r.HandleFunc("/api/training/yearly", handler.HandleYearly).Methods("GET", "OPTIONS").Name("training-yearly")
	r.HandleFunc("/api/training/weekly", handler.HandleWeekly).Methods("GET", "OPTIONS").Name("training-weekly")
	r.HandleFunc("/api/training/monthly", handler.HandleMonthly).Methods("GET", "OPTIONS").Name("training-monthly")
}

func (handler *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.stats")
	defer span.End()

	year, err := yearParam(r)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := handler.analyzer.TrainingStats(ctx, year)
	if err != nil {
		log.Errorf("failed to fetch training stats: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch training statistics", http.StatusInternalServerError)
		return
	}

	writeStats(w, stats, "Failed to fetch training statistics")
}

func (handler *Handler) HandleYearly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.yearly")
	defer span.End()

	stats, err := handler.analyzer.YearlyStats(ctx)
	if err != nil {
		log.Errorf("failed to fetch yearly stats: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch yearly statistics", http.StatusInternalServerError)
		return
	}

	writeStats(w, stats, "Failed to fetch yearly statistics")
}

func (handler *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.weekly")
	defer span.End()

	year, err := yearParam(r)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := handler.analyzer.WeeklyStats(ctx, year)
	if err != nil {
		log.Errorf("failed to fetch weekly stats: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch weekly statistics", http.StatusInternalServerError)
		return
	}

	writeStats(w, stats, "Failed to fetch weekly statistics")
}

func (handler *Handler) HandleMonthly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.training.monthly")
	defer span.End()

	year, err := yearParam(r)
	if err != nil {
		pkg.WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	stats, err := handler.analyzer.MonthlyStats(ctx, year)
	if err != nil {
		log.Errorf("failed to fetch monthly stats: %s", err)
		pkg.WriteJSONError(w, "Failed to fetch monthly statistics", http.StatusInternalServerError)
		return
	}

	writeStats(w, stats, "Failed to fetch monthly statistics")
}

// yearParam returns nil when the year query param is absent.
func yearParam(r *http.Request) (*int, error) {
	yearStr := r.URL.Query().Get("year")
	if yearStr == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 1 || year > 9999 {
		return nil, errInvalidYear
	}
	return &year, nil
}

func writeStats(w http.ResponseWriter, stats any, failMsg string) {
	statsJson, err := json.Marshal(stats)
	if err != nil {
		log.Errorf("failed to marshal stats: %s", err)
		pkg.WriteJSONError(w, failMsg, http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, statsJson)
}
