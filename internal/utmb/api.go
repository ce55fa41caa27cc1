package utmb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/2beens/rundash/internal/telemetry/metrics"
	"github.com/2beens/rundash/internal/telemetry/tracing"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	cacheSize   = 1024 * 1024
	scoreKeyFmt = "score::%s.%s"
)

var ErrUpstream = errors.New("utmb api error")

// Score is passed through as the UTMB API returns it.
type Score struct {
	UtmbIndex json.RawMessage `json:"utmbIndex"`
	ItraScore json.RawMessage `json:"itraScore"`
}

type ApiParams struct {
	BaseURL        string
	RunnerID       string
	RunnerName     string
	CacheTTL       time.Duration
	HttpClient     *http.Client
	MetricsManager *metrics.Manager
}

type Api struct {
	baseURL    string
	runnerID   string
	runnerName string
	cacheTTL   time.Duration
	cache      *freecache.Cache
	httpClient *http.Client
	metrics    *metrics.Manager
}

func NewApi(params ApiParams) *Api {
	return &Api{
		baseURL:    params.BaseURL,
		runnerID:   params.RunnerID,
		runnerName: params.RunnerName,
		cacheTTL:   params.CacheTTL,
		cache:      freecache.NewCache(cacheSize),
		httpClient: params.HttpClient,
		metrics:    params.MetricsManager,
	}
}

func (a *Api) Configured() bool {
	return a.runnerID != "" && a.runnerName != ""
}

// GetScore returns the runner's UTMB index and ITRA score. Without a
// configured runner it returns nil and no error.
func (a *Api) GetScore(ctx context.Context) (_ *Score, err error) {
	if !a.Configured() {
		return nil, nil
	}

	ctx, span := tracing.GlobalTracer.Start(ctx, "utmbApi.getScore")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	cacheKey := []byte(fmt.Sprintf(scoreKeyFmt, a.runnerID, a.runnerName))
	if scoreBytes, err := a.cache.Get(cacheKey); err == nil {
		score := &Score{}
		if err := json.Unmarshal(scoreBytes, score); err == nil {
			span.SetAttributes(attribute.Bool("from-cache", true))
			a.metrics.CounterUtmbCacheHits.Inc()
			return score, nil
		}
		log.Errorf("failed to unmarshal cached utmb score: %s", err)
	}
	span.SetAttributes(attribute.Bool("from-cache", false))

	scoreUrl := fmt.Sprintf("%s/runner/%s.%s.api", a.baseURL, url.PathEscape(a.runnerID), url.PathEscape(a.runnerName))
	log.Debugf("calling utmb api: %s", scoreUrl)

	req, err := http.NewRequestWithContext(ctx, "GET", scoreUrl, nil)
	if err != nil {
		return nil, err
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read utmb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	score := &Score{}
	if err := json.Unmarshal(respBytes, score); err != nil {
		return nil, fmt.Errorf("unmarshal utmb response: %w", err)
	}

	scoreBytes, err := json.Marshal(score)
	if err != nil {
		return nil, fmt.Errorf("marshal utmb score: %w", err)
	}
	if err := a.cache.Set(cacheKey, scoreBytes, int(a.cacheTTL.Seconds())); err != nil {
		log.Errorf("failed to cache utmb score: %s", err)
	}

	return score, nil
}
