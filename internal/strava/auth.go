package strava

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"
)

const (
	scopeActivityReadAll = "activity:read_all"
	oauthStateTTL        = 10 * time.Minute
	oauthStateLength     = 32
)

type AuthenticatorParams struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	RedirectURL  string
	// RefreshAhead is how long before expiry a token is already refreshed.
	RefreshAhead time.Duration
	TokenStore   TokenStore
	HttpClient   *http.Client
}

// Authenticator runs the Strava OAuth flow and hands out a valid access
// token, refreshing it shortly before it expires.
type Authenticator struct {
	conf         *oauth2.Config
	store        TokenStore
	refreshAhead time.Duration
	httpClient   *http.Client
	now          func() time.Time
}

func NewAuthenticator(params AuthenticatorParams) *Authenticator {
	httpClient := params.HttpClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Authenticator{
		conf: &oauth2.Config{
			ClientID:     params.ClientID,
			ClientSecret: params.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:   params.AuthURL,
				TokenURL:  params.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
			RedirectURL: params.RedirectURL,
			Scopes:      []string{scopeActivityReadAll},
		},
		store:        params.TokenStore,
		refreshAhead: params.RefreshAhead,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// AuthCodeURL creates and remembers a fresh state, and returns the Strava
// authorization page URL to redirect the athlete to.
func (a *Authenticator) AuthCodeURL(ctx context.Context) (string, error) {
	state, err := pkg.GenerateRandomString(oauthStateLength)
	if err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	if err := a.store.SaveState(ctx, state, oauthStateTTL); err != nil {
		return "", err
	}
	return a.conf.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", "force")), nil
}

// Exchange checks the state, swaps the code for a token and persists it.
func (a *Authenticator) Exchange(ctx context.Context, state, code string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.auth.exchange")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := a.store.ConsumeState(ctx, state); err != nil {
		return err
	}

	token, err := a.conf.Exchange(a.clientCtx(ctx), code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}
	if err := a.store.Save(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	log.Infof("strava authorization done, token valid until %s", token.Expiry.Format(time.RFC3339))
	return nil
}

// Token returns a usable access token, or ErrNotAuthenticated if the
// authorization flow never completed.
func (a *Authenticator) Token(ctx context.Context) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "strava.auth.token")
	defer func() {
		if errors.Is(err, ErrNotAuthenticated) {
			span.End()
			return
		}
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := a.store.Load(ctx)
	if err != nil {
		return "", err
	}

	if !a.needsRefresh(token) {
		span.SetAttributes(attribute.Bool("token.refreshed", false))
		return token.AccessToken, nil
	}

	span.SetAttributes(attribute.Bool("token.refreshed", true))
	if token.RefreshToken == "" {
		return "", fmt.Errorf("%w: token expired and no refresh token", ErrNotAuthenticated)
	}

	refreshed, err := a.conf.TokenSource(a.clientCtx(ctx), &oauth2.Token{
		RefreshToken: token.RefreshToken,
	}).Token()
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}

	if err := a.store.Save(ctx, refreshed); err != nil {
		return "", fmt.Errorf("save refreshed token: %w", err)
	}

	log.Debugf("strava token refreshed, valid until %s", refreshed.Expiry.Format(time.RFC3339))
	return refreshed.AccessToken, nil
}

// needsRefresh is true once now is within refreshAhead of the expiry.
// A token without expiry is taken as valid.
func (a *Authenticator) needsRefresh(token *oauth2.Token) bool {
	if token.Expiry.IsZero() {
		return false
	}
	return !a.now().Before(token.Expiry.Add(-a.refreshAhead))
}

func (a *Authenticator) clientCtx(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}
