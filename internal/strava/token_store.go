package strava

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/rundash/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"golang.org/x/oauth2"
)

const (
	tokenKey          = "strava::token"
	oauthStateKeyPref = "strava::oauth-state::"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated with strava")
	ErrInvalidState     = errors.New("invalid oauth state")
)

// TokenStore keeps the single athlete's OAuth token, and the short-lived
// state values of pending authorizations.
type TokenStore interface {
	// Load returns ErrNotAuthenticated when no token was saved yet.
	Load(ctx context.Context) (*oauth2.Token, error)
	Save(ctx context.Context, token *oauth2.Token) error
	Clear(ctx context.Context) error
	SaveState(ctx context.Context, state string, ttl time.Duration) error
	// ConsumeState deletes the state, ErrInvalidState if it was unknown or expired.
	ConsumeState(ctx context.Context, state string) error
}

type storedToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresAt    int64  `json:"expires_at"`
}

type RedisTokenStore struct {
	redisClient *redis.Client
}

func NewRedisTokenStore(redisClient *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		redisClient: redisClient,
	}
}

func (s *RedisTokenStore) Load(ctx context.Context) (_ *oauth2.Token, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.strava.loadToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tokenJson, err := s.redisClient.Get(ctx, tokenKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	var stored storedToken
	if err := json.Unmarshal([]byte(tokenJson), &stored); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}
	if stored.AccessToken == "" {
		return nil, ErrNotAuthenticated
	}

	token := &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
	}
	if stored.ExpiresAt > 0 {
		token.Expiry = time.Unix(stored.ExpiresAt, 0)
	}
	return token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token *oauth2.Token) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redis.strava.saveToken")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tokenJson, err := marshalToken(token)
	if err != nil {
		return err
	}
	if err := s.redisClient.Set(ctx, tokenKey, tokenJson, 0).Err(); err != nil {
		return fmt.Errorf("set token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.redisClient.Del(ctx, tokenKey).Err(); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) SaveState(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.redisClient.Set(ctx, oauthStateKeyPref+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("set oauth state: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) ConsumeState(ctx context.Context, state string) error {
	if state == "" {
		return ErrInvalidState
	}
	deleted, err := s.redisClient.Del(ctx, oauthStateKeyPref+state).Result()
	if err != nil {
		return fmt.Errorf("delete oauth state: %w", err)
	}
	if deleted == 0 {
		return ErrInvalidState
	}
	return nil
}

func marshalToken(token *oauth2.Token) (string, error) {
	if token == nil || token.AccessToken == "" {
		return "", errors.New("empty token")
	}
	stored := storedToken{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if !token.Expiry.IsZero() {
		stored.ExpiresAt = token.Expiry.Unix()
	}
	tokenJson, err := json.Marshal(stored)
	if err != nil {
		return "", fmt.Errorf("marshal token: %w", err)
	}
	return string(tokenJson), nil
}
