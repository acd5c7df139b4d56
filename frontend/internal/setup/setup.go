package setup

import (
	"context"
	"fmt"
	"os"

	"github.com/prolearn/prolearn/frontend/internal/apiclient"
	"github.com/prolearn/prolearn/frontend/internal/compose"
	"github.com/prolearn/prolearn/frontend/internal/handler"
	"github.com/prolearn/prolearn/frontend/internal/markdown"
	"github.com/prolearn/prolearn/shared/config"
	"github.com/prolearn/prolearn/shared/jwt"
	"github.com/prolearn/prolearn/shared/logger"
	mw "github.com/prolearn/prolearn/shared/middleware"
	"github.com/prolearn/prolearn/shared/middleware/ratelimiter"
)

type Dependencies struct {
	Handler       *handler.Handler
	Auth          *mw.Auth
	Public        config.Public
	APIClient     *apiclient.APIClient
	Editors       *compose.Registry
	Previews      *compose.PreviewStore
	UploadLimiter *ratelimiter.UserRateLimiter
	CancelFunc    context.CancelFunc
}

// jwtSecret prefers the private config and falls back to JWT_SECRET.
func jwtSecret(cfg *config.Config) (string, error) {
	if key := cfg.JwtKey(); key != "" {
		return key, nil
	}
	if key := os.Getenv("JWT_SECRET"); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("jwt key is required: set jwt_key in private.yaml or JWT_SECRET")
}

// NewAPIClient builds a backend client that authenticates as the configured demo user.
func NewAPIClient(cfg *config.Config) (*apiclient.APIClient, jwt.JwtService, error) {
	secret, err := jwtSecret(cfg)
	if err != nil {
		return nil, nil, err
	}
	jwtSvc := jwt.New(secret, cfg.JwtTTL())
	tokens := jwt.NewUserTokenSource(jwtSvc, cfg.Public.DemoUser, cfg.JwtTTL())
	return apiclient.New(cfg.Public.APIBaseURL, tokens), jwtSvc, nil
}

// EditorConfig wires editors to the backend client and the preview store.
func EditorConfig(cfg *config.Config, api *apiclient.APIClient, previews *compose.PreviewStore) compose.Config {
	return compose.Config{
		Limits:   cfg.Public.Limits(),
		Types:    cfg.Public.AllowedTypes(),
		Previews: previews,
		Prober:   compose.MP4Prober{},
		API:      api,
	}
}

func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	ctx, cancel := context.WithCancel(context.Background())

	apiClient, jwtSvc, err := NewAPIClient(cfg)
	if err != nil {
		cancel()
		return nil, err
	}

	previews := compose.NewPreviewStore()
	editors := compose.NewRegistry(EditorConfig(cfg, apiClient, previews), cfg.Public.EditorIdleTTL)
	editors.StartBackgroundCleanup(ctx, cfg.Public.EditorSweepInterval)

	h := handler.New(cfg.Public, markdown.New(), apiClient, editors, previews)

	logger.Log.Info("dependencies ready",
		"api_base_url", apiClient.BaseURL,
		"editor_idle_ttl", cfg.Public.EditorIdleTTL,
		"uploads_per_minute", cfg.Public.UploadsPerMinute)

	return &Dependencies{
		Handler:       h,
		Auth:          mw.NewAuth(jwtSvc, cfg.Public.DemoUser),
		Public:        cfg.Public,
		APIClient:     apiClient,
		Editors:       editors,
		Previews:      previews,
		UploadLimiter: ratelimiter.PerMinute(int(cfg.Public.UploadsPerMinute), cfg.Public.EditorIdleTTL),
		CancelFunc:    cancel,
	}, nil
}

// Cleanup stops background work, closes every open editor and then the preview store.
func (d *Dependencies) Cleanup() {
	d.CancelFunc()
	d.Editors.Shutdown()
	d.Previews.Close()
	d.UploadLimiter.Stop()
}
