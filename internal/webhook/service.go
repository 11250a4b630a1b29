// Package webhook dispatches bot callbacks to platform-specific
// handlers registered through the fx "platforms" group.
package webhook

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

// Platform handles callbacks for one messaging platform.
type Platform interface {
	// Name is the path segment the platform is addressed by.
	Name() string

	Handle(ctx context.Context, header http.Header, body []byte) (web.WebhookResult, error)
}

// PlatformResult provides a Platform to the "platforms" group.
type PlatformResult struct {
	fx.Out

	Platform Platform `group:"platforms"`
}

func AsPlatform(platform Platform) PlatformResult {
	return PlatformResult{Platform: platform}
}

type ServiceParams struct {
	fx.In

	Platforms []Platform `group:"platforms"`

	Log *zap.Logger
}

// Service routes webhook payloads to the platform named in the path.
type Service struct {
	platforms map[string]Platform
	log       *zap.Logger
}

func NewService(params ServiceParams) *Service {
	platforms := make(map[string]Platform, len(params.Platforms))
	for _, platform := range params.Platforms {
		platforms[platform.Name()] = platform
		params.Log.Info("webhook platform registered", zap.String("platform", platform.Name()))
	}

	return &Service{
		platforms: platforms,
		log:       params.Log.Named("webhook"),
	}
}

func (s *Service) HandleWebhook(ctx context.Context, platform string, header http.Header, body []byte) (web.WebhookResult, error) {
	handler, ok := s.platforms[platform]
	if !ok {
		return web.WebhookResult{}, fmt.Errorf("unsupported webhook platform %q", platform)
	}

	s.log.Debug("webhook received",
		zap.String("platform", platform),
		zap.Int("bytes", len(body)),
	)

	return handler.Handle(ctx, header, body)
}
