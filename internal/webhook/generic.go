package webhook

import (
	"context"
	"net/http"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Alvin-MXK/daily-stock-analysis/util"
	"github.com/Alvin-MXK/daily-stock-analysis/web"
)

type GenericParams struct {
	fx.In

	Log *zap.Logger
}

// genericPlatform accepts any JSON object and acknowledges it. Useful
// for wiring up new integrations before a dedicated platform exists.
type genericPlatform struct {
	schema *gojsonschema.Schema
	log    *zap.Logger
}

func NewGenericPlatform(params GenericParams) PlatformResult {
	return AsPlatform(&genericPlatform{
		schema: util.Must(gojsonschema.NewSchema(
			gojsonschema.NewStringLoader(`{"type": "object"}`),
		)),
		log: params.Log.Named("generic-webhook"),
	})
}

func (p *genericPlatform) Name() string {
	return "generic"
}

func (p *genericPlatform) Handle(_ context.Context, _ http.Header, body []byte) (web.WebhookResult, error) {
	validation, err := p.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil || !validation.Valid() {
		return web.WebhookResult{
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"error": "payload must be a JSON object"},
		}, nil
	}

	p.log.Debug("generic webhook acknowledged", zap.Int("bytes", len(body)))

	return web.WebhookResult{
		StatusCode: http.StatusOK,
		Body:       map[string]any{"received": true},
	}, nil
}
