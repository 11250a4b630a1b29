package web

import (
	"context"
	"net/http"
)

// WebhookResult is what the external webhook service hands back: an
// arbitrary JSON-serializable body and the status code to relay.
type WebhookResult struct {
	StatusCode int
	Body       any
}

// WebhookService handles bot callbacks for the platform segment
// parsed from the reserved /bot/ path prefix. It receives the raw
// body bytes and the request headers untouched; form decoding is
// never attempted on webhook paths.
type WebhookService interface {
	HandleWebhook(ctx context.Context, platform string, header http.Header, body []byte) (WebhookResult, error)
}
