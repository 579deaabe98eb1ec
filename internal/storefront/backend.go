package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shipprotect/internal/domain/plugin"
	"shipprotect/internal/domain/pricing"
)

var (
	ErrConfigUnavailable = errors.New("plugin config unavailable")
	ErrBackendRequest    = errors.New("backend request failed")
)

// ConfigSource loads a shop's plugin configuration.
type ConfigSource interface {
	Fetch(ctx context.Context, shop string) (*plugin.Config, error)
}

// OrderReport is sent to the backend after a protected checkout.
type OrderReport struct {
	Shop      string            `json:"shop"`
	CartToken string            `json:"cart_token"`
	VariantID pricing.VariantID `json:"variant_id"`
	Subtotal  pricing.Amount    `json:"subtotal"`
}

// OrderRecorder reports protected checkouts for billing.
type OrderRecorder interface {
	RecordOrder(ctx context.Context, report OrderReport) error
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// BackendClient talks to the app backend's public plugin endpoints.
type BackendClient struct {
	baseURL string
	timeout time.Duration
}

func NewBackendClient(baseURL string, timeout time.Duration) *BackendClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BackendClient{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// Fetch posts {shop} to /api/plugin/config. A non-zero code or a null data
// object means protection is not offered for the shop.
func (b *BackendClient) Fetch(ctx context.Context, shop string) (*plugin.Config, error) {
	env, err := b.post(ctx, "/api/plugin/config", fiber.Map{"shop": shop})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigUnavailable, err)
	}
	if env.Code != 0 || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("%w: %s", ErrConfigUnavailable, env.Message)
	}

	var cfg plugin.Config
	if err := json.Unmarshal(env.Data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrConfigUnavailable, err)
	}
	return &cfg, nil
}

func (b *BackendClient) RecordOrder(ctx context.Context, report OrderReport) error {
	env, err := b.post(ctx, "/api/plugin/orders", report)
	if err != nil {
		return err
	}
	if env.Code != 0 {
		return fmt.Errorf("%w: record order: %s", ErrBackendRequest, env.Message)
	}
	return nil
}

func (b *BackendClient) post(ctx context.Context, path string, body interface{}) (*envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a := fiber.Post(b.baseURL + path)
	a.JSON(body)
	a.Timeout(requestTimeout(ctx, b.timeout))

	var env envelope
	code, _, errs := a.Struct(&env)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrBackendRequest, errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrBackendRequest, code)
	}
	return &env, nil
}
