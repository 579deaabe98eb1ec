package storefront

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"shipprotect/internal/domain/pricing"
)

// LineItem is an entry of Shopify's /cart.js items array. Prices are in
// minor units.
type LineItem struct {
	Key       string            `json:"key"`
	ID        pricing.VariantID `json:"id"`
	ProductID pricing.VariantID `json:"product_id"`
	VariantID pricing.VariantID `json:"variant_id"`
	Quantity  int64             `json:"quantity"`
	Price     int64             `json:"price"`
}

// Cart is the subset of /cart.js the widget reads.
type Cart struct {
	Token      string     `json:"token"`
	TotalPrice int64      `json:"total_price"`
	Currency   string     `json:"currency"`
	Items      []LineItem `json:"items"`
}

// CartAPI is the storefront cart the session drives.
type CartAPI interface {
	Get(ctx context.Context) (*Cart, error)
	Add(ctx context.Context, variantID pricing.VariantID, quantity int64) error
	Change(ctx context.Context, lineKey string, quantity int64) (*Cart, error)
}

var ErrCartRequest = errors.New("cart request failed")

// CartClient calls Shopify's ajax cart endpoints on behalf of one shopper.
type CartClient struct {
	baseURL string
	cookie  string
	timeout time.Duration
}

// NewCartClient returns a client for the shop at baseURL. cartCookie is the
// shopper's `cart` cookie value; it may be empty for a new cart.
func NewCartClient(baseURL, cartCookie string, timeout time.Duration) *CartClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CartClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		cookie:  cartCookie,
		timeout: timeout,
	}
}

func (c *CartClient) Get(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, fiber.Get(c.baseURL+"/cart.js"), &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *CartClient) Add(ctx context.Context, variantID pricing.VariantID, quantity int64) error {
	a := fiber.Post(c.baseURL + "/cart/add.js")
	a.JSON(fiber.Map{
		"items": []fiber.Map{{"id": string(variantID), "quantity": quantity}},
	})
	return c.do(ctx, a, nil)
}

func (c *CartClient) Change(ctx context.Context, lineKey string, quantity int64) (*Cart, error) {
	a := fiber.Post(c.baseURL + "/cart/change.js")
	a.JSON(fiber.Map{"id": lineKey, "quantity": quantity})

	var cart Cart
	if err := c.do(ctx, a, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *CartClient) do(ctx context.Context, a *fiber.Agent, dest interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if c.cookie != "" {
		a.Cookie("cart", c.cookie)
	}
	a.Timeout(requestTimeout(ctx, c.timeout))

	code, body, errs := a.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrCartRequest, errors.Join(errs...))
	}
	if code < 200 || code >= 300 {
		return fmt.Errorf("%w: status %d", ErrCartRequest, code)
	}
	if dest == nil {
		return nil
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: decode: %w", ErrCartRequest, err)
	}
	return nil
}

// requestTimeout caps the client timeout at the context deadline.
func requestTimeout(ctx context.Context, timeout time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			return left
		}
	}
	return timeout
}
