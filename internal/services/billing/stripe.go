package billing

import (
	"context"
	"errors"
	"strings"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/invoiceitem"
)

// InvoiceItem is a usage charge added to the shop's next Stripe invoice.
type InvoiceItem struct {
	CustomerID     string
	Amount         int64 // minor units
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// InvoiceCreator creates invoice items and returns their id.
type InvoiceCreator interface {
	CreateInvoiceItem(ctx context.Context, item InvoiceItem) (string, error)
}

// StripeInvoicer creates invoice items through the Stripe API.
type StripeInvoicer struct {
	client invoiceitem.Client
}

func NewStripeInvoicer(secretKey string) (*StripeInvoicer, error) {
	secretKey = strings.TrimSpace(secretKey)
	if secretKey == "" {
		return nil, errors.New("stripe: secret key is required")
	}
	return &StripeInvoicer{
		client: invoiceitem.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
	}, nil
}

func (s *StripeInvoicer) CreateInvoiceItem(ctx context.Context, item InvoiceItem) (string, error) {
	params := &stripe.InvoiceItemParams{
		Customer:    stripe.String(item.CustomerID),
		Amount:      stripe.Int64(item.Amount),
		Currency:    stripe.String(strings.ToLower(item.Currency)),
		Description: stripe.String(item.Description),
	}
	params.Context = ctx
	if item.IdempotencyKey != "" {
		params.SetIdempotencyKey(item.IdempotencyKey)
	}
	for k, v := range item.Metadata {
		params.AddMetadata(k, v)
	}

	ii, err := s.client.New(params)
	if err != nil {
		return "", err
	}
	return ii.ID, nil
}

var ErrStripeNotConfigured = errors.New("stripe: secret key not configured")

// Unconfigured rejects every charge. It stands in when STRIPE_SECRET_KEY is
// unset so the rest of the API still starts.
type Unconfigured struct{}

func (Unconfigured) CreateInvoiceItem(context.Context, InvoiceItem) (string, error) {
	return "", ErrStripeNotConfigured
}
