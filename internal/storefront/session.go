// Package storefront drives the shipping protection widget inside a
// shopper's cart: it loads the shop's plugin config, keeps the fee in step
// with the cart and adds the protection variant at checkout.
package storefront

import (
	"context"
	"errors"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipprotect/internal/domain/plugin"
	"shipprotect/internal/domain/pricing"
)

type State int

const (
	Uninitialized State = iota
	Configured
	Rendered
)

func (s State) String() string {
	switch s {
	case Configured:
		return "configured"
	case Rendered:
		return "rendered"
	default:
		return "uninitialized"
	}
}

var (
	ErrCurrencyUnsupported = errors.New("store currency is not supported")
	ErrAlreadyInitialized  = errors.New("session already initialized")
	ErrNotRendered         = errors.New("widget not rendered")
)

// View is what the widget shows.
type View struct {
	Config  plugin.Config
	Fee     pricing.ResolvedFee
	Variant pricing.VariantMatch
	OptedIn bool
}

// Renderer owns the widget markup. Mount is called until it first succeeds
// and Update on every later change.
type Renderer interface {
	Mount(v View) error
	Update(v View) error
}

// CheckoutResult reports what Checkout did. Checkout always lets the
// shopper proceed; Err records a failed add.
type CheckoutResult struct {
	Added   bool
	Variant pricing.VariantMatch
	Err     error
}

type Options struct {
	Shop       string
	Currency   string
	Currencies pricing.CurrencyPolicy
	// Recorder is optional.
	Recorder OrderRecorder
	Logger   *zap.Logger
}

// Session is one shopper's widget. All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	shop       string
	currency   string
	currencies pricing.CurrencyPolicy
	cart       CartAPI
	configs    ConfigSource
	renderer   Renderer
	recorder   OrderRecorder
	logger     *zap.Logger

	state     State
	cfg       *plugin.Config
	resolver  *pricing.Resolver
	subtotal  decimal.Decimal
	cartToken string
	fee       pricing.ResolvedFee
	variant   pricing.VariantMatch
	optedIn   bool
	// added holds the variant put in the cart by Checkout.
	added *pricing.VariantMatch
}

func NewSession(cart CartAPI, configs ConfigSource, renderer Renderer, opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	currencies := opts.Currencies
	if currencies == nil {
		currencies = pricing.NewAllowList("USD")
	}
	return &Session{
		shop:       opts.Shop,
		currency:   opts.Currency,
		currencies: currencies,
		cart:       cart,
		configs:    configs,
		renderer:   renderer,
		recorder:   opts.Recorder,
		logger:     logger.With(zap.String("shop", opts.Shop)),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) OptedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.optedIn
}

// Init loads the config, clears protection lines left from an earlier
// visit, prices the cart and mounts the widget. Any failure leaves the cart
// without a widget; the returned error is informational.
func (s *Session) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Uninitialized {
		return ErrAlreadyInitialized
	}
	if !s.currencies.Supports(s.currency) {
		s.logger.Info("protection not offered", zap.String("currency", s.currency))
		return ErrCurrencyUnsupported
	}

	cfg, err := s.configs.Fetch(ctx, s.shop)
	if err != nil {
		s.logger.Warn("plugin config unavailable", zap.Error(err))
		if errors.Is(err, ErrConfigUnavailable) {
			return err
		}
		return errors.Join(ErrConfigUnavailable, err)
	}
	s.cfg = cfg
	s.resolver = pricing.NewResolver(cfg.Policy(), cfg.Currency)
	s.state = Configured
	s.optedIn = cfg.SelectButton

	cart, err := s.cart.Get(ctx)
	if err != nil {
		s.logger.Warn("cart unavailable", zap.Error(err))
		return err
	}
	cart = s.removeStaleProtection(ctx, cart)
	s.reprice(cart)
	return s.mount()
}

// mount injects the widget. On failure the session stays Configured and the
// next cart change retries.
func (s *Session) mount() error {
	if err := s.renderer.Mount(s.view()); err != nil {
		s.logger.Warn("widget mount failed", zap.Error(err))
		return err
	}
	s.state = Rendered
	return nil
}

// HandleCartChange reprices after the cart changed and refreshes the widget.
// A configured session whose mount failed mounts here instead.
func (s *Session) HandleCartChange(_ context.Context, cart Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case Uninitialized:
		return ErrNotRendered
	case Configured:
		s.reprice(&cart)
		return s.mount()
	}
	s.reprice(&cart)
	return s.renderer.Update(s.view())
}

// Watch applies cart updates until ctx is done or carts is closed.
func (s *Session) Watch(ctx context.Context, carts <-chan Cart) {
	for {
		select {
		case <-ctx.Done():
			return
		case cart, ok := <-carts:
			if !ok {
				return
			}
			if err := s.HandleCartChange(ctx, cart); err != nil {
				s.logger.Debug("cart change ignored", zap.Error(err))
			}
		}
	}
}

func (s *Session) Toggle(optIn bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Rendered {
		return ErrNotRendered
	}
	s.optedIn = optIn
	return s.renderer.Update(s.view())
}

// Checkout adds the protection variant when the shopper opted in. A failed
// add is logged and checkout continues unprotected. Once the variant is in
// the cart, later calls report it without adding or recording again.
func (s *Session) Checkout(ctx context.Context) CheckoutResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.added != nil {
		return CheckoutResult{Added: true, Variant: *s.added}
	}
	if s.state != Rendered || !s.optedIn || !s.variant.Found() {
		return CheckoutResult{}
	}

	res := CheckoutResult{Variant: s.variant}
	if err := s.cart.Add(ctx, s.variant.VariantID, 1); err != nil {
		s.logger.Warn("protection add failed, continuing checkout", zap.Error(err))
		res.Err = err
		return res
	}
	res.Added = true
	added := s.variant
	s.added = &added

	if s.recorder != nil {
		report := OrderReport{
			Shop:      s.shop,
			CartToken: s.cartToken,
			VariantID: s.variant.VariantID,
			Subtotal:  pricing.AmountOf(s.subtotal),
		}
		if err := s.recorder.RecordOrder(ctx, report); err != nil {
			s.logger.Warn("order report failed", zap.Error(err))
		}
	}
	return res
}

func (s *Session) isProtection(item LineItem) bool {
	if s.cfg.ProductID != "" && string(item.ProductID) == s.cfg.ProductID {
		return true
	}
	return item.VariantID != "" && lo.Contains(lo.Values(s.cfg.Variants), item.VariantID)
}

// removeStaleProtection zeroes every protection line. Failures are logged
// and the line is still excluded from the subtotal.
func (s *Session) removeStaleProtection(ctx context.Context, cart *Cart) *Cart {
	current := cart
	for _, item := range cart.Items {
		if !s.isProtection(item) {
			continue
		}
		updated, err := s.cart.Change(ctx, item.Key, 0)
		if err != nil {
			s.logger.Warn("failed to remove stale protection", zap.String("line", item.Key), zap.Error(err))
			continue
		}
		current = updated
	}
	return current
}

func (s *Session) reprice(cart *Cart) {
	protection := lo.SumBy(lo.Filter(cart.Items, func(item LineItem, _ int) bool {
		return s.isProtection(item)
	}), func(item LineItem) int64 {
		return item.Price * item.Quantity
	})

	s.cartToken = cart.Token
	s.subtotal = pricing.FromMinorUnits(max(cart.TotalPrice-protection, 0))
	s.fee = s.resolver.Resolve(s.subtotal)
	s.variant = pricing.FindVariant(s.fee.Amount, s.cfg.Variants)
}

func (s *Session) view() View {
	return View{
		Config:  *s.cfg,
		Fee:     s.fee,
		Variant: s.variant,
		OptedIn: s.optedIn,
	}
}
