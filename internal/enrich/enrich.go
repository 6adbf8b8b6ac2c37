package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"support-assistant/internal/loyalty"
	"support-assistant/internal/metrics"
	"support-assistant/internal/order"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured means the selected provider has no credentials. It is a
// configuration error, not a lookup failure, and short-circuits before any
// outbound call.
var ErrNotConfigured = errors.New("enrich: provider not configured")

// Outcome classifies a lookup. A successful HTTP call whose payload carries
// a negative business status is OutcomeNotFound, never OutcomeFound.
type Outcome int

const (
	OutcomeFound Outcome = iota
	OutcomeNotFound
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "error"
	}
}

// CustomerRecord joins the loyalty profile with its transaction history.
type CustomerRecord struct {
	loyalty.Customer
	Transactions []loyalty.Transaction `json:"Transactions"`
}

// Result is the uniform lookup result the composer branches on.
// Order is set for order lookups, Customer for customer lookups, and only
// when Outcome is OutcomeFound.
type Result struct {
	Outcome  Outcome
	Order    *order.Summary
	Customer *CustomerRecord
}

// OrderAPI and LoyaltyAPI are the minimal provider contracts the gateway
// needs; the real clients live in internal/order and internal/loyalty.

type OrderAPI interface {
	Configured() bool
	GetSummary(ctx context.Context, orderID string) (order.Summary, error)
}

type LoyaltyAPI interface {
	Configured() bool
	GetCustomer(ctx context.Context, mobile string) (loyalty.Customer, bool, error)
	GetTransactions(ctx context.Context, mobile string) ([]loyalty.Transaction, bool, error)
}

// Gateway normalizes provider lookups into Results. Lookup failures are
// logged here with enough context to diagnose; no retries are performed.
type Gateway struct {
	orders  OrderAPI
	loyalty LoyaltyAPI
	logger  *slog.Logger
	metrics *metrics.Metrics

	// cache is optional; nil disables caching with identical semantics.
	cache    *redis.Client
	cacheTTL time.Duration
}

type Option func(*Gateway)

// WithCache enables a read-through cache over found lookups.
func WithCache(rdb *redis.Client, ttl time.Duration) Option {
	return func(g *Gateway) {
		g.cache = rdb
		g.cacheTTL = ttl
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

func NewGateway(orders OrderAPI, loyaltyAPI LoyaltyAPI, log *slog.Logger, opts ...Option) *Gateway {
	if log == nil {
		log = slog.Default()
	}
	g := &Gateway{
		orders:  orders,
		loyalty: loyaltyAPI,
		logger:  log.With("component", "enrich"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Order looks up one order summary. The returned error is non-nil only for
// missing configuration; lookup failures are reported through the Result.
func (g *Gateway) Order(ctx context.Context, orderID string) (Result, error) {
	if g.orders == nil || !g.orders.Configured() {
		return Result{}, ErrNotConfigured
	}

	if s, ok := g.cachedOrder(ctx, orderID); ok {
		g.metrics.RecordProvider("order", "cache_hit")
		return Result{Outcome: OutcomeFound, Order: s}, nil
	}

	s, err := g.orders.GetSummary(ctx, orderID)
	if err != nil {
		g.logger.Error("order lookup failed", "order_id", orderID, "err", err)
		g.metrics.RecordProvider("order", OutcomeError.String())
		return Result{Outcome: OutcomeError}, nil
	}
	if !s.Found() {
		g.metrics.RecordProvider("order", OutcomeNotFound.String())
		return Result{Outcome: OutcomeNotFound}, nil
	}

	g.storeOrder(ctx, orderID, s)
	g.metrics.RecordProvider("order", OutcomeFound.String())
	return Result{Outcome: OutcomeFound, Order: &s}, nil
}

// Customer looks up the loyalty profile and transaction history for one
// mobile number. Both calls must succeed for a found result: a transport
// failure on either yields OutcomeError, a Success:false on either yields
// OutcomeNotFound.
func (g *Gateway) Customer(ctx context.Context, mobile string) (Result, error) {
	if g.loyalty == nil || !g.loyalty.Configured() {
		return Result{}, ErrNotConfigured
	}

	if rec, ok := g.cachedCustomer(ctx, mobile); ok {
		g.metrics.RecordProvider("customer", "cache_hit")
		return Result{Outcome: OutcomeFound, Customer: rec}, nil
	}

	cust, custOK, err := g.loyalty.GetCustomer(ctx, mobile)
	if err != nil {
		g.logger.Error("customer lookup failed", "mobile", mobile, "err", err)
		g.metrics.RecordProvider("customer", OutcomeError.String())
		return Result{Outcome: OutcomeError}, nil
	}

	txns, txnOK, err := g.loyalty.GetTransactions(ctx, mobile)
	if err != nil {
		g.logger.Error("transaction lookup failed", "mobile", mobile, "err", err)
		g.metrics.RecordProvider("customer", OutcomeError.String())
		return Result{Outcome: OutcomeError}, nil
	}

	if !custOK || !txnOK {
		g.metrics.RecordProvider("customer", OutcomeNotFound.String())
		return Result{Outcome: OutcomeNotFound}, nil
	}

	rec := &CustomerRecord{Customer: cust, Transactions: txns}
	g.storeCustomer(ctx, mobile, rec)
	g.metrics.RecordProvider("customer", OutcomeFound.String())
	return Result{Outcome: OutcomeFound, Customer: rec}, nil
}

// --- cache ---

// Order hits are cached as the provider's raw payload so the verbatim
// branch of the composer survives cache round-trips.

func orderKey(id string) string     { return "enrich:order:" + id }
func customerKey(mob string) string { return "enrich:customer:" + mob }

func (g *Gateway) cachedOrder(ctx context.Context, orderID string) (*order.Summary, bool) {
	if g.cache == nil {
		return nil, false
	}
	raw, err := g.cache.Get(ctx, orderKey(orderID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger.Warn("order cache read failed", "order_id", orderID, "err", err)
		}
		return nil, false
	}
	var s order.Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, false
	}
	s.Raw = raw
	return &s, true
}

func (g *Gateway) storeOrder(ctx context.Context, orderID string, s order.Summary) {
	if g.cache == nil || len(s.Raw) == 0 {
		return
	}
	if err := g.cache.Set(ctx, orderKey(orderID), []byte(s.Raw), g.cacheTTL).Err(); err != nil {
		g.logger.Warn("order cache write failed", "order_id", orderID, "err", err)
	}
}

func (g *Gateway) cachedCustomer(ctx context.Context, mobile string) (*CustomerRecord, bool) {
	if g.cache == nil {
		return nil, false
	}
	raw, err := g.cache.Get(ctx, customerKey(mobile)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			g.logger.Warn("customer cache read failed", "mobile", mobile, "err", err)
		}
		return nil, false
	}
	var rec CustomerRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, false
	}
	return &rec, true
}

func (g *Gateway) storeCustomer(ctx context.Context, mobile string, rec *CustomerRecord) {
	if g.cache == nil {
		return
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := g.cache.Set(ctx, customerKey(mobile), raw, g.cacheTTL).Err(); err != nil {
		g.logger.Warn("customer cache write failed", "mobile", mobile, "err", err)
	}
}
