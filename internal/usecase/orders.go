package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/polkiloo/eventmart/internal/adapter/booking"
	"github.com/polkiloo/eventmart/internal/adapter/catalog"
	"github.com/polkiloo/eventmart/internal/adapter/orders"
	domainErrors "github.com/polkiloo/eventmart/internal/domain/errors"
	"github.com/polkiloo/eventmart/internal/domain/model"
	"github.com/polkiloo/eventmart/internal/metrics"
)

// OrderReader fetches a single master order.
type OrderReader interface {
	Get(ctx context.Context, customerID, orderID string) (*model.MasterOrder, error)
}

// OrderUseCase reads master orders and manages their sub-orders.
type OrderUseCase struct {
	orders   orders.Client
	bookings booking.Client
	catalog  catalog.Client
	metrics  *metrics.Metrics
	logger   *slog.Logger
	lookups  int

	vendors *vendorCache
}

// NewOrderUseCase constructs OrderUseCase. lookups bounds concurrent vendor
// name requests.
func NewOrderUseCase(ordersClient orders.Client, bookings booking.Client, catalogClient catalog.Client, m *metrics.Metrics, logger *slog.Logger, lookups int) *OrderUseCase {
	if lookups <= 0 {
		lookups = 1
	}
	return &OrderUseCase{
		orders:   ordersClient,
		bookings: bookings,
		catalog:  catalogClient,
		metrics:  m,
		logger:   logger,
		lookups:  lookups,
		vendors:  newVendorCache(),
	}
}

// List returns the customer's master orders in service order. Vendor names
// are filled in where they can be resolved; lookup failures never fail the call.
func (u *OrderUseCase) List(ctx context.Context, customerID string) ([]model.MasterOrder, error) {
	if customerID == "" {
		return nil, domainErrors.NewValidation("customer_id", "must not be empty")
	}

	list, err := u.orders.List(ctx, customerID)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Status == "" {
			list[i].Status = model.DeriveAggregateStatus(list[i].SubOrders)
		}
	}

	u.enrich(ctx, list)
	return list, nil
}

// Get returns one master order or ErrNotFound.
func (u *OrderUseCase) Get(ctx context.Context, customerID, orderID string) (*model.MasterOrder, error) {
	list, err := u.List(ctx, customerID)
	if err != nil {
		return nil, err
	}
	order, ok := lo.Find(list, func(o model.MasterOrder) bool { return o.ID == orderID })
	if !ok {
		return nil, fmt.Errorf("order %s: %w", orderID, domainErrors.ErrNotFound)
	}
	return &order, nil
}

// DeleteSubOrder removes a sub-order that is still awaiting approval or was
// rejected, then re-reads the order. A nil order with a nil error means the
// last sub-order was removed and the order is gone.
func (u *OrderUseCase) DeleteSubOrder(ctx context.Context, customerID, orderID, subOrderID string) (*model.MasterOrder, error) {
	order, err := u.Get(ctx, customerID, orderID)
	if err != nil {
		return nil, err
	}

	sub, ok := order.Find(subOrderID)
	if !ok {
		return nil, fmt.Errorf("sub-order %s: %w", subOrderID, domainErrors.ErrNotFound)
	}
	if !sub.Status.Deletable() {
		return nil, fmt.Errorf("sub-order %s is %s: %w", subOrderID, sub.Status, domainErrors.ErrSubOrderNotDeletable)
	}

	if err := u.bookings.Delete(ctx, orderID, subOrderID); err != nil {
		return nil, err
	}
	u.logger.Info("sub-order deleted",
		slog.String("order_id", orderID),
		slog.String("sub_order_id", subOrderID),
		slog.Int("remaining", len(order.SubOrders)-1))

	refreshed, err := u.Get(ctx, customerID, orderID)
	if err != nil {
		if domainErrors.Classify(err) == domainErrors.KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	return refreshed, nil
}

// ResetCaches drops vendor names learned during the current session.
func (u *OrderUseCase) ResetCaches() {
	u.vendors.reset()
}

func (u *OrderUseCase) enrich(ctx context.Context, list []model.MasterOrder) {
	var pending []string
	for _, o := range list {
		for _, s := range o.SubOrders {
			if s.VendorName == "" && s.VendorID != "" {
				pending = append(pending, s.VendorID)
			}
		}
	}
	pending = lo.Uniq(pending)
	if len(pending) == 0 {
		return
	}

	names := make(map[string]string, len(pending))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(u.lookups)
	for _, vendorID := range pending {
		g.Go(func() error {
			if name, ok := u.vendorName(gctx, vendorID); ok {
				mu.Lock()
				names[vendorID] = name
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range list {
		for j := range list[i].SubOrders {
			s := &list[i].SubOrders[j]
			if s.VendorName == "" {
				s.VendorName = names[s.VendorID]
			}
		}
	}
}

func (u *OrderUseCase) vendorName(ctx context.Context, vendorID string) (string, bool) {
	if name, known, ok := u.vendors.get(vendorID); ok {
		u.metrics.VendorLookups.WithLabelValues("cached").Inc()
		return name, known
	}

	generation := u.vendors.generation()
	v, _, _ := u.vendors.group.Do(vendorID, func() (any, error) {
		name, err := u.catalog.VendorName(ctx, vendorID)
		if err != nil {
			u.metrics.VendorLookups.WithLabelValues("failed").Inc()
			u.logger.Debug("vendor lookup failed", slog.String("vendor_id", vendorID), slog.String("error", err.Error()))
			if ctx.Err() == nil {
				u.vendors.miss(generation, vendorID)
			}
			return "", nil
		}
		u.metrics.VendorLookups.WithLabelValues("resolved").Inc()
		u.vendors.put(generation, vendorID, name)
		return name, nil
	})

	name := v.(string)
	return name, name != ""
}

// vendorCache remembers resolved names and failed lookups for one session.
type vendorCache struct {
	mu    sync.RWMutex
	gen   uint64
	names map[string]string
	// misses holds vendors whose lookup failed; they are not retried until reset.
	misses map[string]struct{}
	group  singleflight.Group
}

func newVendorCache() *vendorCache {
	return &vendorCache{names: make(map[string]string), misses: make(map[string]struct{})}
}

func (c *vendorCache) get(vendorID string) (name string, known, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if name, found := c.names[vendorID]; found {
		return name, true, true
	}
	if _, missed := c.misses[vendorID]; missed {
		return "", false, true
	}
	return "", false, false
}

func (c *vendorCache) generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

func (c *vendorCache) put(gen uint64, vendorID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.names[vendorID] = name
}

func (c *vendorCache) miss(gen uint64, vendorID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.misses[vendorID] = struct{}{}
}

func (c *vendorCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.names = make(map[string]string)
	c.misses = make(map[string]struct{})
}
