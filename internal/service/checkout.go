package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-api/internal/dto"
	"storefront-api/internal/metrics"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const notifyTimeout = 5 * time.Second

// OrderNotifier hears about orders strictly after they commit.
type OrderNotifier interface {
	OrderCompleted(ctx context.Context, orderID string) error
}

// IdempotencyStore maps a client supplied key to the order it produced.
// Reserve returns reserved=false with an empty order id while another
// checkout holds the key.
type IdempotencyStore interface {
	Reserve(ctx context.Context, userID, key string) (orderID string, reserved bool, err error)
	Remember(ctx context.Context, userID, key, orderID string) error
	Release(ctx context.Context, userID, key string) error
}

type CheckoutService interface {
	Checkout(ctx context.Context, identity Identity, req *dto.CheckoutRequest, idempotencyKey string) (*dto.OrderResponse, error)
}

type checkoutServiceImpl struct {
	transactor    repository.Transactor
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	notifier      OrderNotifier
	idempotency   IdempotencyStore
	vatRate       VATRateFunc
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewCheckoutService(
	transactor repository.Transactor,
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	notifier OrderNotifier,
	idempotency IdempotencyStore,
	vatRate VATRateFunc,
	m *metrics.Metrics,
) CheckoutService {
	if vatRate == nil {
		vatRate = EnvVATRate
	}
	return &checkoutServiceImpl{
		transactor:    transactor,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		notifier:      notifier,
		idempotency:   idempotency,
		vatRate:       vatRate,
		metrics:       m,
		now:           time.Now,
	}
}

func (s *checkoutServiceImpl) Checkout(ctx context.Context, identity Identity, req *dto.CheckoutRequest, idempotencyKey string) (*dto.OrderResponse, error) {
	if err := validateCart(req); err != nil {
		s.metrics.CheckoutOutcome(metrics.OutcomeValidation)
		return nil, err
	}

	idempotencyKey = strings.TrimSpace(idempotencyKey)
	replayed, claimed, err := s.claimKey(ctx, identity, idempotencyKey)
	if err != nil || replayed != nil {
		return replayed, err
	}

	order := &model.Order{
		ID:            uuid.NewString(),
		UserID:        identity.UserID,
		PaymentMethod: normalizePaymentMethod(req.PaymentMethod),
		Status:        model.OrderStatusCompleted,
		CreatedAt:     s.now().UTC(),
	}
	productNames := make([]string, 0, len(req.Items))
	vatRate := s.vatRate()

	err = s.transactor.Run(ctx, func(tx *gorm.DB) error {
		lines := make([]PricedLine, 0, len(req.Items))

		// request order is kept; duplicate ids are separate lines
		for _, item := range req.Items {
			product, err := s.inventoryRepo.LockProduct(ctx, tx, item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "Product", ID: item.ProductID}
				}
				return fmt.Errorf("lock product %s: %w", item.ProductID, err)
			}

			if item.Quantity > product.Stock {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}

			ok, err := s.inventoryRepo.DecrementStock(ctx, tx, product.ID, item.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of %s: %w", product.ID, err)
			}
			if !ok {
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}

			order.Items = append(order.Items, model.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				UnitPrice: product.Price,
			})
			lines = append(lines, PricedLine{
				UnitPrice:          product.Price.Decimal,
				Quantity:           item.Quantity,
				DiscountPercentage: product.DiscountPercentage.Decimal,
			})
			productNames = append(productNames, product.Name)
		}

		totals := ComputeTotals(lines, vatRate)
		order.Subtotal = model.NewDecimal(totals.Subtotal)
		order.DiscountAmount = model.NewDecimal(totals.DiscountAmount)
		order.VatAmount = model.NewDecimal(totals.VatAmount)
		order.TotalAmount = model.NewDecimal(totals.TotalAmount)

		if err := s.orderRepo.Create(ctx, tx, order); err != nil {
			return fmt.Errorf("store order in db: %w", err)
		}
		return nil
	})
	if err != nil {
		s.metrics.CheckoutOutcome(checkoutOutcome(err))
		if claimed {
			s.releaseKey(ctx, identity, idempotencyKey)
		}
		if IsDomainError(err) {
			return nil, err
		}
		log.Error().Err(err).Str("user_id", identity.UserID).Msg("checkout rolled back")
		return nil, fmt.Errorf("%w: %w", ErrTransactionFailed, err)
	}
	s.metrics.CheckoutOutcome(metrics.OutcomeCompleted)

	s.afterCommit(ctx, identity, idempotencyKey, order.ID)

	return toOrderResponse(order, productNames), nil
}

// afterCommit never fails the checkout; the order is already durable.
func (s *checkoutServiceImpl) afterCommit(ctx context.Context, identity Identity, idempotencyKey, orderID string) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if s.idempotency != nil && idempotencyKey != "" {
		// a failed write leaves the reservation to expire
		if err := s.idempotency.Remember(bg, identity.UserID, idempotencyKey, orderID); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("remember idempotency key")
		}
	}

	if s.notifier == nil {
		return
	}
	err := s.notifier.OrderCompleted(bg, orderID)
	s.metrics.NotificationResult(err == nil)
	if err != nil {
		log.Error().Err(err).Str("order_id", orderID).Msg("order completed notification lost")
	}
}

// claimKey reserves key for this checkout or returns the order it already produced.
// Without a store or a key every request runs.
func (s *checkoutServiceImpl) claimKey(ctx context.Context, identity Identity, key string) (*dto.OrderResponse, bool, error) {
	if s.idempotency == nil || key == "" {
		return nil, false, nil
	}

	orderID, reserved, err := s.idempotency.Reserve(ctx, identity.UserID, key)
	if err != nil {
		log.Warn().Err(err).Msg("idempotency reserve failed, running checkout")
		return nil, false, nil
	}
	if reserved {
		return nil, true, nil
	}
	if orderID == "" {
		return nil, false, &ConflictError{Message: "a checkout with this Idempotency-Key is still in progress"}
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, false, fmt.Errorf("load order for idempotency key: %w", err)
	}
	return toOrderResponseWithProducts(order), false, nil
}

func (s *checkoutServiceImpl) releaseKey(ctx context.Context, identity Identity, key string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), identity.UserID, key); err != nil {
		log.Warn().Err(err).Msg("release idempotency key")
	}
}

func validateCart(req *dto.CheckoutRequest) error {
	if req == nil || len(req.Items) == 0 {
		return NewValidationError("order must contain at least one item")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return NewValidationError("item %d: product_id is required", i+1)
		}
		if item.Quantity < 1 {
			return NewValidationError("item %d: quantity must be at least 1, got %d", i+1, item.Quantity)
		}
	}
	return nil
}

func normalizePaymentMethod(method *string) string {
	if method == nil || strings.TrimSpace(*method) == "" {
		return model.DefaultPaymentMethod
	}
	return strings.TrimSpace(*method)
}

func checkoutOutcome(err error) string {
	var (
		validation *ValidationError
		notFound   *NotFoundError
		stock      *InsufficientStockError
	)
	switch {
	case errors.As(err, &validation):
		return metrics.OutcomeValidation
	case errors.As(err, &notFound):
		return metrics.OutcomeNotFound
	case errors.As(err, &stock):
		return metrics.OutcomeInsufficientStock
	default:
		return metrics.OutcomeFailed
	}
}
