package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-api/internal/client"
	"storefront-api/internal/dto"
	"storefront-api/internal/metrics"
	"storefront-api/internal/model"
	"storefront-api/internal/pdf"
	"storefront-api/internal/repository"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	receiptLockTTL     = 2 * time.Minute
	receiptContentType = "application/pdf"
)

// Locker gives at most one holder per key until unlock or ttl.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (unlock func(), acquired bool, err error)
}

func ReceiptFileName(orderID string) string {
	return fmt.Sprintf("Receipt_%s.pdf", orderID)
}

func ReceiptStorageKey(orderID string) string {
	return "receipts/" + ReceiptFileName(orderID)
}

type ReceiptService interface {
	// Process builds, stores and mails the receipt for a committed order.
	// Running it again for the same order does nothing.
	Process(ctx context.Context, orderID string) error
	List(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.ReceiptResponse], error)
}

type receiptServiceImpl struct {
	orderRepo   repository.OrderRepository
	receiptRepo repository.ReceiptRepository
	storage     client.ObjectStorage
	mailer      client.Mailer
	locker      Locker
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewReceiptService(
	orderRepo repository.OrderRepository,
	receiptRepo repository.ReceiptRepository,
	storage client.ObjectStorage,
	mailer client.Mailer,
	locker Locker,
	m *metrics.Metrics,
) ReceiptService {
	return &receiptServiceImpl{
		orderRepo:   orderRepo,
		receiptRepo: receiptRepo,
		storage:     storage,
		mailer:      mailer,
		locker:      locker,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *receiptServiceImpl) Process(ctx context.Context, orderID string) error {
	logger := log.With().Str("order_id", orderID).Logger()

	unlock, acquired, err := s.locker.TryLock(ctx, "receipt:lock:"+orderID, receiptLockTTL)
	if err != nil {
		s.metrics.ReceiptJob("failed")
		return fmt.Errorf("acquire receipt lock: %w", err)
	}
	if !acquired {
		logger.Info().Msg("receipt already in progress, skipping")
		s.metrics.ReceiptJob("skipped")
		return nil
	}
	defer unlock()

	exists, err := s.receiptRepo.ExistsForOrder(ctx, orderID)
	if err != nil {
		s.metrics.ReceiptJob("failed")
		return fmt.Errorf("check receipt: %w", err)
	}
	if exists {
		logger.Info().Msg("receipt already exists, skipping")
		s.metrics.ReceiptJob("skipped")
		return nil
	}

	order, err := s.orderRepo.FindForReceipt(ctx, orderID)
	if err != nil {
		s.metrics.ReceiptJob("failed")
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "Order", ID: orderID}
		}
		return fmt.Errorf("load order for receipt: %w", err)
	}

	content, err := pdf.Render(buildReceiptDocument(order))
	if err != nil {
		s.metrics.ReceiptJob("failed")
		return err
	}

	key, err := s.storage.Upload(ctx, ReceiptStorageKey(orderID), content, receiptContentType)
	if err != nil {
		s.metrics.ReceiptJob("failed")
		return fmt.Errorf("upload receipt: %w", err)
	}

	err = s.receiptRepo.Create(ctx, &model.Receipt{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		StorageKey: key,
		CreatedAt:  s.now().UTC(),
	})
	if err != nil {
		s.metrics.ReceiptJob("failed")
		return fmt.Errorf("store receipt in db: %w", err)
	}

	// the receipt is durable now; a lost email is logged rather than retried
	if order.User != nil && order.User.Email != "" {
		if err := s.mailer.Send(ctx, receiptMail(order, content)); err != nil {
			logger.Error().Err(err).Msg("send receipt email")
			s.metrics.ReceiptJob("email_failed")
			return nil
		}
	}

	logger.Info().Str("key", key).Msg("receipt generated")
	s.metrics.ReceiptJob("ok")
	return nil
}

func (s *receiptServiceImpl) List(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.ReceiptResponse], error) {
	page = page.Normalize()

	receipts, total, err := s.receiptRepo.List(ctx, VisibleOrders(identity).Scope(), page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}

	items := make([]dto.ReceiptResponse, len(receipts))
	for i, receipt := range receipts {
		url, err := s.storage.PresignURL(ctx, receipt.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("presign receipt %s: %w", receipt.ID, err)
		}

		items[i] = dto.ReceiptResponse{
			ID:        receipt.ID,
			OrderID:   receipt.OrderID,
			URL:       url,
			CreatedAt: receipt.CreatedAt,
		}
		if receipt.Order != nil {
			items[i].Order = toOrderResponseWithProducts(receipt.Order)
		}
	}

	resp := dto.NewPagedResponse(items, total, page)
	return &resp, nil
}

// buildReceiptDocument takes the store header from the first line's product.
func buildReceiptDocument(order *model.Order) *pdf.Receipt {
	doc := &pdf.Receipt{
		OrderID:       order.ID,
		IssuedAt:      order.CreatedAt,
		Subtotal:      order.Subtotal.Decimal,
		Discount:      order.DiscountAmount.Decimal,
		VAT:           order.VatAmount.Decimal,
		Total:         order.TotalAmount.Decimal,
		PaymentMethod: order.PaymentMethod,
	}

	if order.User != nil {
		doc.CustomerName = order.User.Username
		doc.CustomerEmail = order.User.Email
	}

	for i, item := range order.Items {
		line := pdf.ReceiptLine{
			UnitPrice: item.UnitPrice.Decimal,
			Quantity:  item.Quantity,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			if i == 0 && item.Product.Store != nil {
				doc.StoreName = item.Product.Store.Name
				doc.StoreAddress = item.Product.Store.Address
				doc.StorePhone = item.Product.Store.PhoneNumber
			}
		}
		doc.Lines = append(doc.Lines, line)
	}

	return doc
}

func receiptMail(order *model.Order, content []byte) *client.Mail {
	return &client.Mail{
		ToAddress: order.User.Email,
		ToName:    order.User.Username,
		Subject:   fmt.Sprintf("Your Receipt for Order #%s", order.ID),
		Body: fmt.Sprintf("Hello %s,\n\nThank you for your order. Your receipt for order #%s is attached.\n\nTotal paid: %s\n",
			order.User.Username, order.ID, order.TotalAmount.StringFixed(2)),
		Attach: []client.Attachment{{
			FileName:    ReceiptFileName(order.ID),
			ContentType: receiptContentType,
			Content:     content,
		}},
	}
}
