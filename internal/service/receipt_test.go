package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"storefront-api/internal/cache"
	"storefront-api/internal/client"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"storefront-api/internal/testutil"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
	err     error
}

func (s *memoryStorage) Upload(_ context.Context, key string, content []byte, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = content
	return key, nil
}

func (s *memoryStorage) PresignURL(_ context.Context, key string) (string, error) {
	return "https://bucket.example.com/" + key + "?sig=1", nil
}

type memoryMailer struct {
	mu   sync.Mutex
	sent []*client.Mail
	err  error
}

func (m *memoryMailer) Send(_ context.Context, mail *client.Mail) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
	return m.err
}

type heldLocker struct{}

func (heldLocker) TryLock(context.Context, string, time.Duration) (func(), bool, error) {
	return nil, false, nil
}

type receiptFixture struct {
	db      *gorm.DB
	storage *memoryStorage
	mailer  *memoryMailer
	svc     ReceiptService
	owner   *model.User
	buyer   *model.User
	order   *model.Order
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	t.Helper()

	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, model.RoleBusiness)
	buyer := testutil.CreateUser(t, db, model.RoleCustomer)
	store := testutil.CreateStore(t, db, owner, "Corner Shop")
	product := testutil.CreateProduct(t, db, store, "Mug", "10", 5, "0")

	f := &receiptFixture{
		db:      db,
		storage: &memoryStorage{},
		mailer:  &memoryMailer{},
		owner:   owner,
		buyer:   buyer,
		order:   testutil.CreateOrder(t, db, buyer, time.Now().UTC(), product),
	}
	f.svc = f.newService(cache.NewLocalLocker())
	return f
}

func (f *receiptFixture) newService(locker Locker) ReceiptService {
	return NewReceiptService(
		repository.NewOrderRepository(f.db),
		repository.NewReceiptRepository(f.db),
		f.storage,
		f.mailer,
		locker,
		nil,
	)
}

func (f *receiptFixture) receipts(t *testing.T) []model.Receipt {
	var out []model.Receipt
	require.NoError(t, f.db.Find(&out).Error)
	return out
}

func TestReceipt_ProcessStoresAndMails(t *testing.T) {
	f := newReceiptFixture(t)

	require.NoError(t, f.svc.Process(context.Background(), f.order.ID))

	key := fmt.Sprintf("receipts/Receipt_%s.pdf", f.order.ID)
	require.Contains(t, f.storage.objects, key)
	assert.True(t, bytes.HasPrefix(f.storage.objects[key], []byte("%PDF")))

	receipts := f.receipts(t)
	require.Len(t, receipts, 1)
	assert.Equal(t, key, receipts[0].StorageKey)

	require.Len(t, f.mailer.sent, 1)
	mail := f.mailer.sent[0]
	assert.Equal(t, f.buyer.Email, mail.ToAddress)
	assert.Equal(t, "Your Receipt for Order #"+f.order.ID, mail.Subject)
	require.Len(t, mail.Attach, 1)
	assert.Equal(t, "Receipt_"+f.order.ID+".pdf", mail.Attach[0].FileName)
}

func TestReceipt_ProcessIsIdempotent(t *testing.T) {
	f := newReceiptFixture(t)

	require.NoError(t, f.svc.Process(context.Background(), f.order.ID))
	require.NoError(t, f.svc.Process(context.Background(), f.order.ID))

	assert.Len(t, f.receipts(t), 1)
	assert.Len(t, f.mailer.sent, 1)
}

func TestReceipt_ProcessSkipsWhenLockHeld(t *testing.T) {
	f := newReceiptFixture(t)

	require.NoError(t, f.newService(heldLocker{}).Process(context.Background(), f.order.ID))

	assert.Empty(t, f.receipts(t))
	assert.Empty(t, f.mailer.sent)
}

func TestReceipt_ProcessUnknownOrder(t *testing.T) {
	f := newReceiptFixture(t)

	err := f.svc.Process(context.Background(), "missing")

	var notFound *NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestReceipt_UploadFailureLeavesNoReceipt(t *testing.T) {
	f := newReceiptFixture(t)
	f.storage.err = errors.New("s3 down")

	err := f.svc.Process(context.Background(), f.order.ID)

	assert.ErrorContains(t, err, "s3 down")
	assert.Empty(t, f.receipts(t))
	assert.Empty(t, f.mailer.sent)

	// the next delivery succeeds
	f.storage.err = nil
	require.NoError(t, f.svc.Process(context.Background(), f.order.ID))
	assert.Len(t, f.receipts(t), 1)
}

func TestReceipt_EmailFailureKeepsReceipt(t *testing.T) {
	f := newReceiptFixture(t)
	f.mailer.err = errors.New("smtp down")

	require.NoError(t, f.svc.Process(context.Background(), f.order.ID))
	assert.Len(t, f.receipts(t), 1)
}

func TestReceipt_ListIsRoleScoped(t *testing.T) {
	ctx := context.Background()
	f := newReceiptFixture(t)
	require.NoError(t, f.svc.Process(ctx, f.order.ID))
	stranger := testutil.CreateUser(t, f.db, model.RoleCustomer)

	for name, who := range map[string]Identity{
		"buyer": {UserID: f.buyer.ID, Role: model.RoleCustomer},
		"owner": {UserID: f.owner.ID, Role: model.RoleBusiness},
	} {
		t.Run(name, func(t *testing.T) {
			page, err := f.svc.List(ctx, who, dto.PageRequest{})
			require.NoError(t, err)
			require.Len(t, page.Items, 1)
			assert.Equal(t, f.order.ID, page.Items[0].OrderID)
			assert.Contains(t, page.Items[0].URL, "Receipt_"+f.order.ID)
			require.NotNil(t, page.Items[0].Order)
			assert.Equal(t, "Mug", page.Items[0].Order.Items[0].ProductName)
		})
	}

	page, err := f.svc.List(ctx, Identity{UserID: stranger.ID, Role: model.RoleCustomer}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}
