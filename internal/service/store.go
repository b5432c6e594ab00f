package service

import (
	"context"
	"errors"
	"fmt"
	"storefront-api/internal/dto"
	"storefront-api/internal/model"
	"storefront-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const storeCreatedMessage = "Store created. Sign in again to use your Business role."

type StoreService interface {
	CreateStore(ctx context.Context, identity Identity, req *dto.CreateStoreRequest) (*dto.CreateStoreResponse, error)
	ListMyStores(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.StoreResponse], error)
}

type storeServiceImpl struct {
	transactor repository.Transactor
	userRepo   repository.UserRepository
	storeRepo  repository.StoreRepository
}

func NewStoreService(
	transactor repository.Transactor,
	userRepo repository.UserRepository,
	storeRepo repository.StoreRepository,
) StoreService {
	return &storeServiceImpl{
		transactor: transactor,
		userRepo:   userRepo,
		storeRepo:  storeRepo,
	}
}

// CreateStore promotes the owner to Business in the same transaction as the insert.
func (s *storeServiceImpl) CreateStore(ctx context.Context, identity Identity, req *dto.CreateStoreRequest) (*dto.CreateStoreResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewValidationError("store name is required")
	}

	store := &model.Store{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Address:     strings.TrimSpace(req.Address),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		OwnerID:     identity.UserID,
		CreatedAt:   time.Now().UTC(),
	}

	err := s.transactor.Run(ctx,
		func(tx *gorm.DB) error {
			if err := s.userRepo.PromoteToBusiness(ctx, tx, identity.UserID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return &NotFoundError{Resource: "User", ID: identity.UserID}
				}
				return fmt.Errorf("promote user: %w", err)
			}
			return nil
		},
		func(tx *gorm.DB) error {
			if err := s.storeRepo.Create(ctx, tx, store); err != nil {
				return fmt.Errorf("store store in db: %w", err)
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	return &dto.CreateStoreResponse{
		Store:   toStoreResponse(store),
		Message: storeCreatedMessage,
	}, nil
}

func (s *storeServiceImpl) ListMyStores(ctx context.Context, identity Identity, page dto.PageRequest) (*dto.PagedResponse[dto.StoreResponse], error) {
	page = page.Normalize()

	stores, total, err := s.storeRepo.ListByOwner(ctx, identity.UserID, page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}

	items := make([]dto.StoreResponse, len(stores))
	for i, store := range stores {
		items[i] = toStoreResponse(store)
	}

	resp := dto.NewPagedResponse(items, total, page)
	return &resp, nil
}
