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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductService interface {
	List(ctx context.Context, page dto.PageRequest, storeID string) (*dto.PagedResponse[dto.ProductResponse], error)
	ListAll(ctx context.Context, page dto.PageRequest) (*dto.PagedResponse[dto.ProductResponse], error)
	Get(ctx context.Context, productID string) (*dto.ProductResponse, error)
	Create(ctx context.Context, identity Identity, req *dto.ProductRequest) (*dto.ProductResponse, error)
	Update(ctx context.Context, identity Identity, productID string, req *dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, identity Identity, productID string) error
}

type productServiceImpl struct {
	productRepo repository.ProductRepository
	storeRepo   repository.StoreRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	storeRepo repository.StoreRepository,
) ProductService {
	return &productServiceImpl{
		productRepo: productRepo,
		storeRepo:   storeRepo,
	}
}

func (s *productServiceImpl) List(ctx context.Context, page dto.PageRequest, storeID string) (*dto.PagedResponse[dto.ProductResponse], error) {
	filter := repository.ProductFilter{}
	if storeID = strings.TrimSpace(storeID); storeID != "" {
		filter.StoreID = &storeID
	}
	return s.list(ctx, page, filter)
}

func (s *productServiceImpl) ListAll(ctx context.Context, page dto.PageRequest) (*dto.PagedResponse[dto.ProductResponse], error) {
	return s.list(ctx, page, repository.ProductFilter{WithStore: true})
}

func (s *productServiceImpl) list(ctx context.Context, page dto.PageRequest, filter repository.ProductFilter) (*dto.PagedResponse[dto.ProductResponse], error) {
	page = page.Normalize()

	products, total, err := s.productRepo.List(ctx, filter, page.Offset(), page.PageSize)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, len(products))
	for i, product := range products {
		items[i] = toProductResponse(product)
	}

	resp := dto.NewPagedResponse(items, total, page)
	return &resp, nil
}

func (s *productServiceImpl) Get(ctx context.Context, productID string) (*dto.ProductResponse, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productServiceImpl) Create(ctx context.Context, identity Identity, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}
	if err := s.checkStoreOwner(ctx, identity, req.StoreID); err != nil {
		return nil, err
	}

	storeID := req.StoreID
	product := &model.Product{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(req.Name),
		Description:        strings.TrimSpace(req.Description),
		Price:              model.NewDecimal(req.Price),
		Stock:              req.Stock,
		DiscountPercentage: model.NewDecimal(req.DiscountPercentage),
		StoreID:            &storeID,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product in db: %w", err)
	}

	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productServiceImpl) Update(ctx context.Context, identity Identity, productID string, req *dto.ProductRequest) (*dto.ProductResponse, error) {
	if err := validateProduct(req); err != nil {
		return nil, err
	}

	product, err := s.findOwned(ctx, identity, productID)
	if err != nil {
		return nil, err
	}
	// moving a product is allowed only into another store of the same owner
	if product.StoreID == nil || *product.StoreID != req.StoreID {
		if err := s.checkStoreOwner(ctx, identity, req.StoreID); err != nil {
			return nil, err
		}
	}

	storeID := req.StoreID
	product.Name = strings.TrimSpace(req.Name)
	product.Description = strings.TrimSpace(req.Description)
	product.Price = model.NewDecimal(req.Price)
	product.Stock = req.Stock
	product.DiscountPercentage = model.NewDecimal(req.DiscountPercentage)
	product.StoreID = &storeID
	product.Store = nil

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	resp := toProductResponse(product)
	return &resp, nil
}

func (s *productServiceImpl) Delete(ctx context.Context, identity Identity, productID string) error {
	if _, err := s.findOwned(ctx, identity, productID); err != nil {
		return err
	}

	// order lines reference products by id
	referenced, err := s.productRepo.HasOrders(ctx, productID)
	if err != nil {
		return fmt.Errorf("check product orders: %w", err)
	}
	if referenced {
		return &ConflictError{Message: "product is referenced by existing orders"}
	}

	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return &ConflictError{Message: "product is referenced by existing orders"}
		}
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

func (s *productServiceImpl) find(ctx context.Context, productID string) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Product", ID: productID}
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *productServiceImpl) findOwned(ctx context.Context, identity Identity, productID string) (*model.Product, error) {
	product, err := s.find(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Store == nil || product.Store.OwnerID != identity.UserID {
		return nil, &ForbiddenError{Message: "you do not own this product"}
	}
	return product, nil
}

func (s *productServiceImpl) checkStoreOwner(ctx context.Context, identity Identity, storeID string) error {
	if strings.TrimSpace(storeID) == "" {
		return NewValidationError("invalid store or you do not own this store")
	}
	owned, err := s.storeRepo.IsOwnedBy(ctx, storeID, identity.UserID)
	if err != nil {
		return fmt.Errorf("check store owner: %w", err)
	}
	if !owned {
		return NewValidationError("invalid store or you do not own this store")
	}
	return nil
}

func validateProduct(req *dto.ProductRequest) error {
	switch {
	case strings.TrimSpace(req.Name) == "":
		return NewValidationError("product name is required")
	case req.Price.IsNegative():
		return NewValidationError("price must not be negative")
	case req.Stock < 0:
		return NewValidationError("stock must not be negative")
	case req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)):
		return NewValidationError("discount percentage must be between 0 and 100")
	}
	return nil
}
