package wishlist

import (
	"context"
	"errors"
	"strings"

	"github.com/Keerthudarshu/petandco/internal/cart"
	carterrors "github.com/Keerthudarshu/petandco/internal/cart/errors"
	"github.com/Keerthudarshu/petandco/internal/catalog"
)

// ProductLookup finds a catalog product by id.
type ProductLookup interface {
	Product(ctx context.Context, id string) (catalog.Product, error)
}

//go:generate mockgen -source=wishlist_service.go -destination=../mock/wishlist/wishlist_service_mock.go -package=mock
type Service interface {
	// Resolve builds the wishlist entry for a product from the catalog.
	Resolve(ctx context.Context, productID string) (cart.WishlistItem, error)
	// CartItem builds a cart item for a product that can still be bought.
	CartItem(ctx context.Context, productID, variant string) (cart.Item, error)
}

type service struct {
	products ProductLookup
}

func NewService(products ProductLookup) Service {
	return &service{products: products}
}

func (s *service) product(ctx context.Context, productID string) (catalog.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return catalog.Product{}, ErrInvalidProductID
	}

	p, err := s.products.Product(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return catalog.Product{}, ErrProductNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *service) Resolve(ctx context.Context, productID string) (cart.WishlistItem, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return cart.WishlistItem{}, err
	}

	inStock := p.InStock
	item := cart.WishlistItem{
		ID:            p.ID,
		Name:          p.Name,
		Image:         p.Image,
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		InStock:       &inStock,
	}
	if p.StockQuantity != nil {
		n := *p.StockQuantity
		item.StockQuantity = &n
	}
	return item, nil
}

func (s *service) CartItem(ctx context.Context, productID, variant string) (cart.Item, error) {
	p, err := s.product(ctx, productID)
	if err != nil {
		return cart.Item{}, err
	}
	if !p.InStock || (p.StockQuantity != nil && *p.StockQuantity <= 0) {
		return cart.Item{}, carterrors.ErrOutOfStock
	}

	original := p.OriginalPrice
	item := cart.Item{
		ProductID:     p.ID,
		Name:          p.Name,
		UnitPrice:     p.Price,
		OriginalPrice: &original,
		Variant:       variant,
		Image:         p.Image,
		Category:      p.Category,
		Brand:         p.Brand,
	}
	if p.StockQuantity != nil {
		n := *p.StockQuantity
		item.StockQuantity = &n
	}
	return item, nil
}
