package wishlist

import (
	"github.com/Keerthudarshu/petandco/internal/cart"

	"github.com/shopspring/decimal"
)

// ==================== REQUEST STRUCTS ====================

type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required,max=128"`
}

type AddToCartRequest struct {
	Quantity *int   `json:"quantity" binding:"omitempty,min=1"`
	Variant  string `json:"variant" binding:"max=64"`
}

func (r AddToCartRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

// ==================== RESPONSE STRUCTS ====================

type WishlistItemResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	StockQuantity *int            `json:"stockQuantity"`
	Available     bool            `json:"available"`
}

type WishlistResponse struct {
	Items     []WishlistItemResponse `json:"items"`
	ItemCount int                    `json:"itemCount"`
}

type ToggleResponse struct {
	ProductID  string `json:"productId"`
	InWishlist bool   `json:"inWishlist"`
}

func toItemResponse(w cart.WishlistItem) WishlistItemResponse {
	return WishlistItemResponse{
		ID:            w.ID,
		Name:          w.Name,
		Image:         w.Image,
		Price:         w.Price,
		OriginalPrice: w.OriginalPrice,
		StockQuantity: w.StockQuantity,
		Available:     w.Available(),
	}
}

func toWishlistResponse(items []cart.WishlistItem) WishlistResponse {
	res := WishlistResponse{
		Items:     make([]WishlistItemResponse, 0, len(items)),
		ItemCount: len(items),
	}
	for _, w := range items {
		res.Items = append(res.Items, toItemResponse(w))
	}
	return res
}
