package cart

import "github.com/shopspring/decimal"

// ==================== REQUEST STRUCTS ====================

type AddItemRequest struct {
	ID            string           `json:"id"`
	ProductID     string           `json:"productId"`
	Name          string           `json:"name"`
	UnitPrice     decimal.Decimal  `json:"unitPrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	Variant       string           `json:"variant"`
	Image         string           `json:"image"`
	Category      string           `json:"category"`
	Brand         string           `json:"brand"`
	StockQuantity *int             `json:"stockQuantity"`
	Quantity      *int             `json:"quantity"`
}

func (r AddItemRequest) item() Item {
	return Item{
		ID:            r.ID,
		ProductID:     r.ProductID,
		Name:          r.Name,
		UnitPrice:     r.UnitPrice,
		OriginalPrice: r.OriginalPrice,
		Variant:       r.Variant,
		Image:         r.Image,
		Category:      r.Category,
		Brand:         r.Brand,
		StockQuantity: r.StockQuantity,
	}
}

func (r AddItemRequest) quantity() int {
	if r.Quantity == nil {
		return 1
	}
	return *r.Quantity
}

type UpdateQtyRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ==================== RESPONSE STRUCTS ====================

type CartLineResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Variant       string          `json:"variant"`
	Quantity      int             `json:"quantity"`
	LineTotal     decimal.Decimal `json:"lineTotal"`
	Image         string          `json:"image,omitempty"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
}

type CartResponse struct {
	Items       []CartLineResponse `json:"items"`
	ItemCount   int                `json:"itemCount"`
	Subtotal    decimal.Decimal    `json:"subtotal"`
	Savings     decimal.Decimal    `json:"savings"`
	PendingSync int                `json:"pendingSync"`
	Synced      bool               `json:"synced"`
}

type CartCountResponse struct {
	Count int `json:"count"`
}

func toCartLineResponse(l CartLine) CartLineResponse {
	return CartLineResponse{
		ID:            l.ID,
		ProductID:     l.ProductID,
		Name:          l.Name,
		UnitPrice:     l.UnitPrice,
		OriginalPrice: l.OriginalPrice,
		Variant:       l.Variant,
		Quantity:      l.Quantity,
		LineTotal:     l.LineTotal(),
		Image:         l.Image,
		Category:      l.Category,
		Brand:         l.Brand,
		StockQuantity: l.StockQuantity,
	}
}

func toCartResponse(snap Snapshot, pending int) CartResponse {
	items := make([]CartLineResponse, 0, len(snap.Lines))
	savings := decimal.Zero
	for _, l := range snap.Lines {
		items = append(items, toCartLineResponse(l))
		savings = savings.Add(l.OriginalPrice.Sub(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return CartResponse{
		Items:       items,
		ItemCount:   snap.Count,
		Subtotal:    snap.Subtotal,
		Savings:     savings,
		PendingSync: pending,
		Synced:      pending == 0,
	}
}
