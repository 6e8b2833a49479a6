package cart

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const DefaultVariant = "Default"

type CartLine struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Variant       string          `json:"variant"`
	Quantity      int             `json:"quantity"`
	Image         string          `json:"image,omitempty"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
}

// LineTotal is UnitPrice × Quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type WishlistItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Image         string          `json:"image,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
	InStock       *bool           `json:"inStock,omitempty"`
}

// Available reports whether the item can be moved to the cart. A missing
// InStock flag means in stock and a nil StockQuantity means unlimited.
func (w WishlistItem) Available() bool {
	if w.InStock != nil && !*w.InStock {
		return false
	}
	return w.StockQuantity == nil || *w.StockQuantity > 0
}

// Item is what callers hand to AddToCart. Either ID or ProductID must be set;
// when ID is empty the line id is derived from ProductID and Variant.
type Item struct {
	ID            string           `validate:"required_without=ProductID,omitempty,max=128,printascii"`
	ProductID     string           `validate:"omitempty,max=128,printascii"`
	Name          string           `validate:"max=256"`
	UnitPrice     decimal.Decimal
	OriginalPrice *decimal.Decimal
	Variant       string `validate:"max=64"`
	Image         string
	Category      string
	Brand         string
	StockQuantity *int `validate:"omitempty,min=0"`
}

// Snapshot is a point-in-time copy of a store's collections.
type Snapshot struct {
	Lines    []CartLine      `json:"lines"`
	Wishlist []WishlistItem  `json:"wishlist"`
	Count    int             `json:"itemCount"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Version  uint64          `json:"version"`
}

// LineID builds the composite line id "<productId>-<variant slug>".
func LineID(productID, variant string) string {
	if strings.TrimSpace(variant) == "" {
		variant = DefaultVariant
	}
	return productID + "-" + slug(variant)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func (it Item) toLine() CartLine {
	variant := strings.TrimSpace(it.Variant)
	if variant == "" {
		variant = DefaultVariant
	}
	id := strings.TrimSpace(it.ID)
	productID := strings.TrimSpace(it.ProductID)
	if id == "" {
		id = LineID(productID, variant)
	}
	if productID == "" {
		productID = id
	}

	original := it.UnitPrice
	if it.OriginalPrice != nil && it.OriginalPrice.GreaterThan(it.UnitPrice) {
		original = *it.OriginalPrice
	}

	return CartLine{
		ID:            id,
		ProductID:     productID,
		Name:          it.Name,
		UnitPrice:     it.UnitPrice,
		OriginalPrice: original,
		Variant:       variant,
		Image:         it.Image,
		Category:      it.Category,
		Brand:         it.Brand,
		StockQuantity: copyInt(it.StockQuantity),
	}
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneLine(l CartLine) CartLine {
	l.StockQuantity = copyInt(l.StockQuantity)
	return l
}

func cloneWishlistItem(w WishlistItem) WishlistItem {
	w.StockQuantity = copyInt(w.StockQuantity)
	w.InStock = copyBool(w.InStock)
	return w
}

// capQuantity limits n to the known stock; nil stock is unlimited.
func capQuantity(n int, stock *int) int {
	if stock != nil && n > *stock {
		return *stock
	}
	return n
}
