package commerceapi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// ID accepts both numeric and string identifiers; the backend has used both.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Product is a raw catalog record. Most fields are optional and several
// have legacy aliases; catalog normalizes them.
type Product struct {
	ID            ID               `json:"id"`
	Name          string           `json:"name"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	SalePrice     *decimal.Decimal `json:"salePrice"`
	OriginalPrice *decimal.Decimal `json:"originalPrice"`
	MRP           *decimal.Decimal `json:"mrp"`
	ImageURL      string           `json:"imageUrl"`
	Image         string           `json:"image"`
	ThumbnailURL  string           `json:"thumbnailUrl"`
	Category      ID               `json:"category"`
	CategoryID    ID               `json:"categoryId"`
	Subcategory   string           `json:"subcategory"`
	Brand         string           `json:"brand"`
	Manufacturer  string           `json:"manufacturer"`
	StockQuantity *int             `json:"stockQuantity"`
	InStock       *bool            `json:"inStock"`
	Rating        float64          `json:"rating"`
	Bestseller    bool             `json:"bestseller"`
	Weight        string           `json:"weight"`
}

type Category struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// CartItem is the wire shape of one line of the remote cart.
type CartItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Variant       string          `json:"variant"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Image         string          `json:"image,omitempty"`
	Category      string          `json:"category,omitempty"`
	Brand         string          `json:"brand,omitempty"`
	StockQuantity *int            `json:"stockQuantity,omitempty"`
}

type Cart struct {
	Items []CartItem `json:"items"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	UserID ID     `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Token  string `json:"token"`
}
