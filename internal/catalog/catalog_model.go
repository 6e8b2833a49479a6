package catalog

import (
	"strings"

	"github.com/Keerthudarshu/petandco/internal/commerceapi"

	"github.com/shopspring/decimal"
)

const (
	DefaultImage    = "/assets/images/no_image.png"
	DefaultCategory = "misc"
	DefaultBrand    = "Brand"
	DefaultWeight   = "N/A"
)

// Product is a catalog record after alias and default resolution.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Brand         string          `json:"brand"`
	Price         decimal.Decimal `json:"price"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	Rating        float64         `json:"rating"`
	Bestseller    bool            `json:"bestseller"`
	Image         string          `json:"image"`
	Description   string          `json:"description"`
	StockQuantity *int            `json:"stockQuantity"`
	InStock       bool            `json:"inStock"`
	Weight        string          `json:"weight"`
}

// Facet is one entry of the category rail.
type Facet struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Normalize maps a raw API record onto Product. Relative image paths are
// resolved against baseURL.
func Normalize(p commerceapi.Product, baseURL string) Product {
	out := Product{
		ID:            p.ID.String(),
		Name:          firstNonEmpty(p.Name, p.Title),
		Category:      firstNonEmpty(p.Category.String(), p.CategoryID.String(), p.Subcategory, DefaultCategory),
		Subcategory:   p.Subcategory,
		Brand:         firstNonEmpty(p.Brand, p.Manufacturer, DefaultBrand),
		Price:         firstPrice(p.Price, p.SalePrice, p.MRP),
		SalePrice:     firstPrice(p.SalePrice, p.Price, p.MRP),
		OriginalPrice: firstPrice(p.OriginalPrice, p.MRP, p.Price),
		Rating:        p.Rating,
		Bestseller:    p.Bestseller,
		Image:         resolveImage(p, baseURL),
		Description:   p.Description,
		InStock:       p.InStock == nil || *p.InStock,
		Weight:        firstNonEmpty(p.Weight, DefaultWeight),
	}
	if p.StockQuantity != nil {
		n := *p.StockQuantity
		out.StockQuantity = &n
	}
	return out
}

func resolveImage(p commerceapi.Product, baseURL string) string {
	raw := firstNonEmpty(p.ImageURL, p.Image, p.ThumbnailURL)
	if raw == "" {
		return DefaultImage
	}
	lower := strings.ToLower(raw)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return raw
	}
	base := strings.TrimRight(baseURL, "/")
	if strings.HasPrefix(raw, "/") {
		return base + raw
	}
	return base + "/" + raw
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPrice(vals ...*decimal.Decimal) decimal.Decimal {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}
