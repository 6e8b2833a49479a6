package catalog

import "strings"

type ListProductsQuery struct {
	Category string   `form:"category"`
	Search   string   `form:"search"`
	Brands   []string `form:"brand"`
	Sort     string   `form:"sort" binding:"omitempty,oneof=best-selling price-low-high price-high-low newest oldest name-a-z name-z-a rating-high-low"`
}

// query splits comma separated brand values so both ?brand=a&brand=b and
// ?brand=a,b work.
func (q ListProductsQuery) query() Query {
	brands := make([]string, 0, len(q.Brands))
	for _, raw := range q.Brands {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brands = append(brands, b)
			}
		}
	}
	sortMode := q.Sort
	if sortMode == "" {
		sortMode = SortBestSelling
	}
	return Query{
		Category: q.Category,
		Search:   q.Search,
		Brands:   brands,
		Sort:     sortMode,
	}
}

type ListProductsResponse struct {
	Title      string    `json:"title"`
	Products   []Product `json:"products"`
	Categories []Facet   `json:"categories"`
}

type ListMeta struct {
	Total int    `json:"total"`
	Sort  string `json:"sort"`
}
