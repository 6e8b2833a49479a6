package catalog

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

const (
	SortBestSelling  = "best-selling"
	SortPriceLowHigh = "price-low-high"
	SortPriceHighLow = "price-high-low"
	SortNewest       = "newest"
	SortOldest       = "oldest"
	SortNameAZ       = "name-a-z"
	SortNameZA       = "name-z-a"
	SortRating       = "rating-high-low"
)

var numericID = regexp.MustCompile(`^\d+$`)

var labelSeparators = regexp.MustCompile(`[-_\s]+`)

type Query struct {
	Category string
	Search   string
	Brands   []string
	Sort     string
}

// Filter returns the products matching q, in input order. A search with an
// exact name match returns only the exact matches.
func Filter(products []Product, q Query) []Product {
	out := make([]Product, 0, len(products))
	category := strings.ToLower(strings.TrimSpace(q.Category))
	for _, p := range products {
		if category != "" && strings.ToLower(p.Category) != category {
			continue
		}
		out = append(out, p)
	}

	if search := strings.ToLower(strings.TrimSpace(q.Search)); search != "" {
		exact := make([]Product, 0)
		partial := make([]Product, 0)
		for _, p := range out {
			name := strings.ToLower(p.Name)
			switch {
			case name == search:
				exact = append(exact, p)
			case strings.Contains(name, search):
				partial = append(partial, p)
			}
		}
		if len(exact) > 0 {
			out = exact
		} else {
			out = partial
		}
	}

	if len(q.Brands) > 0 {
		brands := make(map[string]struct{}, len(q.Brands))
		for _, b := range q.Brands {
			brands[b] = struct{}{}
		}
		kept := out[:0]
		for _, p := range out {
			if _, ok := brands[p.Brand]; ok {
				kept = append(kept, p)
			}
		}
		out = kept
	}
	return out
}

// Sort orders products in place. Unknown modes fall back to best-selling.
func Sort(products []Product, mode string) {
	var less func(a, b Product) bool
	switch mode {
	case SortPriceLowHigh:
		less = func(a, b Product) bool { return a.SalePrice.LessThan(b.SalePrice) }
	case SortPriceHighLow:
		less = func(a, b Product) bool { return a.SalePrice.GreaterThan(b.SalePrice) }
	case SortNewest:
		less = func(a, b Product) bool { return idNumber(a.ID) > idNumber(b.ID) }
	case SortOldest:
		less = func(a, b Product) bool { return idNumber(a.ID) < idNumber(b.ID) }
	case SortNameAZ:
		less = func(a, b Product) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
	case SortNameZA:
		less = func(a, b Product) bool { return strings.ToLower(a.Name) > strings.ToLower(b.Name) }
	case SortRating:
		less = func(a, b Product) bool { return a.Rating > b.Rating }
	default:
		less = func(a, b Product) bool { return a.Bestseller && !b.Bestseller }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func idNumber(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Facets counts products per category. Numeric categories are labelled from
// names (category id to name), other categories are title-cased.
func Facets(products []Product, names map[string]string) []Facet {
	byID := make(map[string]*Facet)
	order := make([]string, 0)
	for _, p := range products {
		id := p.Category
		if id == "" {
			id = DefaultCategory
		}
		if f, ok := byID[id]; ok {
			f.Count++
			continue
		}
		byID[id] = &Facet{ID: id, Label: categoryLabel(id, names), Count: 1}
		order = append(order, id)
	}

	out := make([]Facet, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Label) < strings.ToLower(out[j].Label)
	})
	return out
}

func categoryLabel(id string, names map[string]string) string {
	if numericID.MatchString(id) {
		if name, ok := names[id]; ok && name != "" {
			return name
		}
		return "Category " + id
	}
	return titleCase(labelSeparators.Split(id, -1))
}

// Title is the heading shown for a category filter.
func Title(category string) string {
	if strings.TrimSpace(category) == "" {
		return "All Products"
	}
	return titleCase(strings.Split(category, "-"))
}

func titleCase(words []string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		parts = append(parts, string(r))
	}
	return strings.Join(parts, " ")
}
