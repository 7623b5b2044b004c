// Package query turns raw list parameters into a typed product query. It
// never fails: malformed values fall back to defaults or drop the filter
// branch they belong to.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/jeswanthjohn/api-forge/internal/domain"
)

// Query parameter names
const (
	ParamMinPrice = "minPrice"
	ParamMaxPrice = "maxPrice"
	ParamCategory = "category"
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamLimit    = "limit"
)

// Defaults applied when page or limit are absent
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinPage      = 1
	MinLimit     = 1
)

var sortOptions = map[string]domain.SortSpec{
	"price":      {Field: domain.SortFieldPrice, Order: domain.SortOrderAsc},
	"-price":     {Field: domain.SortFieldPrice, Order: domain.SortOrderDesc},
	"createdAt":  {Field: domain.SortFieldCreatedAt, Order: domain.SortOrderAsc},
	"-createdAt": {Field: domain.SortFieldCreatedAt, Order: domain.SortOrderDesc},
}

// Build resolves filter, sort and pagination from request parameters
func Build(values url.Values) domain.ProductQuery {
	return domain.ProductQuery{
		Filter: BuildFilter(values),
		Sort:   ResolveSort(values.Get(ParamSort)),
		Page: domain.PageSpec{
			Number: resolvePositive(values, ParamPage, DefaultPage, MinPage),
			Size:   resolvePositive(values, ParamLimit, DefaultLimit, MinLimit),
		},
	}
}

// BuildFilter adds a branch only for parameters that are present and usable
func BuildFilter(values url.Values) domain.ProductFilter {
	var filter domain.ProductFilter

	if v, ok := parseNumber(values.Get(ParamMinPrice)); ok {
		filter.PriceMin = &v
	}
	if v, ok := parseNumber(values.Get(ParamMaxPrice)); ok {
		filter.PriceMax = &v
	}
	if category := values.Get(ParamCategory); category != "" {
		filter.Category = &category
	}

	return filter
}

// ResolveSort maps a raw sort value onto the whitelist. Unknown values are
// replaced by DefaultSort, never rejected.
func ResolveSort(raw string) domain.SortSpec {
	if spec, ok := sortOptions[raw]; ok {
		return spec
	}
	return domain.DefaultSort
}

func resolvePositive(values url.Values, key string, def, min int) int {
	if _, present := values[key]; !present {
		return def
	}

	v, ok := parseNumber(values.Get(key))
	if !ok {
		return min
	}

	v = math.Floor(v)
	if v < float64(min) {
		return min
	}
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v)
}

// parseNumber fails closed: anything that is not a finite number is absent
func parseNumber(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
