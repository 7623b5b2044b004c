package domain

// SortField is a product column the list operation may order by
type SortField string

const (
	SortFieldPrice     SortField = "price"
	SortFieldCreatedAt SortField = "created_at"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// SortSpec is one of the four whitelisted orderings
type SortSpec struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is used whenever the requested ordering is absent or unknown
var DefaultSort = SortSpec{Field: SortFieldCreatedAt, Order: SortOrderDesc}

// ProductFilter narrows a product listing. A nil field means the branch is
// not applied.
type ProductFilter struct {
	PriceMin *float64
	PriceMax *float64
	Category *string
}

// PageSpec holds 1-based pagination, both values are always >= 1
type PageSpec struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip
func (p PageSpec) Offset() int {
	return (p.Number - 1) * p.Size
}

// ProductQuery is the request-scoped filter, sort and page triple
type ProductQuery struct {
	Filter ProductFilter
	Sort   SortSpec
	Page   PageSpec
}
