package product

import "github.com/angelmondragon/salon-retail/pkg/pagination"

// SearchProductsInput captures the inputs needed to paginate/filter the catalog.
type SearchProductsInput struct {
	Query      string
	Pagination pagination.Params
}

// ProductListResult is one page of catalog entries.
type ProductListResult struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}
