package extract

import (
	"context"
	"fmt"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// JSONGetter fetches a JSON resource.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string) (storefront.FetchResponse, error)
}

// CatalogOptions bounds catalog pagination.
type CatalogOptions struct {
	PageSize int
	PageCap  int
}

// CatalogResult is the outcome of walking the catalog.
type CatalogResult struct {
	Products []storefront.Product
	// Pages is the number of pages decoded successfully.
	Pages int
	// Answered reports whether the first page had the catalog shape.
	Answered bool
	// Err is the failure that stopped pagination early, if any. Products
	// gathered before it are kept.
	Err error
}

// CatalogPageURL builds the URL of one catalog page.
func CatalogPageURL(origin string, size, page int) string {
	return fmt.Sprintf("%s/products.json?limit=%d&page=%d", origin, size, page)
}

// Catalog walks /products.json page by page until a page is empty, the page
// cap is reached, or a page fails. Products are deduplicated by URL.
func Catalog(ctx context.Context, getter JSONGetter, origin string, opts CatalogOptions) CatalogResult {
	if opts.PageSize <= 0 {
		opts.PageSize = 250
	}
	if opts.PageCap <= 0 {
		opts.PageCap = 10
	}

	var (
		result CatalogResult
		all    []storefront.Product
	)
	for page := 1; page <= opts.PageCap; page++ {
		pageURL := CatalogPageURL(origin, opts.PageSize, page)
		resp, err := getter.GetJSON(ctx, pageURL)
		if err != nil {
			result.Err = fmt.Errorf("catalog page %d: %w", page, err)
			break
		}
		products, err := ParseCatalogPage(resp.Body, origin)
		if err != nil {
			result.Err = fmt.Errorf("catalog page %d: %w", page, err)
			break
		}
		result.Pages++
		if page == 1 {
			result.Answered = true
		}
		if len(products) == 0 {
			break
		}
		all = append(all, products...)
	}
	result.Products = DedupeProducts(all)
	return result
}
