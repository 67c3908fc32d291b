package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

const descriptionLimit = 200

// ErrNotCatalog reports a body that is not a catalog payload.
var ErrNotCatalog = errors.New("not a catalog payload")

type catalogPayload struct {
	Products *[]productPayload `json:"products"`
}

type singlePayload struct {
	Product *productPayload `json:"product"`
}

type productPayload struct {
	ID          json.RawMessage   `json:"id"`
	Title       string            `json:"title"`
	Handle      string            `json:"handle"`
	BodyHTML    string            `json:"body_html"`
	Vendor      string            `json:"vendor"`
	ProductType string            `json:"product_type"`
	Tags        json.RawMessage   `json:"tags"`
	Variants    []variantPayload  `json:"variants"`
	Images      []json.RawMessage `json:"images"`
}

type variantPayload struct {
	Price          json.RawMessage `json:"price"`
	CompareAtPrice json.RawMessage `json:"compare_at_price"`
	Available      *bool           `json:"available"`
}

// ParseCatalogPage decodes one /products.json page. Products without a handle
// have no identity and are skipped.
func ParseCatalogPage(body []byte, origin string) ([]storefront.Product, error) {
	var payload catalogPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode catalog page: %w", err)
	}
	if payload.Products == nil {
		return nil, ErrNotCatalog
	}
	products := make([]storefront.Product, 0, len(*payload.Products))
	for _, raw := range *payload.Products {
		if p, ok := raw.toProduct(origin); ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// ParseSingleProduct decodes a /products/<handle>.json document.
func ParseSingleProduct(body []byte, origin string) (storefront.Product, error) {
	var payload singlePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return storefront.Product{}, fmt.Errorf("decode product: %w", err)
	}
	if payload.Product == nil {
		return storefront.Product{}, ErrNotCatalog
	}
	p, ok := payload.Product.toProduct(origin)
	if !ok {
		return storefront.Product{}, fmt.Errorf("product has no handle: %w", ErrNotCatalog)
	}
	return p, nil
}

// ProductURL is the canonical storefront URL of a product handle.
func ProductURL(origin, handle string) string {
	return strings.TrimRight(origin, "/") + "/products/" + url.PathEscape(handle)
}

// DedupeProducts keeps the first product seen for each URL, preserving order.
func DedupeProducts(products []storefront.Product) []storefront.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]storefront.Product, 0, len(products))
	for _, p := range products {
		if _, dup := seen[p.URL]; dup {
			continue
		}
		seen[p.URL] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (p productPayload) toProduct(origin string) (storefront.Product, bool) {
	handle := strings.TrimSpace(p.Handle)
	if handle == "" {
		return storefront.Product{}, false
	}
	title := CleanText(p.Title)
	if title == "" {
		title = handle
	}
	product := storefront.Product{
		ID:          scalarString(p.ID),
		Title:       title,
		Handle:      handle,
		Description: Truncate(htmlText(p.BodyHTML), descriptionLimit),
		ProductType: CleanText(p.ProductType),
		Tags:        parseTags(p.Tags),
		Images:      parseImages(p.Images),
		URL:         ProductURL(origin, handle),
	}
	if vendor := CleanText(p.Vendor); vendor != "" {
		product.Vendor = &vendor
	}
	if len(p.Variants) > 0 {
		first := p.Variants[0]
		product.Price = optionalScalar(first.Price)
		product.CompareAtPrice = optionalScalar(first.CompareAtPrice)
		if first.Available != nil {
			product.Available = *first.Available
		}
	}
	return product, true
}

func parseImages(raw []json.RawMessage) []string {
	images := make([]string, 0, len(raw))
	for _, item := range raw {
		var src string
		if err := json.Unmarshal(item, &src); err != nil {
			var obj struct {
				Src string `json:"src"`
			}
			if err := json.Unmarshal(item, &obj); err != nil {
				continue
			}
			src = obj.Src
		}
		src = strings.TrimSpace(src)
		if strings.HasPrefix(src, "//") {
			src = "https:" + src
		}
		if src != "" {
			images = append(images, src)
		}
	}
	return images
}

func parseTags(raw json.RawMessage) []string {
	tags := []string{}
	if len(raw) == 0 {
		return tags
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		var joined string
		if err := json.Unmarshal(raw, &joined); err != nil {
			return tags
		}
		list = strings.Split(joined, ",")
	}
	for _, tag := range list {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// scalarString renders a JSON string or number as text.
func scalarString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return ""
}

func optionalScalar(raw json.RawMessage) *string {
	if s := scalarString(raw); s != "" {
		return &s
	}
	return nil
}

func htmlText(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	doc, err := ParseDocument([]byte(fragment))
	if err != nil {
		return CleanText(fragment)
	}
	return CleanText(doc.Text())
}
