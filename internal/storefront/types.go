// Package storefront defines the data model, collaborator interfaces, and error
// taxonomy shared by the extraction-and-scoring engine.
package storefront

import (
	"net/http"
	"time"
)

// StoreProfile is the normalized brand profile assembled for one analysis.
type StoreProfile struct {
	WebsiteURL         string                  `json:"website_url" validate:"required,url"`
	BrandName          string                  `json:"brand_name" validate:"required"`
	BrandDescription   *string                 `json:"brand_description" validate:"omitempty,min=1"`
	ProductCatalog     []Product               `json:"product_catalog" validate:"dive"`
	HeroProducts       []Product               `json:"hero_products" validate:"dive"`
	ContactInfo        ContactInfo             `json:"contact_info"`
	SocialHandles      []SocialHandle          `json:"social_handles" validate:"dive"`
	PrivacyPolicy      PolicyDocument          `json:"privacy_policy"`
	ReturnRefundPolicy PolicyDocument          `json:"return_refund_policy"`
	FAQs               []FAQ                   `json:"faqs" validate:"dive"`
	ImportantLinks     map[LinkCategory]string `json:"important_links" validate:"dive,keys,link_category,endkeys,required,url"`
	ScrapedAt          time.Time               `json:"scraped_at" validate:"required"`
}

// Product is a single catalog entry. Its identity is URL.
type Product struct {
	ID             string   `json:"id,omitempty"`
	Title          string   `json:"title" validate:"required"`
	Handle         string   `json:"handle,omitempty"`
	Description    string   `json:"description,omitempty"`
	Vendor         *string  `json:"vendor"`
	ProductType    string   `json:"product_type,omitempty"`
	Price          *string  `json:"price"`
	CompareAtPrice *string  `json:"compare_at_price,omitempty"`
	Available      bool     `json:"available"`
	Tags           []string `json:"tags"`
	Images         []string `json:"images" validate:"dive,required"`
	URL            string   `json:"url" validate:"required,url"`
}

// ContactInfo groups the contact channels found on the storefront.
type ContactInfo struct {
	Emails       []string `json:"emails" validate:"dive,email"`
	PhoneNumbers []string `json:"phone_numbers" validate:"dive,required"`
	Address      *string  `json:"address" validate:"omitempty,min=1"`
}

// Methods returns the number of distinct contact channels.
func (c ContactInfo) Methods() int {
	return len(c.Emails) + len(c.PhoneNumbers)
}

// SocialHandle is a link to the brand on one social network.
type SocialHandle struct {
	Platform SocialPlatform `json:"platform" validate:"required,social_platform"`
	URL      string         `json:"url" validate:"required,url"`
	Handle   *string        `json:"handle" validate:"omitempty,min=1"`
}

// PolicyDocument is a policy page. A nil URL means the policy was not found.
type PolicyDocument struct {
	URL            *string `json:"url" validate:"omitempty,url"`
	ContentPreview *string `json:"content_preview"`
}

// Found reports whether the policy page was located.
func (p PolicyDocument) Found() bool {
	return p.URL != nil
}

// FAQ is one question/answer pair in page order.
type FAQ struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// BasicMetrics are counts and flags derived from a StoreProfile.
type BasicMetrics struct {
	TotalProducts       int  `json:"total_products" validate:"min=0"`
	HeroProductsCount   int  `json:"hero_products_count" validate:"min=0"`
	FAQCount            int  `json:"faq_count" validate:"min=0"`
	HasPrivacyPolicy    bool `json:"has_privacy_policy"`
	HasReturnPolicy     bool `json:"has_return_policy"`
	ContactMethods      int  `json:"contact_methods" validate:"min=0"`
	SocialPlatforms     int  `json:"social_platforms" validate:"min=0"`
	ImportantLinksCount int  `json:"important_links_count" validate:"min=0"`
}

// AnalysisReport carries the derived metrics and ratings for a profile.
type AnalysisReport struct {
	BasicMetrics      BasicMetrics             `json:"basic_metrics"`
	CompletenessScore float64                  `json:"completeness_score" validate:"gte=0,lte=1"`
	ContentQuality    map[QualityField]Quality `json:"content_quality" validate:"required,dive,keys,quality_field,endkeys,quality"`
	Recommendations   []string                 `json:"recommendations"`
}

// FetchRequest captures everything needed to fetch a URL once.
type FetchRequest struct {
	URL     string
	Headers http.Header
}

// FetchResponse is the result of a single fetch attempt.
type FetchResponse struct {
	URL        string
	StatusCode int
	Headers    http.Header
	Body       []byte
	Duration   time.Duration
}
