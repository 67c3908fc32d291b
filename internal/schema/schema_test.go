package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/storefront-insights/internal/analyze"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

func ptr(s string) *string { return &s }

func validProfile() storefront.StoreProfile {
	return storefront.StoreProfile{
		WebsiteURL:       "https://shop.example.com",
		BrandName:        "Acme",
		BrandDescription: ptr("Durable outdoor gear."),
		ProductCatalog: []storefront.Product{{
			Title:  "Tote",
			Handle: "tote",
			Price:  ptr("19.99"),
			Tags:   []string{},
			Images: []string{"https://cdn.example.com/tote.jpg"},
			URL:    "https://shop.example.com/products/tote",
		}},
		HeroProducts: []storefront.Product{},
		ContactInfo: storefront.ContactInfo{
			Emails:       []string{"hello@shop.example.com"},
			PhoneNumbers: []string{},
		},
		SocialHandles: []storefront.SocialHandle{
			{Platform: storefront.PlatformInstagram, URL: "https://instagram.com/acme", Handle: ptr("acme")},
		},
		PrivacyPolicy: storefront.PolicyDocument{
			URL:            ptr("https://shop.example.com/policies/privacy-policy"),
			ContentPreview: ptr("We respect your privacy."),
		},
		FAQs:           []storefront.FAQ{{Question: "Ship?", Answer: "Yes."}},
		ImportantLinks: map[storefront.LinkCategory]string{storefront.LinkBlog: "https://shop.example.com/blogs/news"},
		ScrapedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func requireViolation(t *testing.T, err error, path string) {
	t.Helper()
	var sv *storefront.SchemaViolationError
	require.ErrorAs(t, err, &sv)
	require.Equal(t, path, sv.Path, sv.Reason)
}

func TestValidateAcceptsAnalyzedProfile(t *testing.T) {
	t.Parallel()

	v := newValidator(t)
	p := validProfile()
	require.NoError(t, v.Validate(p, analyze.Analyze(p)))
}

func TestValidateProfileViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(p *storefront.StoreProfile)
		path string
	}{
		{"missing brand name", func(p *storefront.StoreProfile) { p.BrandName = "" }, "data.brand_name"},
		{"relative website url", func(p *storefront.StoreProfile) { p.WebsiteURL = "/shop" }, "data.website_url"},
		{"zero scraped at", func(p *storefront.StoreProfile) { p.ScrapedAt = time.Time{} }, "data.scraped_at"},
		{"product without title", func(p *storefront.StoreProfile) { p.ProductCatalog[0].Title = "" }, "data.product_catalog[0].title"},
		{"product relative url", func(p *storefront.StoreProfile) { p.ProductCatalog[0].URL = "/products/tote" }, "data.product_catalog[0].url"},
		{"bad email", func(p *storefront.StoreProfile) { p.ContactInfo.Emails = []string{"not-an-email"} }, "data.contact_info.emails[0]"},
		{"unknown platform", func(p *storefront.StoreProfile) { p.SocialHandles[0].Platform = "myspace" }, "data.social_handles[0].platform"},
		{"empty faq answer", func(p *storefront.StoreProfile) { p.FAQs[0].Answer = "" }, "data.faqs[0].answer"},
		{"unknown link category", func(p *storefront.StoreProfile) {
			p.ImportantLinks = map[storefront.LinkCategory]string{"careers": "https://shop.example.com/pages/careers"}
		}, "data.important_links[careers]"},
		{"relative important link", func(p *storefront.StoreProfile) {
			p.ImportantLinks = map[storefront.LinkCategory]string{storefront.LinkFAQ: "/pages/faq"}
		}, "data.important_links[faq]"},
		{"preview without url", func(p *storefront.StoreProfile) {
			p.ReturnRefundPolicy.ContentPreview = ptr("Returns within 30 days.")
		}, "data.return_refund_policy.content_preview"},
		{"duplicate product url", func(p *storefront.StoreProfile) {
			p.ProductCatalog = append(p.ProductCatalog, p.ProductCatalog[0])
		}, "data.product_catalog[1].url"},
		{"duplicate platform", func(p *storefront.StoreProfile) {
			p.SocialHandles = append(p.SocialHandles, storefront.SocialHandle{Platform: storefront.PlatformInstagram, URL: "https://instagram.com/other"})
		}, "data.social_handles[1].platform"},
		{"nil collection", func(p *storefront.StoreProfile) { p.FAQs = nil }, "data"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newValidator(t)
			p := validProfile()
			tt.edit(&p)
			requireViolation(t, v.Validate(p, analyze.Analyze(p)), tt.path)
		})
	}
}

func TestValidateReportViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(r *storefront.AnalysisReport)
		path string
	}{
		{"score above one", func(r *storefront.AnalysisReport) { r.CompletenessScore = 1.5 }, "analysis.completeness_score"},
		{"metric drift", func(r *storefront.AnalysisReport) { r.BasicMetrics.TotalProducts = 7 }, "analysis.basic_metrics.total_products"},
		{"policy flag drift", func(r *storefront.AnalysisReport) { r.BasicMetrics.HasReturnPolicy = true }, "analysis.basic_metrics.has_return_policy"},
		{"unknown rating", func(r *storefront.AnalysisReport) {
			r.ContentQuality[storefront.FieldFAQs] = "excellent"
		}, "analysis.content_quality[faqs]"},
		{"missing rating", func(r *storefront.AnalysisReport) {
			delete(r.ContentQuality, storefront.FieldSocialHandles)
		}, "analysis.content_quality.social_handles"},
		{"nil recommendations", func(r *storefront.AnalysisReport) { r.Recommendations = nil }, "analysis.recommendations"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newValidator(t)
			p := validProfile()
			r := analyze.Analyze(p)
			tt.edit(&r)
			requireViolation(t, v.Validate(p, r), tt.path)
		})
	}
}

func newValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := New()
	require.NoError(t, err)
	return v
}
