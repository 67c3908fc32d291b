package analyze

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

func ptr(s string) *string { return &s }

func emptyProfile() storefront.StoreProfile {
	return storefront.StoreProfile{
		WebsiteURL:     "https://shop.example.com",
		BrandName:      "Shop",
		ProductCatalog: []storefront.Product{},
		HeroProducts:   []storefront.Product{},
		ContactInfo:    storefront.ContactInfo{Emails: []string{}, PhoneNumbers: []string{}},
		SocialHandles:  []storefront.SocialHandle{},
		FAQs:           []storefront.FAQ{},
		ImportantLinks: map[storefront.LinkCategory]string{},
		ScrapedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func product(handle string, withImage, withPrice bool) storefront.Product {
	p := storefront.Product{
		Title:  handle,
		Handle: handle,
		Tags:   []string{},
		Images: []string{},
		URL:    "https://shop.example.com/products/" + handle,
	}
	if withImage {
		p.Images = []string{"https://cdn.example.com/" + handle + ".jpg"}
	}
	if withPrice {
		p.Price = ptr("10.00")
	}
	return p
}

// setField makes one checklist item present on the profile.
func setField(p *storefront.StoreProfile, field ChecklistField) {
	switch field {
	case CheckBrandDescription:
		p.BrandDescription = ptr("Durable outdoor gear made from recycled materials in Oregon.")
	case CheckProducts:
		p.ProductCatalog = append(p.ProductCatalog, product("tote", true, true))
	case CheckContact:
		p.ContactInfo.Emails = append(p.ContactInfo.Emails, "hello@shop.example.com")
	case CheckSocial:
		p.SocialHandles = append(p.SocialHandles, storefront.SocialHandle{Platform: storefront.PlatformInstagram, URL: "https://instagram.com/shop", Handle: ptr("shop")})
	case CheckPrivacyPolicy:
		p.PrivacyPolicy = storefront.PolicyDocument{URL: ptr("https://shop.example.com/policies/privacy-policy")}
	case CheckReturnPolicy:
		p.ReturnRefundPolicy = storefront.PolicyDocument{URL: ptr("https://shop.example.com/policies/refund-policy")}
	case CheckFAQs:
		p.FAQs = append(p.FAQs, storefront.FAQ{Question: "Ship?", Answer: "Yes."})
	}
}

func fullProfile() storefront.StoreProfile {
	p := emptyProfile()
	for _, f := range ChecklistFields() {
		setField(&p, f)
	}
	return p
}

func TestCompletenessBounds(t *testing.T) {
	t.Parallel()

	require.Equal(t, 0.0, Completeness(emptyProfile()))
	require.Equal(t, 1.0, Completeness(fullProfile()))
	require.Equal(t, 1.0, WeightOf(ChecklistFields()...))
}

func TestCompletenessMonotonic(t *testing.T) {
	t.Parallel()

	fields := ChecklistFields()
	// Every subset of the checklist, extended by each missing item.
	for mask := 0; mask < 1<<len(fields); mask++ {
		base := emptyProfile()
		var present []ChecklistField
		for i, f := range fields {
			if mask&(1<<i) != 0 {
				setField(&base, f)
				present = append(present, f)
			}
		}
		score := Completeness(base)
		require.Equal(t, WeightOf(present...), score)

		for i, f := range fields {
			if mask&(1<<i) != 0 {
				continue
			}
			grown := base
			grown.ProductCatalog = append([]storefront.Product(nil), base.ProductCatalog...)
			grown.FAQs = append([]storefront.FAQ(nil), base.FAQs...)
			grown.SocialHandles = append([]storefront.SocialHandle(nil), base.SocialHandles...)
			grown.ContactInfo.Emails = append([]string(nil), base.ContactInfo.Emails...)
			setField(&grown, f)
			require.Greater(t, Completeness(grown), score, "adding %s", f)
		}
	}
}

func TestCompletenessIgnoresBlankDescription(t *testing.T) {
	t.Parallel()

	p := emptyProfile()
	p.BrandDescription = ptr("   ")
	require.Equal(t, 0.0, Completeness(p))
}

func TestMetricsDerivedFromProfile(t *testing.T) {
	t.Parallel()

	p := fullProfile()
	p.HeroProducts = []storefront.Product{product("tote", true, true)}
	p.ContactInfo.PhoneNumbers = []string{"+1 555 123 4567"}
	p.ImportantLinks = map[storefront.LinkCategory]string{
		storefront.LinkBlog:  "https://shop.example.com/blogs/news",
		storefront.LinkAbout: "https://shop.example.com/pages/about",
	}

	require.Equal(t, storefront.BasicMetrics{
		TotalProducts:       len(p.ProductCatalog),
		HeroProductsCount:   len(p.HeroProducts),
		FAQCount:            len(p.FAQs),
		HasPrivacyPolicy:    true,
		HasReturnPolicy:     true,
		ContactMethods:      2,
		SocialPlatforms:     len(p.SocialHandles),
		ImportantLinksCount: 2,
	}, Metrics(p))

	require.Equal(t, storefront.BasicMetrics{}, Metrics(emptyProfile()))
}

func TestQualityMissing(t *testing.T) {
	t.Parallel()

	q := Quality(emptyProfile())
	require.Len(t, q, len(storefront.QualityFields))
	for _, f := range storefront.QualityFields {
		require.Equal(t, storefront.QualityMissing, q[f], f)
	}
}

func TestQualityThresholds(t *testing.T) {
	t.Parallel()

	longAnswer := strings.Repeat("a", MinFAQAnswerChars)
	longPreview := strings.Repeat("p", MinPolicyChars)

	tests := []struct {
		name  string
		field storefront.QualityField
		edit  func(p *storefront.StoreProfile)
		want  storefront.Quality
	}{
		{"short description", storefront.FieldBrandDescription, func(p *storefront.StoreProfile) {
			p.BrandDescription = ptr(strings.Repeat("d", MinDescriptionChars-1))
		}, storefront.QualityBasic},
		{"long description", storefront.FieldBrandDescription, func(p *storefront.StoreProfile) {
			p.BrandDescription = ptr(strings.Repeat("d", MinDescriptionChars))
		}, storefront.QualityGood},
		{"catalog coverage met", storefront.FieldProductCatalog, func(p *storefront.StoreProfile) {
			p.ProductCatalog = []storefront.Product{
				product("a", true, true), product("b", true, true), product("c", true, true),
				product("d", true, true), product("e", false, true),
			}
		}, storefront.QualityGood},
		{"catalog missing images", storefront.FieldProductCatalog, func(p *storefront.StoreProfile) {
			p.ProductCatalog = []storefront.Product{product("a", true, true), product("b", false, true)}
		}, storefront.QualityBasic},
		{"catalog missing prices", storefront.FieldProductCatalog, func(p *storefront.StoreProfile) {
			p.ProductCatalog = []storefront.Product{product("a", true, false)}
		}, storefront.QualityBasic},
		{"too few faqs", storefront.FieldFAQs, func(p *storefront.StoreProfile) {
			p.FAQs = []storefront.FAQ{{Question: "q1", Answer: longAnswer}, {Question: "q2", Answer: longAnswer}}
		}, storefront.QualityBasic},
		{"short answers", storefront.FieldFAQs, func(p *storefront.StoreProfile) {
			p.FAQs = []storefront.FAQ{{Question: "q1", Answer: "yes"}, {Question: "q2", Answer: "no"}, {Question: "q3", Answer: "maybe"}}
		}, storefront.QualityBasic},
		{"rich faqs", storefront.FieldFAQs, func(p *storefront.StoreProfile) {
			p.FAQs = []storefront.FAQ{{Question: "q1", Answer: longAnswer}, {Question: "q2", Answer: longAnswer}, {Question: "q3", Answer: longAnswer}}
		}, storefront.QualityGood},
		{"address only", storefront.FieldContactInfo, func(p *storefront.StoreProfile) {
			p.ContactInfo.Address = ptr("1 Main St")
		}, storefront.QualityMissing},
		{"address and one method", storefront.FieldContactInfo, func(p *storefront.StoreProfile) {
			p.ContactInfo.Address = ptr("1 Main St")
			p.ContactInfo.PhoneNumbers = []string{"5551234567"}
		}, storefront.QualityBasic},
		{"one contact method", storefront.FieldContactInfo, func(p *storefront.StoreProfile) {
			p.ContactInfo.Emails = []string{"a@shop.example.com"}
		}, storefront.QualityBasic},
		{"two contact methods", storefront.FieldContactInfo, func(p *storefront.StoreProfile) {
			p.ContactInfo.Emails = []string{"a@shop.example.com"}
			p.ContactInfo.PhoneNumbers = []string{"5551234567"}
		}, storefront.QualityGood},
		{"one platform", storefront.FieldSocialHandles, func(p *storefront.StoreProfile) {
			setField(p, CheckSocial)
		}, storefront.QualityBasic},
		{"two platforms", storefront.FieldSocialHandles, func(p *storefront.StoreProfile) {
			setField(p, CheckSocial)
			p.SocialHandles = append(p.SocialHandles, storefront.SocialHandle{Platform: storefront.PlatformTikTok, URL: "https://tiktok.com/@shop"})
		}, storefront.QualityGood},
		{"policy without text", storefront.FieldPrivacyPolicy, func(p *storefront.StoreProfile) {
			setField(p, CheckPrivacyPolicy)
		}, storefront.QualityBasic},
		{"policy with long preview", storefront.FieldPrivacyPolicy, func(p *storefront.StoreProfile) {
			setField(p, CheckPrivacyPolicy)
			p.PrivacyPolicy.ContentPreview = ptr(longPreview)
		}, storefront.QualityGood},
		{"return policy short preview", storefront.FieldReturnRefundPolicy, func(p *storefront.StoreProfile) {
			setField(p, CheckReturnPolicy)
			p.ReturnRefundPolicy.ContentPreview = ptr("Returns within 30 days.")
		}, storefront.QualityBasic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := emptyProfile()
			tt.edit(&p)
			require.Equal(t, tt.want, Quality(p)[tt.field])
		})
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	recs := Recommendations(emptyProfile())
	require.Len(t, recs, 8)
	require.Contains(t, recs, "No social media handles found")

	p := fullProfile()
	p.ImportantLinks = map[storefront.LinkCategory]string{
		storefront.LinkBlog:     "https://shop.example.com/blogs/news",
		storefront.LinkAbout:    "https://shop.example.com/pages/about",
		storefront.LinkShipping: "https://shop.example.com/policies/shipping-policy",
	}
	require.Empty(t, Recommendations(p))
	require.NotNil(t, Recommendations(p))
}

func TestAnalyze(t *testing.T) {
	t.Parallel()

	p := emptyProfile()
	p.BrandDescription = ptr("A short blurb.")
	p.ProductCatalog = []storefront.Product{product("tote", true, true)}

	report := Analyze(p)
	require.Equal(t, 1, report.BasicMetrics.TotalProducts)
	require.Equal(t, WeightOf(CheckBrandDescription, CheckProducts), report.CompletenessScore)
	require.InDelta(t, 0.4, report.CompletenessScore, 1e-9)
	require.Equal(t, storefront.QualityBasic, report.ContentQuality[storefront.FieldBrandDescription])
	require.Equal(t, storefront.QualityGood, report.ContentQuality[storefront.FieldProductCatalog])
	require.Equal(t, storefront.QualityMissing, report.ContentQuality[storefront.FieldFAQs])
}

func TestAddressOnlyContactAgreesWithChecklist(t *testing.T) {
	t.Parallel()

	p := emptyProfile()
	p.ContactInfo.Address = ptr("1 Main St")

	report := Analyze(p)
	require.False(t, Present(p, CheckContact))
	require.Equal(t, storefront.QualityMissing, report.ContentQuality[storefront.FieldContactInfo])
	require.Zero(t, report.BasicMetrics.ContactMethods)
	require.Contains(t, report.Recommendations, "Contact information not found - check the contact page")
}
