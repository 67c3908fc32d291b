// Package analyze derives metrics, a completeness score, content quality
// ratings, and recommendations from an assembled store profile. Everything
// here is a pure function of the profile.
package analyze

import (
	"strings"
	"unicode/utf8"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// ChecklistField is one item of the completeness checklist.
type ChecklistField string

// Checklist items.
const (
	CheckBrandDescription ChecklistField = "brand_description"
	CheckProducts         ChecklistField = "product_catalog"
	CheckContact          ChecklistField = "contact_info"
	CheckSocial           ChecklistField = "social_handles"
	CheckPrivacyPolicy    ChecklistField = "privacy_policy"
	CheckReturnPolicy     ChecklistField = "return_refund_policy"
	CheckFAQs             ChecklistField = "faqs"
)

// totalBasisPoints is the sum of all checklist weights.
const totalBasisPoints = 10000

// Checklist weights in basis points. They sum to totalBasisPoints and are all
// positive, so the score is 1.0 with everything present, 0.0 with nothing,
// and grows whenever a missing item appears.
var checklist = []struct {
	field  ChecklistField
	weight int
}{
	{CheckBrandDescription, 1500},
	{CheckProducts, 2500},
	{CheckContact, 1500},
	{CheckSocial, 1000},
	{CheckPrivacyPolicy, 1000},
	{CheckReturnPolicy, 1000},
	{CheckFAQs, 1500},
}

// Richness thresholds for a "good" rating.
const (
	MinDescriptionChars = 50
	MinCatalogCoverage  = 80 // percent of products with an image and a price
	MinFAQs             = 3
	MinFAQAnswerChars   = 30 // mean answer length
	MinContactMethods   = 2
	MinSocialPlatforms  = 2
	MinPolicyChars      = 200
	MinImportantLinks   = 3
)

// ChecklistFields lists the checklist in scoring order.
func ChecklistFields() []ChecklistField {
	out := make([]ChecklistField, len(checklist))
	for i, item := range checklist {
		out[i] = item.field
	}
	return out
}

// WeightOf returns the combined weight of the given items as a fraction of 1.
func WeightOf(fields ...ChecklistField) float64 {
	seen := make(map[ChecklistField]struct{}, len(fields))
	bp := 0
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		for _, item := range checklist {
			if item.field == f {
				bp += item.weight
			}
		}
	}
	return float64(bp) / totalBasisPoints
}

// Present reports whether a checklist item is satisfied by the profile.
func Present(p storefront.StoreProfile, field ChecklistField) bool {
	switch field {
	case CheckBrandDescription:
		return p.BrandDescription != nil && strings.TrimSpace(*p.BrandDescription) != ""
	case CheckProducts:
		return len(p.ProductCatalog) > 0
	case CheckContact:
		return p.ContactInfo.Methods() > 0
	case CheckSocial:
		return len(p.SocialHandles) > 0
	case CheckPrivacyPolicy:
		return p.PrivacyPolicy.Found()
	case CheckReturnPolicy:
		return p.ReturnRefundPolicy.Found()
	case CheckFAQs:
		return len(p.FAQs) > 0
	}
	return false
}

// Metrics counts the profile's collections. Metrics are never set any other way.
func Metrics(p storefront.StoreProfile) storefront.BasicMetrics {
	return storefront.BasicMetrics{
		TotalProducts:       len(p.ProductCatalog),
		HeroProductsCount:   len(p.HeroProducts),
		FAQCount:            len(p.FAQs),
		HasPrivacyPolicy:    p.PrivacyPolicy.Found(),
		HasReturnPolicy:     p.ReturnRefundPolicy.Found(),
		ContactMethods:      p.ContactInfo.Methods(),
		SocialPlatforms:     len(p.SocialHandles),
		ImportantLinksCount: len(p.ImportantLinks),
	}
}

// Completeness is the weighted share of checklist items present, in [0, 1].
func Completeness(p storefront.StoreProfile) float64 {
	bp := 0
	for _, item := range checklist {
		if Present(p, item.field) {
			bp += item.weight
		}
	}
	return float64(bp) / totalBasisPoints
}

// Quality rates every field in storefront.QualityFields.
func Quality(p storefront.StoreProfile) map[storefront.QualityField]storefront.Quality {
	return map[storefront.QualityField]storefront.Quality{
		storefront.FieldBrandDescription:   descriptionQuality(p.BrandDescription),
		storefront.FieldProductCatalog:     catalogQuality(p.ProductCatalog),
		storefront.FieldFAQs:               faqQuality(p.FAQs),
		storefront.FieldContactInfo:        contactQuality(p.ContactInfo),
		storefront.FieldSocialHandles:      countQuality(len(p.SocialHandles), MinSocialPlatforms),
		storefront.FieldPrivacyPolicy:      policyQuality(p.PrivacyPolicy),
		storefront.FieldReturnRefundPolicy: policyQuality(p.ReturnRefundPolicy),
	}
}

func descriptionQuality(desc *string) storefront.Quality {
	if desc == nil || strings.TrimSpace(*desc) == "" {
		return storefront.QualityMissing
	}
	if utf8.RuneCountInString(*desc) < MinDescriptionChars {
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

func catalogQuality(products []storefront.Product) storefront.Quality {
	if len(products) == 0 {
		return storefront.QualityMissing
	}
	withImages, withPrices := 0, 0
	for _, p := range products {
		if len(p.Images) > 0 {
			withImages++
		}
		if p.Price != nil && *p.Price != "" {
			withPrices++
		}
	}
	total := len(products)
	if withImages*100 < total*MinCatalogCoverage || withPrices*100 < total*MinCatalogCoverage {
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

func faqQuality(faqs []storefront.FAQ) storefront.Quality {
	if len(faqs) == 0 {
		return storefront.QualityMissing
	}
	answerChars := 0
	for _, f := range faqs {
		answerChars += utf8.RuneCountInString(f.Answer)
	}
	if len(faqs) < MinFAQs || answerChars < MinFAQAnswerChars*len(faqs) {
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

// contactQuality counts emails and phones only; an address alone is not a
// contact method, matching the completeness checklist.
func contactQuality(c storefront.ContactInfo) storefront.Quality {
	if c.Methods() == 0 {
		return storefront.QualityMissing
	}
	if c.Methods() < MinContactMethods {
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

func countQuality(n, good int) storefront.Quality {
	switch {
	case n == 0:
		return storefront.QualityMissing
	case n < good:
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

func policyQuality(doc storefront.PolicyDocument) storefront.Quality {
	if !doc.Found() {
		return storefront.QualityMissing
	}
	if doc.ContentPreview == nil || utf8.RuneCountInString(*doc.ContentPreview) < MinPolicyChars {
		return storefront.QualityBasic
	}
	return storefront.QualityGood
}

// Recommendations lists fixed suggestions for fields that were not found.
func Recommendations(p storefront.StoreProfile) []string {
	recs := []string{}
	if !Present(p, CheckBrandDescription) {
		recs = append(recs, "Brand description not found - add a meta description or an about section")
	}
	if !Present(p, CheckProducts) {
		recs = append(recs, "No products found - verify the /products.json endpoint is public")
	}
	if !Present(p, CheckPrivacyPolicy) {
		recs = append(recs, "Privacy policy not found - check common policy pages")
	}
	if !Present(p, CheckReturnPolicy) {
		recs = append(recs, "Return/refund policy not found")
	}
	if !Present(p, CheckFAQs) {
		recs = append(recs, "No FAQs found - check for FAQ or help pages")
	}
	if !Present(p, CheckContact) {
		recs = append(recs, "Contact information not found - check the contact page")
	}
	if !Present(p, CheckSocial) {
		recs = append(recs, "No social media handles found")
	}
	if len(p.ImportantLinks) < MinImportantLinks {
		recs = append(recs, "Limited important links found - may need manual verification")
	}
	return recs
}

// Analyze builds the full report for a profile.
func Analyze(p storefront.StoreProfile) storefront.AnalysisReport {
	return storefront.AnalysisReport{
		BasicMetrics:      Metrics(p),
		CompletenessScore: Completeness(p),
		ContentQuality:    Quality(p),
		Recommendations:   Recommendations(p),
	}
}
