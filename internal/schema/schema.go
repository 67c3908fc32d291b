// Package schema is the last gate before a profile and its report leave the
// engine. It enforces the output contract and reports the first violation
// with the JSON path of the offending field.
package schema

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/JakeFAU/storefront-insights/internal/analyze"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// Path prefixes match the response envelope.
const (
	profileRoot = "data"
	reportRoot  = "analysis"
)

// Validator checks profiles and reports. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// New builds a Validator with the storefront enum rules registered.
func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	rules := map[string]validator.Func{
		"link_category": func(fl validator.FieldLevel) bool {
			return storefront.LinkCategory(fl.Field().String()).Valid()
		},
		"social_platform": func(fl validator.FieldLevel) bool {
			return storefront.SocialPlatform(fl.Field().String()).Valid()
		},
		"quality_field": func(fl validator.FieldLevel) bool {
			return storefront.QualityField(fl.Field().String()).Valid()
		},
		"quality": func(fl validator.FieldLevel) bool {
			return storefront.Quality(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s rule: %w", tag, err)
		}
	}
	return &Validator{validate: v}, nil
}

// Validate checks the profile and report. The returned error is a
// *storefront.SchemaViolationError.
func (v *Validator) Validate(profile storefront.StoreProfile, report storefront.AnalysisReport) error {
	if err := v.structErr(profileRoot, profile); err != nil {
		return err
	}
	if err := checkProfile(profile); err != nil {
		return err
	}
	if err := v.structErr(reportRoot, report); err != nil {
		return err
	}
	return checkReport(profile, report)
}

func (v *Validator) structErr(root string, s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &storefront.SchemaViolationError{Path: root, Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return &storefront.SchemaViolationError{Path: fieldPath(root, fe.Namespace()), Reason: reason(fe)}
}

// fieldPath swaps the struct type name that leads a validator namespace for root.
func fieldPath(root, namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return root + namespace[i:]
	}
	return root
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return fmt.Sprintf("%q is not an absolute url", fe.Value())
	case "email":
		return fmt.Sprintf("%q is not an email address", fe.Value())
	case "min":
		return "must not be empty"
	case "gte", "lte":
		return fmt.Sprintf("%v is out of range", fe.Value())
	case "link_category", "social_platform", "quality_field", "quality":
		return fmt.Sprintf("%v is not a known %s", fe.Value(), strings.ReplaceAll(fe.Tag(), "_", " "))
	}
	return fmt.Sprintf("failed %s", fe.Tag())
}

func violation(path, format string, args ...any) error {
	return &storefront.SchemaViolationError{Path: path, Reason: fmt.Sprintf(format, args...)}
}

func checkProfile(p storefront.StoreProfile) error {
	if p.ProductCatalog == nil || p.HeroProducts == nil || p.SocialHandles == nil ||
		p.FAQs == nil || p.ImportantLinks == nil {
		return violation(profileRoot, "collections must be present, even when empty")
	}
	if p.ContactInfo.Emails == nil || p.ContactInfo.PhoneNumbers == nil {
		return violation(profileRoot+".contact_info", "emails and phone_numbers must be present")
	}
	for _, policy := range []struct {
		name string
		doc  storefront.PolicyDocument
	}{{"privacy_policy", p.PrivacyPolicy}, {"return_refund_policy", p.ReturnRefundPolicy}} {
		if !policy.doc.Found() && policy.doc.ContentPreview != nil {
			return violation(profileRoot+"."+policy.name+".content_preview", "preview without a policy url")
		}
	}
	for _, list := range []struct {
		name     string
		products []storefront.Product
	}{{"product_catalog", p.ProductCatalog}, {"hero_products", p.HeroProducts}} {
		seen := make(map[string]struct{}, len(list.products))
		for i, prod := range list.products {
			if _, dup := seen[prod.URL]; dup {
				return violation(fmt.Sprintf("%s.%s[%d].url", profileRoot, list.name, i), "duplicate product url %s", prod.URL)
			}
			seen[prod.URL] = struct{}{}
		}
	}
	platforms := make(map[storefront.SocialPlatform]struct{}, len(p.SocialHandles))
	for i, h := range p.SocialHandles {
		if _, dup := platforms[h.Platform]; dup {
			return violation(fmt.Sprintf("%s.social_handles[%d].platform", profileRoot, i), "duplicate platform %s", h.Platform)
		}
		platforms[h.Platform] = struct{}{}
	}
	return nil
}

func checkReport(p storefront.StoreProfile, r storefront.AnalysisReport) error {
	if math.IsNaN(r.CompletenessScore) || r.CompletenessScore < 0 || r.CompletenessScore > 1 {
		return violation(reportRoot+".completeness_score", "%v is out of range", r.CompletenessScore)
	}
	want := analyze.Metrics(p)
	got := r.BasicMetrics
	mismatches := []struct {
		field     string
		got, want any
	}{
		{"total_products", got.TotalProducts, want.TotalProducts},
		{"hero_products_count", got.HeroProductsCount, want.HeroProductsCount},
		{"faq_count", got.FAQCount, want.FAQCount},
		{"has_privacy_policy", got.HasPrivacyPolicy, want.HasPrivacyPolicy},
		{"has_return_policy", got.HasReturnPolicy, want.HasReturnPolicy},
		{"contact_methods", got.ContactMethods, want.ContactMethods},
		{"social_platforms", got.SocialPlatforms, want.SocialPlatforms},
		{"important_links_count", got.ImportantLinksCount, want.ImportantLinksCount},
	}
	for _, m := range mismatches {
		if m.got != m.want {
			return violation(reportRoot+".basic_metrics."+m.field, "is %v but the profile has %v", m.got, m.want)
		}
	}
	for _, field := range storefront.QualityFields {
		if _, ok := r.ContentQuality[field]; !ok {
			return violation(reportRoot+".content_quality."+string(field), "is required")
		}
	}
	if r.Recommendations == nil {
		return violation(reportRoot+".recommendations", "must be present, even when empty")
	}
	return nil
}
