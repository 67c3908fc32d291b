package engine

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/storefront-insights/internal/extract"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

const (
	maxContactEmails = 5
	maxContactPhones = 3
)

// assembly is the single owner of a profile while it is being built.
type assembly struct {
	pageURL     string
	origin      string
	profile     storefront.StoreProfile
	homeContact storefront.ContactInfo
	homeFAQs    []storefront.FAQ
	warnings    []storefront.PartialExtractionWarning
}

func newAssembly(pageURL, origin string) *assembly {
	return &assembly{
		pageURL: pageURL,
		origin:  origin,
		profile: storefront.StoreProfile{WebsiteURL: pageURL},
	}
}

// fromHome fills the fields that come straight from the home page.
func (a *assembly) fromHome(doc *goquery.Document, body []byte, maxFAQs int) {
	a.profile.BrandName = extract.BrandName(doc, a.pageURL)
	if desc, ok := extract.BrandDescription(doc); ok {
		a.profile.BrandDescription = &desc
	}
	a.profile.SocialHandles = extract.SocialHandles(doc)
	a.profile.ImportantLinks = extract.ImportantLinks(doc, a.pageURL)
	a.homeContact, _ = extract.Contact(body)
	a.homeFAQs = extract.FAQs(doc, maxFAQs)
}

func (a *assembly) warn(field, url string, err error) {
	a.warnings = append(a.warnings, storefront.PartialExtractionWarning{Field: field, URL: url, Err: err})
}

// warnErr records err, keeping the field and URL when err already is a warning.
func (a *assembly) warnErr(field string, err error) {
	var w storefront.PartialExtractionWarning
	if errors.As(err, &w) {
		a.warnings = append(a.warnings, w)
		return
	}
	a.warn(field, "", err)
}

// finish returns the profile with every collection present, even when empty.
func (a *assembly) finish() storefront.StoreProfile {
	p := a.profile
	if p.ProductCatalog == nil {
		p.ProductCatalog = []storefront.Product{}
	}
	if p.HeroProducts == nil {
		p.HeroProducts = []storefront.Product{}
	}
	if p.SocialHandles == nil {
		p.SocialHandles = []storefront.SocialHandle{}
	}
	if p.FAQs == nil {
		p.FAQs = []storefront.FAQ{}
	}
	if p.ImportantLinks == nil {
		p.ImportantLinks = map[storefront.LinkCategory]string{}
	}
	if p.ContactInfo.Emails == nil {
		p.ContactInfo.Emails = []string{}
	}
	if p.ContactInfo.PhoneNumbers == nil {
		p.ContactInfo.PhoneNumbers = []string{}
	}
	return p
}

// mergeContact combines home page and contact page details, home page first.
func mergeContact(home, page storefront.ContactInfo) storefront.ContactInfo {
	out := storefront.ContactInfo{
		Emails:       mergeUnique(maxContactEmails, strings.ToLower, home.Emails, page.Emails),
		PhoneNumbers: mergeUnique(maxContactPhones, digitsOnly, home.PhoneNumbers, page.PhoneNumbers),
		Address:      home.Address,
	}
	if out.Address == nil {
		out.Address = page.Address
	}
	return out
}

func mergeUnique(limit int, key func(string) string, lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]struct{})
	for _, list := range lists {
		for _, v := range list {
			if len(out) >= limit {
				return out
			}
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}
