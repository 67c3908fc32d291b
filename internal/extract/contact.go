package extract

import (
	"bytes"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-playground/validator/v10"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

const (
	maxEmails      = 5
	maxPhones      = 3
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var (
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9_%+-]+(?:\.[A-Za-z0-9_%+-]+)*@[A-Za-z0-9-]+(?:\.[A-Za-z0-9-]+)*\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().-]{8,}\d`)

	excludedEmailParts = []string{"@example.", "@domain.", "@test.", "noreply@", "no-reply@", "@sentry", "@email.com"}
	assetSuffixes      = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".css", ".js"}

	// emailCheck applies the same rule the output schema enforces.
	emailCheck = validator.New()
)

// Contact pulls email addresses, phone numbers, and a postal address out of
// an HTML page. Explicit mailto:/tel: links come first, then matches in the
// visible text.
func Contact(body []byte) (storefront.ContactInfo, bool) {
	info := storefront.ContactInfo{Emails: []string{}, PhoneNumbers: []string{}}
	doc, err := ParseDocument(body)
	if err != nil {
		return info, false
	}

	emails := newOrderedSet(maxEmails)
	phones := newOrderedSet(maxPhones)

	doc.Find(`a[href]`).Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		lower := strings.ToLower(href)
		switch {
		case strings.HasPrefix(lower, "mailto:"):
			addr := strings.SplitN(href[len("mailto:"):], "?", 2)[0]
			if unescaped, err := url.QueryUnescape(addr); err == nil {
				addr = unescaped
			}
			addEmail(emails, addr)
		case strings.HasPrefix(lower, "tel:"):
			addPhone(phones, href[len("tel:"):])
		}
	})

	text := VisibleText(body)
	for _, match := range emailPattern.FindAllString(text, -1) {
		addEmail(emails, match)
	}
	for _, match := range phonePattern.FindAllString(text, -1) {
		addPhone(phones, match)
	}

	info.Emails = emails.items
	info.PhoneNumbers = phones.items
	if address := postalAddress(doc); address != "" {
		info.Address = &address
	}
	return info, len(info.Emails) > 0 || len(info.PhoneNumbers) > 0 || info.Address != nil
}

func addEmail(set *orderedSet, raw string) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if emailPattern.FindString(email) != email || emailCheck.Var(email, "email") != nil {
		return
	}
	if containsAny(email, excludedEmailParts...) {
		return
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return
		}
	}
	set.add(email, email)
}

func addPhone(set *orderedSet, raw string) {
	phone := CleanText(raw)
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.Len()
	if n < minPhoneDigits || n > maxPhoneDigits {
		return
	}
	set.add(digits.String(), phone)
}

func postalAddress(doc *goquery.Document) string {
	for _, selector := range []string{"address", `[itemprop="address"]`, `[itemprop="streetAddress"]`} {
		if text := CleanText(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// VisibleText returns the text a reader would see, skipping scripts, styles,
// and other non-rendered elements.
func VisibleText(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	var (
		b    strings.Builder
		skip int
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return CleanText(b.String())
		case html.StartTagToken:
			name, _ := z.TagName()
			if hiddenTag(atom.Lookup(name)) {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if hiddenTag(atom.Lookup(name)) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func hiddenTag(a atom.Atom) bool {
	switch a {
	case atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg, atom.Head:
		return true
	}
	return false
}

// orderedSet keeps the first value seen for each key, up to a cap.
type orderedSet struct {
	limit int
	seen  map[string]struct{}
	items []string
}

func newOrderedSet(limit int) *orderedSet {
	return &orderedSet{limit: limit, seen: make(map[string]struct{}), items: []string{}}
}

func (s *orderedSet) add(key, value string) {
	if len(s.items) >= s.limit {
		return
	}
	if _, dup := s.seen[key]; dup {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, value)
}
