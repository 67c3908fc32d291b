package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// DefaultMaxFAQs caps the FAQs kept per page.
const DefaultMaxFAQs = 10

var (
	qMarker = regexp.MustCompile(`(?i)(?:^|\s)(?:Q|Question)\s*:\s*`)
	aMarker = regexp.MustCompile(`(?i)(?:^|\s)(?:A|Answer)\s*:\s*`)
)

type faqMethod func(doc *goquery.Document) []storefront.FAQ

// FAQs extracts question/answer pairs in page order. Extraction methods are
// tried from most to least structured and the first that yields pairs wins.
// Questions are deduplicated case-insensitively and at most limit pairs are
// kept (DefaultMaxFAQs when limit <= 0).
func FAQs(doc *goquery.Document, limit int) []storefront.FAQ {
	if doc == nil {
		return []storefront.FAQ{}
	}
	if limit <= 0 {
		limit = DefaultMaxFAQs
	}
	methods := []faqMethod{accordionFAQs, detailsFAQs, definitionFAQs, headingFAQs, markerFAQs}
	for _, method := range methods {
		if faqs := dedupeFAQs(method(doc), limit); len(faqs) > 0 {
			return faqs
		}
	}
	return []storefront.FAQ{}
}

func accordionFAQs(doc *goquery.Document) []storefront.FAQ {
	var faqs []storefront.FAQ
	doc.Find("div, section, li").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return classHas(s, "accordion", "faq", "collaps", "toggle")
	}).Each(func(_ int, item *goquery.Selection) {
		question := item.Find("h2, h3, h4, h5, button, summary, span, a").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return classHas(s, "question", "title", "header", "heading", "toggle", "trigger")
		}).First()
		answer := item.Find("div, p").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return classHas(s, "answer", "content", "body", "panel")
		}).First()
		if question.Length() == 0 || answer.Length() == 0 {
			return
		}
		faqs = appendFAQ(faqs, question.Text(), answer.Text())
	})
	return faqs
}

func detailsFAQs(doc *goquery.Document) []storefront.FAQ {
	var faqs []storefront.FAQ
	doc.Find("details").Each(func(_ int, details *goquery.Selection) {
		summary := details.ChildrenFiltered("summary").First()
		if summary.Length() == 0 {
			return
		}
		body := details.Clone()
		body.ChildrenFiltered("summary").Remove()
		faqs = appendFAQ(faqs, summary.Text(), body.Text())
	})
	return faqs
}

func definitionFAQs(doc *goquery.Document) []storefront.FAQ {
	var faqs []storefront.FAQ
	doc.Find("dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		faqs = appendFAQ(faqs, dt.Text(), dd.Text())
	})
	return faqs
}

func headingFAQs(doc *goquery.Document) []storefront.FAQ {
	var faqs []storefront.FAQ
	doc.Find("h2, h3, h4, h5, h6, strong").Each(func(_ int, heading *goquery.Selection) {
		question := CleanText(heading.Text())
		if !strings.Contains(question, "?") {
			return
		}
		answer := heading.NextAllFiltered("p, div").First()
		if answer.Length() == 0 && heading.Is("strong") {
			answer = heading.Parent().NextAllFiltered("p, div").First()
		}
		if answer.Length() == 0 {
			return
		}
		faqs = appendFAQ(faqs, question, answer.Text())
	})
	return faqs
}

func markerFAQs(doc *goquery.Document) []storefront.FAQ {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript").Remove()
	text := CleanText(body.Text())

	var faqs []storefront.FAQ
	starts := qMarker.FindAllStringIndex(text, -1)
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := text[loc[1]:end]
		split := aMarker.FindStringIndex(block)
		if split == nil {
			continue
		}
		answer := block[split[1]:]
		if len(CleanText(answer)) <= 10 {
			continue
		}
		faqs = appendFAQ(faqs, block[:split[0]], answer)
	}
	return faqs
}

func appendFAQ(faqs []storefront.FAQ, question, answer string) []storefront.FAQ {
	question, answer = CleanText(question), CleanText(answer)
	if question == "" || answer == "" || strings.EqualFold(question, answer) {
		return faqs
	}
	return append(faqs, storefront.FAQ{Question: question, Answer: answer})
}

func dedupeFAQs(faqs []storefront.FAQ, limit int) []storefront.FAQ {
	out := make([]storefront.FAQ, 0, min(len(faqs), limit))
	seen := make(map[string]struct{}, len(faqs))
	for _, faq := range faqs {
		key := strings.ToLower(CleanText(faq.Question))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, faq)
		if len(out) == limit {
			break
		}
	}
	return out
}
