package extract

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

const homePage = `<html><body>
	<a href="#top">Top</a>
	<a href="javascript:void(0)">Track</a>
	<a href="mailto:hi@shop.example.com">Contact</a>
	<a href="https://other.example.org/blog">Blog</a>
	<a href="/pages/track-order">Track your order</a>
	<a href="/pages/contact">Contact us</a>
	<a href="/blogs/news">Journal</a>
	<a href="https://www.shop.example.com/pages/about-us">Our Story</a>
	<a href="/policies/shipping-policy">Shipping</a>
	<a href="/pages/faq">FAQ</a>
	<a href="/pages/contact-2">Contact</a>
	<a href="/policies/privacy-policy">Privacy</a>
	<a href="/policies/refund-policy?ref=footer">Refunds</a>
	<a href="/pages/returns">Returns</a>
	<a href="/policies/privacy-policy">Privacy again</a>
	<a href="/products/alpha">Alpha</a>
	<a href="/collections/all/products/beta">Beta</a>
	<a href="/products/alpha">Alpha again</a>
	<a href="/products/gamma.json">Gamma feed</a>
	<a href="/products/delta">Delta</a>
</body></html>`

func TestImportantLinks(t *testing.T) {
	t.Parallel()

	links := ImportantLinks(mustDoc(t, homePage), origin)
	require.Equal(t, map[storefront.LinkCategory]string{
		storefront.LinkOrderTracking: "https://shop.example.com/pages/track-order",
		storefront.LinkContactUs:     "https://shop.example.com/pages/contact",
		storefront.LinkBlog:          "https://shop.example.com/blogs/news",
		storefront.LinkAbout:         "https://www.shop.example.com/pages/about-us",
		storefront.LinkShipping:      "https://shop.example.com/policies/shipping-policy",
		storefront.LinkFAQ:           "https://shop.example.com/pages/faq",
	}, links)
}

func TestImportantLinksMatchWholeWords(t *testing.T) {
	t.Parallel()

	page := `<body>
		<a href="/collections/border-rugs">Border rugs</a>
		<a href="/pages/newsletter">Join our newsletter</a>
		<a href="/pages/helpful-tools">Tools</a>
		<a href="/pages/aboutique">Our boutique</a>
		<a href="/apps/order-status">Where is my package?</a>
		<a href="/blogs/journal">Stories</a>
	</body>`

	links := ImportantLinks(mustDoc(t, page), origin)
	require.Equal(t, map[storefront.LinkCategory]string{
		storefront.LinkOrderTracking: "https://shop.example.com/apps/order-status",
		storefront.LinkBlog:          "https://shop.example.com/blogs/journal",
	}, links)
}

func TestImportantLinksEmpty(t *testing.T) {
	t.Parallel()

	links := ImportantLinks(mustDoc(t, `<body><p>Nothing here</p></body>`), origin)
	require.NotNil(t, links)
	require.Empty(t, links)
}

func TestPolicyLinks(t *testing.T) {
	t.Parallel()

	privacy, returns := PolicyLinks(mustDoc(t, homePage), origin)
	require.Equal(t, []string{"https://shop.example.com/policies/privacy-policy"}, privacy)
	require.Equal(t, []string{
		"https://shop.example.com/policies/refund-policy",
		"https://shop.example.com/pages/returns",
	}, returns)

	candidates := WithFallbacks(privacy, origin, PrivacyPolicyPaths)
	require.Equal(t, []string{
		"https://shop.example.com/policies/privacy-policy",
		"https://shop.example.com/pages/privacy-policy",
		"https://shop.example.com/privacy-policy",
		"https://shop.example.com/pages/privacy",
	}, candidates)
}

func TestFAQAndContactLinks(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, homePage)
	require.Equal(t, []string{"https://shop.example.com/pages/faq"}, FAQLinks(doc, origin))
	require.Equal(t, []string{
		"https://shop.example.com/pages/contact",
		"https://shop.example.com/pages/contact-2",
	}, ContactLinks(doc, origin))
}

func TestHeroHandles(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, homePage)
	require.Equal(t, []string{"alpha", "beta"}, HeroHandles(doc, origin, 2))
	require.Equal(t, []string{"alpha", "beta", "delta"}, HeroHandles(doc, origin, 0))
}

func TestWithFallbacksOnly(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"https://shop.example.com/pages/contact",
		"https://shop.example.com/contact",
		"https://shop.example.com/pages/contact-us",
		"https://shop.example.com/contact-us",
	}, WithFallbacks(nil, origin+"/", ContactPaths))
}
