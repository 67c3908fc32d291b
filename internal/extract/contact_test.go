package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContact(t *testing.T) {
	t.Parallel()

	page := `<html><head><script>var dsn = "tracking@sentry.io"; var p = "+1 555 000 1111";</script></head><body>
		<a href="mailto:Hello@AcmeGoods.com?subject=Hi">Email us</a>
		<a href="tel:+1-555-123-4567">Call</a>
		<a href="tel:12345">Short</a>
		<p>Write to support@acmegoods.com or noreply@acmegoods.com or help@example.com.</p>
		<p>Phone: (555) 987-6543</p>
		<p>Sprite icon@2x.png</p>
		<img src="logo@2x.png">
		<p>Also hello@acmegoods.com</p>
		<address>123 Main St,
			Portland, OR</address>
	</body></html>`

	info, found := Contact([]byte(page))
	require.True(t, found)
	require.Equal(t, []string{"hello@acmegoods.com", "support@acmegoods.com"}, info.Emails)
	require.Equal(t, []string{"+1-555-123-4567", "(555) 987-6543"}, info.PhoneNumbers)
	require.NotNil(t, info.Address)
	require.Equal(t, "123 Main St, Portland, OR", *info.Address)
	require.Equal(t, 4, info.Methods())
}

func TestContactSchemaAddress(t *testing.T) {
	t.Parallel()

	info, found := Contact([]byte(`<div itemscope><span itemprop="streetAddress">9 Dock Rd</span></div>`))
	require.True(t, found)
	require.Empty(t, info.Emails)
	require.Equal(t, "9 Dock Rd", *info.Address)
}

func TestContactCaps(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "<p>team%d@acmegoods.com</p>", i)
		fmt.Fprintf(&b, `<a href="tel:+1 555 200 %04d">call</a>`, i)
	}
	info, found := Contact([]byte("<body>" + b.String() + "</body>"))
	require.True(t, found)
	require.Len(t, info.Emails, maxEmails)
	require.Len(t, info.PhoneNumbers, maxPhones)
	require.Equal(t, "team0@acmegoods.com", info.Emails[0])
}

func TestContactEmailBoundaries(t *testing.T) {
	t.Parallel()

	page := `<body>
		<p>Questions? Reach out...hello@acme.com anytime.</p>
		<p>Orders: orders.team@shop.acme.com.</p>
		<p>Broken: .dot@acme.com and a..b@acme.com</p>
		<a href="mailto:out...bad@acme.com">bad link</a>
	</body>`

	info, found := Contact([]byte(page))
	require.True(t, found)
	require.Equal(t, []string{"hello@acme.com", "orders.team@shop.acme.com", "dot@acme.com", "b@acme.com"}, info.Emails)
	for _, email := range info.Emails {
		require.NoError(t, emailCheck.Var(email, "email"), email)
	}
}

func TestContactNothingFound(t *testing.T) {
	t.Parallel()

	info, found := Contact([]byte(`<body><p>Just browsing.</p></body>`))
	require.False(t, found)
	require.NotNil(t, info.Emails)
	require.NotNil(t, info.PhoneNumbers)
	require.Nil(t, info.Address)
}

func TestVisibleText(t *testing.T) {
	t.Parallel()

	text := VisibleText([]byte(`<html><head><title>T</title><style>p{}</style></head><body><p>Hello</p><script>x()</script><noscript>js off</noscript><p>world</p></body></html>`))
	require.Equal(t, "Hello world", text)
}
