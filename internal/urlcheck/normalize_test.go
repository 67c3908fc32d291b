package urlcheck

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"memy.co.in", "https://memy.co.in"},
		{"  https://Shop.Example.com/  ", "https://shop.example.com"},
		{"http://shop.example.com/collections/all/?page=2#top", "http://shop.example.com/collections/all"},
		{"HTTPS://WWW.Example.com", "https://www.example.com"},
		{"http://localhost:8080/", "http://localhost:8080"},
		{"http://127.0.0.1:3000", "http://127.0.0.1:3000"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in)
		require.NoError(t, err, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeRejects(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		"",
		"   ",
		"ftp://shop.example.com",
		"not a url",
		"https://",
		"shopexample",
		"https://shop_example!.com",
		"javascript:alert(1)",
	} {
		_, err := Normalize(in)
		var invalid *storefront.InvalidURLError
		require.ErrorAs(t, err, &invalid, "input %q", in)
		require.Equal(t, in, invalid.Input)
	}
}

func TestOriginAndSameSite(t *testing.T) {
	t.Parallel()

	require.Equal(t, "https://shop.example.com", Origin("https://shop.example.com/collections/all"))
	require.Equal(t, "http://localhost:8080", Origin("http://localhost:8080"))

	require.True(t, SameSite("https://shop.example.com", "https://www.shop.example.com/pages/faq"))
	require.True(t, SameSite("https://shop.example.com", "http://SHOP.example.com/x"))
	require.False(t, SameSite("https://shop.example.com", "https://facebook.com/shop"))
}
