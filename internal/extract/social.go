package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

var platformHosts = []struct {
	platform storefront.SocialPlatform
	hosts    []string
}{
	{storefront.PlatformFacebook, []string{"facebook.com", "fb.com", "fb.me"}},
	{storefront.PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{storefront.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{storefront.PlatformTikTok, []string{"tiktok.com"}},
	{storefront.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{storefront.PlatformLinkedIn, []string{"linkedin.com"}},
	{storefront.PlatformPinterest, []string{"pinterest.com", "pin.it"}},
	{storefront.PlatformSnapchat, []string{"snapchat.com"}},
}

// sharePaths mark links that share the current page rather than point at a profile.
var sharePaths = []string{"/sharer", "/share", "/intent", "/dialog", "/pin/create", "/home?status"}

var reservedSegments = map[string]struct{}{
	"www": {}, "web": {}, "home": {}, "explore": {}, "reels": {}, "reel": {}, "p": {},
	"pages": {}, "groups": {}, "notifications": {}, "watch": {}, "embed": {},
	"hashtag": {}, "search": {}, "login": {}, "signup": {}, "policies": {},
}

// SocialHandles collects one profile link per platform, first in document order.
func SocialHandles(doc *goquery.Document) []storefront.SocialHandle {
	handles := []storefront.SocialHandle{}
	if doc == nil {
		return handles
	}
	found := make(map[storefront.SocialPlatform]struct{})
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href := strings.TrimSpace(s.AttrOr("href", ""))
		if strings.HasPrefix(href, "//") {
			href = "https:" + href
		}
		u, err := url.Parse(href)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return
		}
		platform, ok := platformFor(u.Hostname())
		if !ok {
			return
		}
		if _, dup := found[platform]; dup {
			return
		}
		lowerPath := strings.ToLower(u.Path)
		if strings.Trim(lowerPath, "/") == "" || containsAny(lowerPath+"?"+u.RawQuery, sharePaths...) {
			return
		}
		handle, ok := handleFor(platform, u)
		if !ok {
			return
		}
		sh := storefront.SocialHandle{Platform: platform, URL: profileURL(u)}
		if handle != "" {
			sh.Handle = &handle
		}
		found[platform] = struct{}{}
		handles = append(handles, sh)
	})
	return handles
}

func platformFor(host string) (storefront.SocialPlatform, bool) {
	host = strings.ToLower(host)
	for _, entry := range platformHosts {
		for _, domain := range entry.hosts {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return entry.platform, true
			}
		}
	}
	return "", false
}

// handleFor extracts the account name. ok=false means the link is not a profile.
func handleFor(platform storefront.SocialPlatform, u *url.URL) (string, bool) {
	segments := pathSegments(u.Path)
	if len(segments) == 0 {
		return "", false
	}
	first := segments[0]
	switch platform {
	case storefront.PlatformTikTok:
		if strings.HasPrefix(first, "@") && len(first) > 1 {
			return first[1:], true
		}
		return "", false
	case storefront.PlatformYouTube:
		switch {
		case strings.HasPrefix(first, "@") && len(first) > 1:
			return first[1:], true
		case (first == "channel" || first == "c" || first == "user") && len(segments) > 1:
			return segments[1], true
		}
		return "", false
	case storefront.PlatformLinkedIn:
		if (first == "company" || first == "in" || first == "school") && len(segments) > 1 {
			return segments[1], true
		}
		return "", true
	case storefront.PlatformSnapchat:
		if first == "add" && len(segments) > 1 {
			return segments[1], true
		}
		return "", true
	case storefront.PlatformFacebook:
		if first == "profile.php" {
			return u.Query().Get("id"), true
		}
	}
	if _, reserved := reservedSegments[strings.ToLower(first)]; reserved {
		return "", false
	}
	return strings.TrimPrefix(first, "@"), true
}

func pathSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(p, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func profileURL(u *url.URL) string {
	clean := *u
	clean.Fragment = ""
	if clean.Path != "/profile.php" {
		clean.RawQuery = ""
	}
	return clean.String()
}
