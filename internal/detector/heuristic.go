package detector

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/JakeFAU/storefront-insights/internal/storefront"
)

// DefaultMinVisibleText is the visible-text floor, in non-space runes, below
// which a home page is suspected of being a client-rendered shell.
const DefaultMinVisibleText = 200

// scriptSharePercent is the inline-script share of the body above which a
// sparse page counts as client-rendered even without a framework marker.
const scriptSharePercent = 50

// ErrClientRendered marks a home page whose content is rendered in the browser.
var ErrClientRendered = errors.New("page is rendered client-side")

// headlessMarkers identify headless storefront front ends (Hydrogen/Remix,
// Next.js, Nuxt, plain React/Vue mounts). Matched against the lowercased body.
var headlessMarkers = []struct {
	marker    string
	framework string
}{
	{"__remixcontext", "hydrogen"},
	{"data-hydrogen", "hydrogen"},
	{"__next_data__", "nextjs"},
	{`id="__next"`, "nextjs"},
	{"__nuxt__", "nuxt"},
	{`id="__nuxt"`, "nuxt"},
	{"data-reactroot", "react"},
	{`id="root"`, "react"},
	{`id="app"`, "vue"},
}

// Rendering is the verdict on how a home page was produced.
type Rendering struct {
	ClientRendered bool
	Framework      string
	VisibleRunes   int
	ScriptBytes    int
}

// Err describes a client-rendered verdict as an error wrapping
// ErrClientRendered, or nil for a server-rendered page.
func (r Rendering) Err() error {
	if !r.ClientRendered {
		return nil
	}
	if r.Framework != "" {
		return fmt.Errorf("%w: %s shell with %d visible characters", ErrClientRendered, r.Framework, r.VisibleRunes)
	}
	return fmt.Errorf("%w: %d visible characters, %d bytes of inline script", ErrClientRendered, r.VisibleRunes, r.ScriptBytes)
}

// Heuristic flags home pages whose content is likely rendered client-side,
// where static extraction will come up mostly empty.
type Heuristic struct {
	MinVisibleText int
}

// NewHeuristic creates a detector. Zero uses DefaultMinVisibleText.
func NewHeuristic(minVisibleText int) *Heuristic {
	if minVisibleText <= 0 {
		minVisibleText = DefaultMinVisibleText
	}
	return &Heuristic{MinVisibleText: minVisibleText}
}

// Assess inspects a 2xx response. Pages with enough visible text are never
// flagged, so server-rendered Liquid themes and SSR front ends pass.
func (h *Heuristic) Assess(resp storefront.FetchResponse) Rendering {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Rendering{}
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return Rendering{ClientRendered: true}
	}

	r := measure(resp.Body)
	if r.VisibleRunes >= h.MinVisibleText {
		return r
	}
	lower := bytes.ToLower(resp.Body)
	for _, m := range headlessMarkers {
		if bytes.Contains(lower, []byte(m.marker)) {
			r.Framework = m.framework
			r.ClientRendered = true
			return r
		}
	}
	r.ClientRendered = r.ScriptBytes*100 >= len(resp.Body)*scriptSharePercent
	return r
}

// measure counts visible body text and inline script bytes.
func measure(body []byte) Rendering {
	var r Rendering
	z := html.NewTokenizer(bytes.NewReader(body))
	var skip []atom.Atom
	for {
		switch z.Next() {
		case html.ErrorToken:
			return r
		case html.StartTagToken:
			name, _ := z.TagName()
			switch a := atom.Lookup(name); {
			case a == atom.Body:
				skip = skip[:0]
			case hidden(a):
				skip = append(skip, a)
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if n := len(skip); n > 0 && skip[n-1] == a {
				skip = skip[:n-1]
			}
		case html.TextToken:
			if len(skip) == 0 {
				r.VisibleRunes += countNonSpace(z.Text())
				continue
			}
			if skip[len(skip)-1] == atom.Script {
				r.ScriptBytes += len(strings.TrimSpace(string(z.Text())))
			}
		}
	}
}

func hidden(a atom.Atom) bool {
	switch a {
	case atom.Head, atom.Script, atom.Style, atom.Noscript, atom.Template, atom.Svg:
		return true
	}
	return false
}

func countNonSpace(text []byte) int {
	n := 0
	for _, r := range string(text) {
		if !unicode.IsSpace(r) {
			n++
		}
	}
	return n
}
