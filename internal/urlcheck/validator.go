package urlcheck

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/detector"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
	"github.com/JakeFAU/storefront-insights/internal/telemetry"
)

// Getter is the subset of the fetch client the validator needs.
type Getter interface {
	Get(ctx context.Context, rawURL string) (storefront.FetchResponse, error)
	GetJSON(ctx context.Context, rawURL string) (storefront.FetchResponse, error)
}

// Result is the outcome of a storefront check.
type Result struct {
	URL          string
	IsValidStore bool
	Markers      []string
}

// Validator checks whether a URL serves a storefront.
type Validator struct {
	getter Getter
	logger *zap.Logger
}

// NewValidator builds a Validator.
func NewValidator(getter Getter, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{getter: getter, logger: logger.Named("urlcheck")}
}

// Validate normalizes raw and checks the site. Only malformed input is an
// error; unreachable or foreign sites are a negative result.
func (v *Validator) Validate(ctx context.Context, raw string) (Result, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return Result{}, err
	}
	ctx, span := telemetry.StartSpan(ctx, "urlcheck.validate", "url", normalized)
	defer span.End()

	result := Result{URL: normalized}
	if v.catalogAnswers(ctx, Origin(normalized)) {
		result.IsValidStore = true
		result.Markers = []string{"products.json"}
		return result, nil
	}

	resp, err := v.getter.Get(ctx, normalized)
	if err != nil && len(resp.Body) == 0 && resp.Headers == nil {
		v.logger.Debug("home page unavailable", zap.String("url", normalized), zap.Error(err))
		return result, nil
	}
	match := detector.Platform(resp)
	result.IsValidStore = match.Matched()
	result.Markers = match.Markers
	v.logger.Debug("platform check",
		zap.String("url", normalized),
		zap.Bool("matched", result.IsValidStore),
		zap.Strings("markers", match.Markers),
	)
	return result, nil
}

// catalogAnswers queries the public catalog endpoint, which only storefronts serve.
func (v *Validator) catalogAnswers(ctx context.Context, origin string) bool {
	resp, err := v.getter.GetJSON(ctx, origin+"/products.json?limit=1")
	if err != nil {
		return false
	}
	return HasCatalogShape(resp.Body)
}

// HasCatalogShape reports whether body is a JSON object with a products array.
func HasCatalogShape(body []byte) bool {
	var payload struct {
		Products *[]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Products != nil
}
