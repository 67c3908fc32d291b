// Package engine runs one storefront analysis end to end: it fetches the home
// page and catalog, fans the optional pages out to a worker pool, assembles
// the profile, scores it, and validates the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/JakeFAU/storefront-insights/internal/analyze"
	"github.com/JakeFAU/storefront-insights/internal/detector"
	"github.com/JakeFAU/storefront-insights/internal/dispatcher"
	"github.com/JakeFAU/storefront-insights/internal/extract"
	"github.com/JakeFAU/storefront-insights/internal/schema"
	"github.com/JakeFAU/storefront-insights/internal/storefront"
	"github.com/JakeFAU/storefront-insights/internal/telemetry"
	"github.com/JakeFAU/storefront-insights/internal/urlcheck"
)

// Analysis outcomes recorded in storefront_analyses_total.
const (
	statusSuccess         = "success"
	statusInvalidURL      = "invalid_url"
	statusNotAStore       = "not_a_store"
	statusFetchError      = "fetch_error"
	statusSchemaViolation = "schema_violation"
)

// Config bounds a single analysis.
type Config struct {
	Workers           int
	RequestTimeout    time.Duration
	CatalogPageCap    int
	CatalogPageSize   int
	MaxHeroProducts   int
	MaxFAQs           int
	RequireStorefront bool
}

// Result is everything one analysis produced.
type Result struct {
	Profile  storefront.StoreProfile
	Report   storefront.AnalysisReport
	Warnings []storefront.PartialExtractionWarning
}

// Engine analyzes storefronts. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	getter    urlcheck.Getter
	validator *urlcheck.Validator
	schema    *schema.Validator
	pool      *dispatcher.Dispatcher
	heuristic *detector.Heuristic
	clock     storefront.Clock
	cfg       Config
	logger    *zap.Logger
}

// New builds an Engine on top of a retrying getter.
func New(getter urlcheck.Getter, clk storefront.Clock, cfg Config, logger *zap.Logger) (*Engine, error) {
	if getter == nil {
		return nil, errors.New("engine requires a getter")
	}
	if clk == nil {
		return nil, errors.New("engine requires a clock")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxHeroProducts <= 0 {
		cfg.MaxHeroProducts = 6
	}
	if cfg.MaxFAQs <= 0 {
		cfg.MaxFAQs = extract.DefaultMaxFAQs
	}
	validator, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("build schema validator: %w", err)
	}
	return &Engine{
		getter:    getter,
		validator: urlcheck.NewValidator(getter, logger),
		schema:    validator,
		pool:      dispatcher.New(cfg.Workers, logger),
		heuristic: detector.NewHeuristic(0),
		clock:     clk,
		cfg:       cfg,
		logger:    logger.Named("engine"),
	}, nil
}

// Validate reports whether raw points at a storefront. Only malformed input
// is an error.
func (e *Engine) Validate(ctx context.Context, raw string) (bool, error) {
	res, err := e.validator.Validate(ctx, raw)
	if err != nil {
		return false, err
	}
	return res.IsValidStore, nil
}

// Analyze extracts and scores the storefront at raw. Only the home page is
// mandatory; every other resource that cannot be fetched is recorded as a
// warning and left empty in the profile.
func (e *Engine) Analyze(ctx context.Context, raw string) (Result, error) {
	normalized, err := urlcheck.Normalize(raw)
	if err != nil {
		telemetry.ObserveAnalysis(statusInvalidURL)
		return Result{}, err
	}
	var cancel context.CancelFunc
	if e.cfg.RequestTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	ctx, span := telemetry.StartSpan(ctx, "engine.analyze", "url", normalized)
	defer span.End()

	start := time.Now()
	origin := urlcheck.Origin(normalized)
	logger := e.logger.With(zap.String("url", normalized))

	catalogCh := make(chan extract.CatalogResult, 1)
	go func() {
		catalogCh <- extract.Catalog(ctx, e.getter, origin, extract.CatalogOptions{
			PageSize: e.cfg.CatalogPageSize,
			PageCap:  e.cfg.CatalogPageCap,
		})
	}()

	home, err := e.getter.Get(ctx, normalized)
	if err != nil {
		telemetry.ObserveAnalysis(statusFetchError)
		span.SetStatus(codes.Error, err.Error())
		logger.Warn("home page fetch failed", zap.Error(err))
		return Result{}, fmt.Errorf("fetch home page: %w", err)
	}

	a := newAssembly(normalized, origin)
	doc, err := extract.ParseDocument(home.Body)
	if err != nil {
		a.warn("home_page", normalized, err)
		doc, _ = extract.ParseDocument(nil)
	}
	if rendering := e.heuristic.Assess(home); rendering.ClientRendered {
		a.warn("home_page", normalized, rendering.Err())
		logger.Warn("home page looks client-rendered",
			zap.String("framework", rendering.Framework),
			zap.Int("visible_runes", rendering.VisibleRunes),
		)
	}

	var (
		catalog     extract.CatalogResult
		catalogDone bool
	)
	if match := detector.Platform(home); !match.Matched() && e.cfg.RequireStorefront {
		catalog, catalogDone = <-catalogCh, true
		if !catalog.Answered {
			telemetry.ObserveAnalysis(statusNotAStore)
			logger.Info("site is not a storefront")
			return Result{}, &storefront.NotAStoreError{URL: normalized}
		}
	}

	a.fromHome(doc, home.Body, e.cfg.MaxFAQs)
	e.runOptional(ctx, a, doc)

	if !catalogDone {
		catalog = <-catalogCh
	}
	a.profile.ProductCatalog = catalog.Products
	if catalog.Err != nil {
		a.warn("product_catalog", extract.CatalogPageURL(origin, pageSize(e.cfg.CatalogPageSize), catalog.Pages+1), catalog.Err)
	}
	e.resolveHeroes(ctx, a, extract.HeroHandles(doc, normalized, e.cfg.MaxHeroProducts))

	a.profile.ScrapedAt = e.clock.Now().UTC()
	profile := a.finish()
	report := analyze.Analyze(profile)
	if err := e.schema.Validate(profile, report); err != nil {
		telemetry.ObserveAnalysis(statusSchemaViolation)
		span.SetStatus(codes.Error, err.Error())
		logger.Error("profile failed schema validation", zap.Error(err))
		return Result{}, err
	}

	for _, w := range a.warnings {
		logger.Info("optional resource not extracted",
			zap.String("field", w.Field),
			zap.String("resource", w.URL),
			zap.NamedError("reason", w.Err),
		)
	}
	telemetry.ObserveAnalysis(statusSuccess)
	telemetry.ObserveCompleteness(report.CompletenessScore)
	span.SetAttributes(
		attribute.Float64("completeness", report.CompletenessScore),
		attribute.Int("products", report.BasicMetrics.TotalProducts),
		attribute.Int("warnings", len(a.warnings)),
	)
	logger.Info("analysis complete",
		zap.Float64("completeness", report.CompletenessScore),
		zap.Int("products", report.BasicMetrics.TotalProducts),
		zap.Int("faqs", report.BasicMetrics.FAQCount),
		zap.Int("warnings", len(a.warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return Result{Profile: profile, Report: report, Warnings: a.warnings}, nil
}

// runOptional fetches policies, FAQs, and contact details through the pool.
// Each task owns the field it writes.
func (e *Engine) runOptional(ctx context.Context, a *assembly, doc *goquery.Document) {
	privacyLinks, returnLinks := extract.PolicyLinks(doc, a.pageURL)
	var (
		privacy, returns storefront.PolicyDocument
		faqs             []storefront.FAQ
		contact          storefront.ContactInfo
	)
	tasks := []dispatcher.Task{
		{Name: "privacy_policy", Run: func(ctx context.Context) (err error) {
			privacy, err = e.findPolicy(ctx, "privacy_policy", extract.WithFallbacks(privacyLinks, a.origin, extract.PrivacyPolicyPaths))
			return err
		}},
		{Name: "return_refund_policy", Run: func(ctx context.Context) (err error) {
			returns, err = e.findPolicy(ctx, "return_refund_policy", extract.WithFallbacks(returnLinks, a.origin, extract.ReturnPolicyPaths))
			return err
		}},
		{Name: "faqs", Run: func(ctx context.Context) (err error) {
			faqs, err = e.findFAQs(ctx, extract.WithFallbacks(extract.FAQLinks(doc, a.pageURL), a.origin, extract.FAQPaths))
			return err
		}},
		{Name: "contact_info", Run: func(ctx context.Context) (err error) {
			contact, err = e.findContact(ctx, extract.WithFallbacks(extract.ContactLinks(doc, a.pageURL), a.origin, extract.ContactPaths))
			return err
		}},
	}
	errs := e.pool.Run(ctx, tasks)

	a.profile.PrivacyPolicy = privacy
	a.profile.ReturnRefundPolicy = returns
	a.profile.ContactInfo = mergeContact(a.homeContact, contact)
	a.profile.FAQs = faqs
	if len(a.profile.FAQs) == 0 {
		a.profile.FAQs = a.homeFAQs
	}
	for i, err := range errs {
		if err == nil {
			continue
		}
		switch tasks[i].Name {
		case "faqs":
			if len(a.profile.FAQs) > 0 {
				continue
			}
		case "contact_info":
			if a.profile.ContactInfo.Methods() > 0 || a.profile.ContactInfo.Address != nil {
				continue
			}
		}
		a.warnErr(tasks[i].Name, err)
	}
}

// resolveHeroes looks featured handles up in the catalog and fetches the rest.
func (e *Engine) resolveHeroes(ctx context.Context, a *assembly, handles []string) {
	byHandle := make(map[string]storefront.Product, len(a.profile.ProductCatalog))
	for _, p := range a.profile.ProductCatalog {
		byHandle[p.Handle] = p
	}
	resolved := make([]*storefront.Product, len(handles))
	var tasks []dispatcher.Task
	for i, handle := range handles {
		if p, ok := byHandle[handle]; ok {
			resolved[i] = &p
			continue
		}
		productURL := extract.ProductURL(a.origin, handle) + ".json"
		tasks = append(tasks, dispatcher.Task{Name: "hero_products", Run: func(ctx context.Context) error {
			resp, err := e.getter.GetJSON(ctx, productURL)
			if err != nil {
				return storefront.PartialExtractionWarning{Field: "hero_products", URL: productURL, Err: err}
			}
			p, err := extract.ParseSingleProduct(resp.Body, a.origin)
			if err != nil {
				return storefront.PartialExtractionWarning{Field: "hero_products", URL: productURL, Err: err}
			}
			resolved[i] = &p
			return nil
		}})
	}
	for _, err := range e.pool.Run(ctx, tasks) {
		if err != nil {
			a.warnErr("hero_products", err)
		}
	}

	heroes := make([]storefront.Product, 0, len(resolved))
	for _, p := range resolved {
		if p != nil {
			heroes = append(heroes, *p)
		}
	}
	a.profile.HeroProducts = extract.DedupeProducts(heroes)
}

// findPolicy returns the first candidate page that answers with a 2xx.
func (e *Engine) findPolicy(ctx context.Context, field string, candidates []string) (storefront.PolicyDocument, error) {
	var lastErr error
	for _, candidate := range candidates {
		resp, err := e.getter.Get(ctx, candidate)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		found := candidate
		doc := storefront.PolicyDocument{URL: &found}
		if preview, ok := extract.PolicyPreview(resp.Body, candidate); ok {
			doc.ContentPreview = &preview
		}
		return doc, nil
	}
	return storefront.PolicyDocument{}, notFound(field, candidates, lastErr)
}

// findFAQs returns the pairs from the first candidate page that has any.
func (e *Engine) findFAQs(ctx context.Context, candidates []string) ([]storefront.FAQ, error) {
	var lastErr error
	for _, candidate := range candidates {
		resp, err := e.getter.Get(ctx, candidate)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		doc, err := extract.ParseDocument(resp.Body)
		if err != nil {
			lastErr = err
			continue
		}
		if faqs := extract.FAQs(doc, e.cfg.MaxFAQs); len(faqs) > 0 {
			return faqs, nil
		}
	}
	return nil, notFound("faqs", candidates, lastErr)
}

// findContact extracts contact details from the first contact page found.
func (e *Engine) findContact(ctx context.Context, candidates []string) (storefront.ContactInfo, error) {
	var lastErr error
	for _, candidate := range candidates {
		resp, err := e.getter.Get(ctx, candidate)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		info, _ := extract.Contact(resp.Body)
		return info, nil
	}
	return storefront.ContactInfo{}, notFound("contact_info", candidates, lastErr)
}

func notFound(field string, candidates []string, err error) error {
	tried := ""
	if len(candidates) > 0 {
		tried = candidates[0]
	}
	return storefront.PartialExtractionWarning{Field: field, URL: tried, Err: err}
}

func pageSize(configured int) int {
	if configured <= 0 {
		return 250
	}
	return configured
}
