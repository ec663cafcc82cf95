// Package pipeline runs one market analysis end to end: collect, normalize,
// analyze and score, render. It owns the live/mock fallback decision and the
// error taxonomy of a run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ppiankov/marketlens/internal/analyze"
	"github.com/ppiankov/marketlens/internal/cache"
	"github.com/ppiankov/marketlens/internal/collect"
	"github.com/ppiankov/marketlens/internal/llm"
	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/normalize"
	"github.com/ppiankov/marketlens/internal/report"
	"github.com/ppiankov/marketlens/internal/sentiment"
	"github.com/ppiankov/marketlens/internal/source"
	"github.com/ppiankov/marketlens/internal/util"
)

// Orchestrator runs analyses. It holds no per-run state and is safe for
// concurrent use.
type Orchestrator struct {
	source     collect.Source    // nil when no live source is configured
	mock       collect.Collector // fallback collector
	collectCfg model.CollectConfig
	normalizer *normalize.Normalizer
	thresholds sentiment.Thresholds
	narrator   *report.Narrator
	newWriter  func(dir string) report.ArtifactWriter
	observer   Observer
	logger     *util.Logger
	now        func() time.Time
}

// Option customises an Orchestrator
type Option func(*Orchestrator)

// WithSource sets the live source used when a run allows live collection
func WithSource(s collect.Source) Option {
	return func(o *Orchestrator) { o.source = s }
}

// WithMockCollector replaces the fallback collector
func WithMockCollector(c collect.Collector) Option {
	return func(o *Orchestrator) { o.mock = c }
}

// WithNarrator sets the narrative writer (default: deterministic text only)
func WithNarrator(n *report.Narrator) Option {
	return func(o *Orchestrator) { o.narrator = n }
}

// WithWriterFactory sets how artifact writers are built for an output dir
func WithWriterFactory(f func(dir string) report.ArtifactWriter) Option {
	return func(o *Orchestrator) { o.newWriter = f }
}

// WithObserver registers a transition hook
func WithObserver(obs Observer) Option {
	return func(o *Orchestrator) { o.observer = obs }
}

// WithLogger sets the logger
func WithLogger(l *util.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the clock used for GeneratedAt
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator with the collection policy from cfg
func New(cfg model.CollectConfig, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		mock:       collect.NewMockCollector(),
		collectCfg: cfg,
		thresholds: sentiment.DefaultThresholds,
		newWriter:  func(dir string) report.ArtifactWriter { return report.NewFileWriter(dir) },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = util.NopLogger()
	}
	if o.narrator == nil {
		o.narrator = report.NewNarrator(nil, o.logger)
	}
	o.normalizer = normalize.New(o.logger)
	return o
}

// NewFromConfig wires the live source, its cache and the narrative provider
// from the loaded configuration. A live source or LLM provider that cannot be
// built is logged and left out; runs then use mock data or deterministic text.
func NewFromConfig(cfg *model.Config, logger *util.Logger, opts ...Option) *Orchestrator {
	if logger == nil {
		logger = util.NopLogger()
	}

	base := []Option{WithLogger(logger)}

	if cfg.Live.Endpoint != "" {
		var c cache.Cache = cache.Nop{}
		if cfg.Cache.Enabled {
			c = cache.FromConfig(cfg.Cache)
		}
		src, err := source.New(cfg.Live, c, logger)
		if err != nil {
			logger.Warn("live source disabled: %v", err)
		} else {
			base = append(base, WithSource(src))
		}
	}

	if cfg.LLM.Provider != "" {
		provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logger.Warn("LLM narrative disabled: %v", err)
		} else {
			base = append(base, WithNarrator(report.NewNarrator(provider, logger)))
		}
	}

	return New(cfg.Collect, append(base, opts...)...)
}

// RunAnalysis runs one analysis with the default configuration. Live
// collection needs a configured endpoint, so AllowLive here always falls back
// to mock data; use NewFromConfig for live runs.
func RunAnalysis(ctx context.Context, query string, cfg model.RunConfig) (*model.AnalysisResult, error) {
	return New(model.DefaultConfig().Collect).Run(ctx, query, cfg)
}

// Run executes the pipeline for query. On success the result carries the
// report path; on failure the result is nil and the error is a *RunError.
func (o *Orchestrator) Run(ctx context.Context, query string, cfg model.RunConfig) (result *model.AnalysisResult, err error) {
	m := newMachine(query, o.observe)

	defer func() {
		if p := recover(); p != nil {
			o.logger.Error("run %q panicked in %s: %v", query, m.state, p)
			result, err = nil, m.fail(ErrInternal, fmt.Errorf("panic: %v", p))
		}
	}()

	q, perr := model.ParseQuery(query)
	if perr != nil {
		return nil, m.fail(ErrInvalidQuery, perr)
	}

	if err := m.to(StateCollecting); err != nil {
		return nil, m.fail(ErrInternal, err)
	}
	records, src, err := o.collect(ctx, m, q, cfg)
	if err != nil {
		return nil, err
	}

	if err := m.to(StateNormalizing); err != nil {
		return nil, m.fail(ErrInternal, err)
	}
	products, skipped := o.normalizer.Normalize(records)

	if err := m.to(StateAnalyzing); err != nil {
		return nil, m.fail(ErrInternal, err)
	}
	an, err := o.analyze(q, products)
	if err != nil {
		return nil, m.fail(ErrInternal, err)
	}

	res := &model.AnalysisResult{
		Query:        q,
		DataSource:   src,
		ProductCount: len(products),
		SkippedCount: skipped,
		Stats:        an.stats,
		Sentiment:    an.sentiment,
		Insights:     an.insights,
		Products:     products,
		GeneratedAt:  o.now().UTC(),
	}
	if err := checkInvariants(res, len(records)); err != nil {
		return nil, m.fail(ErrInternal, err)
	}

	if err := m.to(StateRendering); err != nil {
		return nil, m.fail(ErrInternal, err)
	}
	assembler := report.NewAssembler(o.newWriter(cfg.OutputDir), o.narrator, o.logger)
	// Cancellation is only observed during collection
	art, err := assembler.Assemble(context.WithoutCancel(ctx), res, cfg.WriteJSON)
	if err != nil {
		if errors.Is(err, report.ErrWrite) {
			return nil, m.fail(ErrArtifactWrite, err)
		}
		return nil, m.fail(ErrInternal, err)
	}

	out := *res
	out.ReportPath = art.HTMLPath
	out.JSONPath = art.JSONPath

	if err := m.to(StateDone); err != nil {
		return nil, m.fail(ErrInternal, err)
	}
	o.logger.Info("%q: %d products (%s data), report %s", q, out.ProductCount, out.DataSource, out.ReportPath)
	return &out, nil
}

// collect applies the fallback policy: live when allowed and configured,
// mock otherwise or whenever live fails for a reason other than cancellation.
func (o *Orchestrator) collect(ctx context.Context, m *machine, q model.Query, cfg model.RunConfig) ([]model.RawRecord, model.DataSource, error) {
	if cfg.AllowLive {
		if o.source == nil {
			o.logger.Warn("%q: live collection requested but no live source configured, using mock data", q)
		} else {
			timeout := cfg.LiveTimeout
			if timeout <= 0 {
				timeout = o.collectCfg.Timeout
			}
			live := collect.NewLiveCollector(o.source, timeout, o.collectCfg.MaxAttempts, o.collectCfg.Backoff, o.logger)

			records, src, err := live.Collect(ctx, q)
			if err == nil {
				return records, src, nil
			}
			if ctx.Err() != nil {
				return nil, "", m.fail(ErrCanceled, ctx.Err())
			}
			o.logger.Warn("%q: live collection failed, falling back to mock data: %v", q, err)
		}
		if err := m.to(StateCollectingFallback); err != nil {
			return nil, "", m.fail(ErrInternal, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, "", m.fail(ErrCanceled, err)
	}

	records, src, err := o.mock.Collect(ctx, q)
	if err != nil {
		return nil, "", m.fail(ErrCollectionFailure, fmt.Errorf("%w: %v", collect.ErrCollectionExhausted, err))
	}
	return records, src, nil
}

type analysis struct {
	stats     model.MarketStats
	insights  model.Insights
	sentiment model.SentimentSummary
}

// analyze runs the market analyzer and the sentiment scorer concurrently on
// the same read-only product slice
func (o *Orchestrator) analyze(q model.Query, products []model.CanonicalProduct) (analysis, error) {
	var (
		out    analysis
		wg     sync.WaitGroup
		panics [2]any
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		defer func() { panics[0] = recover() }()
		out.stats = analyze.Analyze(products, q)
		out.insights = analyze.Insights(products)
	}()
	go func() {
		defer wg.Done()
		defer func() { panics[1] = recover() }()
		out.sentiment = o.thresholds.Score(products)
	}()
	wg.Wait()

	if panics[0] != nil {
		return analysis{}, fmt.Errorf("market analyzer panic: %v", panics[0])
	}
	if panics[1] != nil {
		return analysis{}, fmt.Errorf("sentiment scorer panic: %v", panics[1])
	}
	return out, nil
}

// checkInvariants verifies the assembled result before it is rendered
func checkInvariants(r *model.AnalysisResult, rawCount int) error {
	s := r.Stats
	switch {
	case r.ProductCount+r.SkippedCount != rawCount:
		return fmt.Errorf("product count %d + skipped %d != raw count %d", r.ProductCount, r.SkippedCount, rawCount)
	case s.Count != r.ProductCount:
		return fmt.Errorf("stats count %d != product count %d", s.Count, r.ProductCount)
	case s.PricedCount > 0 && (s.PriceMin > s.PriceMean || s.PriceMean > s.PriceMax):
		return fmt.Errorf("price mean %.2f outside [%.2f, %.2f]", s.PriceMean.Float(), s.PriceMin.Float(), s.PriceMax.Float())
	case !r.Sentiment.Label.Valid():
		return fmt.Errorf("invalid sentiment label %q", r.Sentiment.Label)
	case math.IsNaN(r.Sentiment.Score) || r.Sentiment.Score < -1 || r.Sentiment.Score > 1:
		return fmt.Errorf("sentiment score %v outside [-1, 1]", r.Sentiment.Score)
	}
	for i, p := range r.Products {
		if p.Rating != nil && p.RatingCount < 1 {
			return fmt.Errorf("product %d is rated with rating count %d", i, p.RatingCount)
		}
	}
	return nil
}

func (o *Orchestrator) observe(query string, from, to State) {
	o.logger.Debug("%q: %s -> %s", query, from, to)
	if o.observer != nil {
		o.observer(query, from, to)
	}
}
