package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/echelon/internal/cache"
	"github.com/ppiankov/echelon/internal/classify"
	"github.com/ppiankov/echelon/internal/extract"
	"github.com/ppiankov/echelon/internal/history"
	"github.com/ppiankov/echelon/internal/law"
	"github.com/ppiankov/echelon/internal/llm"
	"github.com/ppiankov/echelon/internal/model"
	"github.com/ppiankov/echelon/internal/summary"
	"github.com/ppiankov/echelon/internal/worker"
	"go.uber.org/zap"
)

// ErrEmptyStatement is returned for a statement with no content at all
var ErrEmptyStatement = errors.New("statement is empty")

// Pipeline turns statements, files and pages into verdicts
type Pipeline struct {
	rules      *classify.Classifier
	hosted     *llm.Classifier // nil unless the llm engine is configured
	history    *history.Store  // nil when history is disabled
	fetcher    *Fetcher
	extractor  *extract.Extractor
	summarizer *summary.Summarizer
	config     *model.Config
	logger     *zap.Logger
	now        func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithHosted supplies a ready hosted-model classifier instead of building one from config
func WithHosted(h *llm.Classifier) Option {
	return func(p *Pipeline) {
		p.hosted = h
	}
}

// WithHistory records every verdict in the given store
func WithHistory(store *history.Store) Option {
	return func(p *Pipeline) {
		p.history = store
	}
}

// WithFetcher replaces the page fetcher
func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) {
		p.fetcher = f
	}
}

// New creates a pipeline from configuration
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	rules, err := classify.NewClassifier(classify.DefaultRules(), law.Default(),
		classify.WithMinTokens(cfg.Classifier.MinTokens))
	if err != nil {
		return nil, fmt.Errorf("build rule classifier: %w", err)
	}

	extractor := extract.NewExtractor()
	extractor.MaxStatements = cfg.Batch.MaxStatements

	p := &Pipeline{
		rules:      rules,
		extractor:  extractor,
		summarizer: summary.NewSummarizer(),
		config:     cfg,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.fetcher == nil {
		p.fetcher = NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.RespectRobots, cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)
	}

	if p.hosted == nil && cfg.Classifier.Engine == model.EngineLLM {
		hosted, err := newHosted(cfg, p.logger)
		if err != nil {
			return nil, err
		}
		p.hosted = hosted
	}
	if cfg.Classifier.Engine == model.EngineLLM && p.hosted == nil {
		return nil, fmt.Errorf("engine %q requires llm.provider to be set", model.EngineLLM)
	}

	return p, nil
}

// newHosted builds the hosted-model classifier with its cache and rate limit
func newHosted(cfg *model.Config, logger *zap.Logger) (*llm.Classifier, error) {
	opts := []llm.ClassifierOption{
		llm.WithLimiter(worker.NewLimiter(cfg.LLM.RequestsPerSecond, cfg.LLM.Burst)),
		llm.WithLogger(logger),
	}
	if cfg.Cache.Enabled {
		opts = append(opts, llm.WithCache(
			cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL),
			cfg.Cache.DiskTTL))
	}

	hosted, err := llm.NewClassifier(llm.ConfigFromModel(cfg.LLM), opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	return hosted, nil
}

// Rules returns the rule classifier
func (p *Pipeline) Rules() *classify.Classifier {
	return p.rules
}

// Hosted returns the hosted-model classifier (nil if not configured)
func (p *Pipeline) Hosted() *llm.Classifier {
	return p.hosted
}

// Engine returns the configured engine
func (p *Pipeline) Engine() model.Engine {
	if p.config.Classifier.Engine == model.EngineLLM {
		return model.EngineLLM
	}
	return model.EngineRules
}

// Classify classifies one statement with the configured engine
func (p *Pipeline) Classify(ctx context.Context, statement string) (*model.Verdict, error) {
	return p.ClassifyWith(ctx, p.Engine(), statement)
}

// ClassifyWith classifies one statement with the given engine. The rule engine
// never fails. The hosted engine falls back to the rules when configured to;
// otherwise its error is returned and the caller may resubmit.
func (p *Pipeline) ClassifyWith(ctx context.Context, engine model.Engine, statement string) (*model.Verdict, error) {
	v := &model.Verdict{
		ID:        uuid.New().String(),
		Statement: statement,
		Engine:    model.EngineRules,
		CreatedAt: p.now().UTC(),
	}

	ruled := p.rules.Classify(statement)

	switch {
	case engine != model.EngineLLM:
		v.Classification = ruled

	case p.hosted == nil:
		return nil, fmt.Errorf("engine %q requires llm.provider to be set", model.EngineLLM)

	case ruled.RuleID == classify.NeutralRule.ID:
		// Nothing for the model to classify
		v.Classification = ruled
		v.Warnings = append(v.Warnings, "statement too short for the hosted model; rule engine used")

	default:
		if err := p.classifyHosted(ctx, v, ruled); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("classified statement",
		zap.String("id", v.ID),
		zap.String("engine", string(v.Engine)),
		zap.String("echelon", string(v.Classification.Echelon)),
		zap.String("rule", v.Classification.RuleID),
		zap.Int("laws", len(v.Classification.Laws)))

	if p.history != nil {
		if _, err := p.history.Record(ctx, v); err != nil {
			p.logger.Warn("history record failed", zap.Error(err))
		}
	}

	return v, nil
}

// classifyHosted fills v from the hosted model, or from ruled on fallback
func (p *Pipeline) classifyHosted(ctx context.Context, v *model.Verdict, ruled model.Classification) error {
	res, err := p.hosted.Classify(ctx, v.Statement)
	if res != nil {
		v.Provider = res.Provider
		v.Model = res.Model
		v.Reply = res.Reply
		v.Cached = res.Cached
	}

	if err == nil && res.Parsed {
		v.Engine = model.EngineLLM
		v.Classification = res.Classification
		// Laws come from the detector so both engines agree on them
		v.Classification.Laws = ruled.Laws
		v.Classification.RuleID = ""
		if !res.Exact {
			v.Warnings = append(v.Warnings, fmt.Sprintf("reply named an undeclared subtype; using %s", v.Classification.Subtype))
		}
		return nil
	}
	if err == nil {
		err = llm.ErrUnparsedReply
	}

	if !p.config.LLM.FallbackToRules || ctx.Err() != nil {
		return fmt.Errorf("hosted classification: %w", err)
	}

	p.logger.Warn("hosted classification failed, using rules", zap.Error(err))
	v.Classification = ruled
	v.Warnings = append(v.Warnings, fmt.Sprintf("hosted classification failed (%v); rule engine used", err))
	return nil
}

// ClassifyBatch classifies statements concurrently and summarizes them.
// Statements the hosted path could not classify are reported as failures.
func (p *Pipeline) ClassifyBatch(ctx context.Context, source string, statements []string) *model.BatchReport {
	processor := p.batchProcessor()
	if limit := processor.MaxStatements; limit > 0 && len(statements) > limit {
		p.logger.Warn("batch truncated", zap.Int("statements", len(statements)), zap.Int("max", limit))
	}
	return p.report(source, processor.ProcessStatements(ctx, statements))
}

// ClassifyFile classifies a file of statements, one per line
func (p *Pipeline) ClassifyFile(ctx context.Context, path string) (*model.BatchReport, error) {
	results, err := p.batchProcessor().ProcessFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return p.report(path, results), nil
}

func (p *Pipeline) batchProcessor() *worker.BatchProcessor {
	processor := worker.NewBatchProcessor(p, nil, p.config.Batch.Workers)
	processor.MaxStatements = p.config.Batch.MaxStatements
	return processor
}

// report splits results into verdicts and failures and summarizes the verdicts
func (p *Pipeline) report(source string, results []*worker.StatementResult) *model.BatchReport {
	report := &model.BatchReport{
		Source:      source,
		GeneratedAt: p.now().UTC(),
		Verdicts:    make([]model.Verdict, 0, len(results)),
	}
	for _, r := range results {
		if r.Error != nil {
			report.Failures = append(report.Failures, model.Failure{Statement: r.Statement, Error: r.Error.Error()})
			continue
		}
		report.Verdicts = append(report.Verdicts, *r.Verdict)
	}
	report.Summary = p.summarizer.Summarize(report.Verdicts)
	return report
}

// ScanURL fetches a page, extracts its statements and classifies them
func (p *Pipeline) ScanURL(ctx context.Context, url string) (*model.BatchReport, error) {
	fetched, err := p.fetcher.FetchWithRetry(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	statements, err := p.extractor.FromHTML(fetched.HTML)
	if err != nil {
		return nil, fmt.Errorf("extract statements: %w", err)
	}
	p.logger.Info("scanned page",
		zap.String("url", fetched.FinalURL),
		zap.Int("statements", len(statements)))

	report := p.ClassifyBatch(ctx, fetched.FinalURL, statements)
	meta := fetched.Meta
	report.FetchMeta = &meta
	if title := extract.Title(fetched.HTML); title != "" {
		report.Title = title
	}
	return report, nil
}

// ScanURLs scans several pages concurrently. Results are in input order.
func (p *Pipeline) ScanURLs(ctx context.Context, urls []string) []*worker.ScanResult {
	return worker.NewBatchProcessor(nil, p, p.config.Batch.Workers).ProcessURLs(ctx, urls)
}

// ValidateStatement rejects input the presentation layer should not classify
func ValidateStatement(statement string, maxLength int) error {
	if strings.TrimSpace(statement) == "" {
		return ErrEmptyStatement
	}
	if maxLength > 0 && len([]rune(statement)) > maxLength {
		return fmt.Errorf("statement is %d characters; the limit is %d", len([]rune(statement)), maxLength)
	}
	return nil
}
