package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/echelon/internal/extract"
	"github.com/ppiankov/echelon/internal/model"
)

// StatementClassifier classifies a single statement
type StatementClassifier interface {
	Classify(ctx context.Context, statement string) (*model.Verdict, error)
}

// Scanner scans a page and classifies the statements found on it
type Scanner interface {
	ScanURL(ctx context.Context, url string) (*model.BatchReport, error)
}

// StatementJob classifies one statement
type StatementJob struct {
	Statement  string
	Classifier StatementClassifier
}

// Execute executes the statement job
func (j *StatementJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &StatementResult{Statement: j.Statement, Error: err}
	}
	verdict, err := j.Classifier.Classify(ctx, j.Statement)
	return &StatementResult{Statement: j.Statement, Verdict: verdict, Error: err}
}

// StatementResult is the outcome of a statement job
type StatementResult struct {
	Statement string
	Verdict   *model.Verdict
	Error     error
}

// GetError returns the error from the statement result
func (r *StatementResult) GetError() error {
	return r.Error
}

// ScanJob represents a URL scan job
type ScanJob struct {
	URL     string
	Scanner Scanner
}

// Execute executes the scan job
func (j *ScanJob) Execute(ctx context.Context) Result {
	report, err := j.Scanner.ScanURL(ctx, j.URL)
	return &ScanResult{URL: j.URL, Report: report, Error: err}
}

// ScanResult represents the result of a scan job
type ScanResult struct {
	URL    string
	Report *model.BatchReport
	Error  error
}

// GetError returns the error from the scan result
func (r *ScanResult) GetError() error {
	return r.Error
}

var errNotConfigured = errors.New("batch processor has no handler for this job type")

// BatchProcessor fans statements or URLs out over a worker pool
type BatchProcessor struct {
	classifier  StatementClassifier
	scanner     Scanner
	concurrency int

	// MaxStatements caps a statement batch; extra statements are dropped (0 = no cap)
	MaxStatements int
}

// NewBatchProcessor creates a new batch processor. Either collaborator may be
// nil when the corresponding Process method is not used.
func NewBatchProcessor(classifier StatementClassifier, scanner Scanner, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		classifier:  classifier,
		scanner:     scanner,
		concurrency: concurrency,
	}
}

// ProcessStatements classifies statements concurrently. Results are in input order.
func (b *BatchProcessor) ProcessStatements(ctx context.Context, statements []string) []*StatementResult {
	if b.MaxStatements > 0 && len(statements) > b.MaxStatements {
		statements = statements[:b.MaxStatements]
	}
	out := make([]*StatementResult, len(statements))
	if len(statements) == 0 {
		return out
	}
	if b.classifier == nil {
		for i, s := range statements {
			out[i] = &StatementResult{Statement: s, Error: errNotConfigured}
		}
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, s := range statements {
		pool.Submit(&StatementJob{Statement: s, Classifier: b.classifier})
	}

	results := pool.Wait()
	for i := range statements {
		if i >= len(results) || results[i] == nil {
			out[i] = &StatementResult{Statement: statements[i], Error: cancelled(ctx)}
			continue
		}
		out[i] = results[i].(*StatementResult)
	}
	return out
}

// ProcessFile reads statements from a file (one per line) and classifies them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*StatementResult, error) {
	statements, err := extract.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read statements: %w", err)
	}

	return b.ProcessStatements(ctx, statements), nil
}

// ProcessURLs scans multiple pages concurrently. Results are in input order.
func (b *BatchProcessor) ProcessURLs(ctx context.Context, urls []string) []*ScanResult {
	out := make([]*ScanResult, len(urls))
	if len(urls) == 0 {
		return out
	}
	if b.scanner == nil {
		for i, u := range urls {
			out[i] = &ScanResult{URL: u, Error: errNotConfigured}
		}
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, u := range urls {
		pool.Submit(&ScanJob{URL: u, Scanner: b.scanner})
	}

	results := pool.Wait()
	for i := range urls {
		if i >= len(results) || results[i] == nil {
			out[i] = &ScanResult{URL: urls[i], Error: cancelled(ctx)}
			continue
		}
		out[i] = results[i].(*ScanResult)
	}
	return out
}

// cancelled is the error recorded for jobs the pool never ran
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return context.Canceled
}
