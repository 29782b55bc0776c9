package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/echelon/internal/model"
)

type mockClassifier struct {
	failOn string
}

func (m *mockClassifier) Classify(ctx context.Context, statement string) (*model.Verdict, error) {
	// Longer statements finish first to shuffle completion order
	time.Sleep(time.Duration(20-len(statement)%20) * time.Millisecond)
	if statement == m.failOn {
		return nil, errors.New("classify error")
	}
	return &model.Verdict{Statement: statement}, nil
}

type mockScanner struct {
	shouldError bool
}

func (m *mockScanner) ScanURL(ctx context.Context, url string) (*model.BatchReport, error) {
	time.Sleep(10 * time.Millisecond)
	if m.shouldError {
		return nil, errors.New("scan error")
	}
	return &model.BatchReport{Source: url}, nil
}

func TestBatchProcessor_ProcessStatements(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{failOn: "bad one"}, nil, 3)

	statements := []string{"a b", "The sky is blue.", "bad one", "vaccines contain demons", "ok"}
	results := processor.ProcessStatements(context.Background(), statements)

	if len(results) != len(statements) {
		t.Fatalf("expected %d results, got %d", len(statements), len(results))
	}
	for i, res := range results {
		if res.Statement != statements[i] {
			t.Errorf("result %d: expected statement %q, got %q", i, statements[i], res.Statement)
		}
		if statements[i] == "bad one" {
			if res.Error == nil {
				t.Error("expected error for failing statement")
			}
			continue
		}
		if res.Error != nil {
			t.Errorf("unexpected error for %q: %v", statements[i], res.Error)
		}
		if res.Verdict == nil || res.Verdict.Statement != statements[i] {
			t.Errorf("result %d: verdict does not match statement", i)
		}
	}
}

func TestBatchProcessor_ProcessStatements_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{}, nil, 2)
	if results := processor.ProcessStatements(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessStatements_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{}, nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessStatements(ctx, []string{"a b", "c d"})
	for i, res := range results {
		if res == nil || !errors.Is(res.Error, context.Canceled) {
			t.Errorf("result %d: expected cancellation, got %+v", i, res)
		}
	}
}

func TestBatchProcessor_NotConfigured(t *testing.T) {
	processor := NewBatchProcessor(nil, nil, 1)
	if res := processor.ProcessStatements(context.Background(), []string{"a b"}); res[0].Error == nil {
		t.Error("expected error without classifier")
	}
	if res := processor.ProcessURLs(context.Background(), []string{"http://x"}); res[0].Error == nil {
		t.Error("expected error without scanner")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.txt")
	content := "# header\nThe sky is blue.\n\nvaccines contain demons\nThe sky is blue.\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	processor := NewBatchProcessor(&mockClassifier{}, nil, 2)
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 deduplicated statements, got %d", len(results))
	}
	if results[0].Statement != "The sky is blue." || results[1].Statement != "vaccines contain demons" {
		t.Errorf("unexpected order: %q, %q", results[0].Statement, results[1].Statement)
	}
}

func TestBatchProcessor_MaxStatements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statements.txt")
	content := "one statement\ntwo statement\nthree statement\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	processor := NewBatchProcessor(&mockClassifier{}, nil, 2)
	processor.MaxStatements = 2

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 || results[1].Statement != "two statement" {
		t.Errorf("expected the first 2 statements, got %d", len(results))
	}

	if got := processor.ProcessStatements(context.Background(), []string{"a", "b", "c"}); len(got) != 2 {
		t.Errorf("expected 2 results, got %d", len(got))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockClassifier{}, nil, 2)
	_, err := processor.ProcessFile(context.Background(), "/nonexistent/statements.txt")
	if err == nil || !strings.Contains(err.Error(), "read statements") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestBatchProcessor_ProcessURLs(t *testing.T) {
	processor := NewBatchProcessor(nil, &mockScanner{}, 2)
	urls := []string{"http://example.com", "http://example.org", "http://example.net"}

	results := processor.ProcessURLs(context.Background(), urls)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.URL, res.Error)
		}
		if res.URL != urls[i] || res.Report == nil || res.Report.Source != urls[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
	}
}

func TestBatchProcessor_ProcessURLs_Error(t *testing.T) {
	processor := NewBatchProcessor(nil, &mockScanner{shouldError: true}, 2)
	results := processor.ProcessURLs(context.Background(), []string{"http://example.com"})
	if len(results) != 1 || results[0].Error == nil {
		t.Errorf("expected one failed result, got %+v", results)
	}
}

func TestResultGetError(t *testing.T) {
	errTest := errors.New("test error")
	if (&StatementResult{Error: errTest}).GetError() != errTest {
		t.Error("StatementResult.GetError mismatch")
	}
	if (&ScanResult{Error: errTest}).GetError() != errTest {
		t.Error("ScanResult.GetError mismatch")
	}
}
