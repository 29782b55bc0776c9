package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/ppiankov/echelon/internal/model"
)

func tempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndGet(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	v := &model.Verdict{
		Statement: "vaccines contain demons",
		Classification: model.Classification{
			Echelon:     model.EchelonMisusedLie,
			Subtype:     model.SubtypeConspiracyTheory,
			Explanation: "Presents a debunked conspiracy narrative as established fact.",
			Laws:        []model.LawID{model.Law3, model.Law5},
			RuleID:      "conspiracy",
		},
		Engine:    model.EngineLLM,
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		Reply:     "Echelon: Misused Lie",
		Warnings:  []string{"subtype not recognised"},
		CreatedAt: time.Date(2026, 10, 19, 9, 30, 0, 123, time.UTC),
	}

	id, err := s.Record(ctx, v)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" || v.ID != id {
		t.Fatalf("expected ID to be assigned, got %q / %q", id, v.ID)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(*v, *got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecord_EmptyLaws(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()

	v := &model.Verdict{
		Statement:      "The sky is blue.",
		Classification: model.Classification{Echelon: model.EchelonTruth, Subtype: model.SubtypeObservableFact, Explanation: "e"},
		Engine:         model.EngineRules,
	}
	id, err := s.Record(ctx, v)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if v.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be assigned")
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Classification.Laws == nil || len(got.Classification.Laws) != 0 {
		t.Errorf("expected empty non-nil laws, got %#v", got.Classification.Laws)
	}
	if got.Warnings != nil {
		t.Errorf("expected no warnings, got %v", got.Warnings)
	}
}

func TestGet_NotFound(t *testing.T) {
	s := tempStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRecent(t *testing.T) {
	s := tempStore(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	for i, statement := range []string{"first one", "second one", "third one"} {
		_, err := s.Record(ctx, &model.Verdict{
			Statement:      statement,
			Classification: model.Classification{Echelon: model.EchelonTruth, Subtype: model.SubtypeUnspecified, Explanation: "e"},
			Engine:         model.EngineRules,
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Statement != "third one" || recent[1].Statement != "second one" {
		t.Errorf("unexpected recent order: %+v", recent)
	}

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = (%d, %v), want 3", n, err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	id, err := s.Record(context.Background(), &model.Verdict{
		Statement:      "a b",
		Classification: model.Classification{Echelon: model.EchelonNeutral, Subtype: model.SubtypeInsufficientContent, Explanation: "e"},
		Engine:         model.EngineRules,
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	_ = s.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	if _, err := reopened.Get(context.Background(), id); err != nil {
		t.Errorf("verdict lost across reopen: %v", err)
	}
}
