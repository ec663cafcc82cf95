package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/marketlens/internal/model"
)

type mockRunner struct {
	mu      sync.Mutex
	fail    map[string]bool
	queries []string
}

func (m *mockRunner) Run(ctx context.Context, query string, cfg model.RunConfig) (*model.AnalysisResult, error) {
	time.Sleep(time.Millisecond)
	m.mu.Lock()
	m.queries = append(m.queries, query)
	m.mu.Unlock()
	if m.fail[query] {
		return nil, errors.New("run failed")
	}
	return &model.AnalysisResult{Query: model.Query(query), DataSource: model.SourceMock}, nil
}

func TestBatchProcessor_ProcessQueries_Ordered(t *testing.T) {
	runner := &mockRunner{fail: map[string]bool{"b": true}}
	processor := NewBatchProcessor(runner, 3, model.RunConfig{})

	queries := []string{"a", "b", "c", "d", "e", "f", "g"}
	results := processor.ProcessQueries(context.Background(), queries)

	if len(results) != len(queries) {
		t.Fatalf("expected %d results, got %d", len(queries), len(results))
	}
	for i, r := range results {
		if r.Index != i || r.Query != queries[i] {
			t.Errorf("result %d out of order: %+v", i, r)
		}
		if r.Query == "b" {
			if r.Error == nil || r.Result != nil {
				t.Errorf("expected failure for b, got %+v", r)
			}
			continue
		}
		if r.Error != nil || r.Result == nil {
			t.Errorf("unexpected failure for %s: %v", r.Query, r.Error)
		}
	}
}

func TestBatchProcessor_ProcessQueries_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2, model.RunConfig{})
	if results := processor.ProcessQueries(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessQueries_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&mockRunner{}, 2, model.RunConfig{})
	results := processor.ProcessQueries(ctx, []string{"a", "b", "c"})

	if len(results) != 3 {
		t.Fatalf("every query needs a result, got %d", len(results))
	}
	for _, r := range results {
		if r.Error == nil && r.Result == nil {
			t.Errorf("result for %s has neither error nor result", r.Query)
		}
	}
}

func TestReadQueries(t *testing.T) {
	in := `wireless headphones
# comment
Laptop

  laptop
coffee   grinder  `

	got, err := ReadQueries(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"wireless headphones", "Laptop", "coffee grinder"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.txt")
	if err := os.WriteFile(path, []byte("a\nb\n# c\n\na\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	processor := NewBatchProcessor(&mockRunner{}, 2, model.RunConfig{})
	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockRunner{}, 2, model.RunConfig{})
	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestQueryResult_GetError(t *testing.T) {
	want := errors.New("boom")
	if got := (&QueryResult{Error: want}).GetError(); got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}
