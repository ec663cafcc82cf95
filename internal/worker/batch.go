package worker

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/marketlens/internal/model"
)

// Runner executes one analysis run
type Runner interface {
	Run(ctx context.Context, query string, cfg model.RunConfig) (*model.AnalysisResult, error)
}

// QueryJob runs a single query
type QueryJob struct {
	Index  int
	Query  string
	Runner Runner
	Config model.RunConfig
}

// Execute runs the query
func (j *QueryJob) Execute(ctx context.Context) Result {
	res, err := j.Runner.Run(ctx, j.Query, j.Config)
	return &QueryResult{
		Index:  j.Index,
		Query:  j.Query,
		Result: res,
		Error:  err,
	}
}

// QueryResult is the outcome of one QueryJob
type QueryResult struct {
	Index  int
	Query  string
	Result *model.AnalysisResult
	Error  error
}

// GetError returns the run error
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor runs many queries on a worker pool
type BatchProcessor struct {
	runner      Runner
	concurrency int
	config      model.RunConfig
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(runner Runner, concurrency int, cfg model.RunConfig) *BatchProcessor {
	return &BatchProcessor{
		runner:      runner,
		concurrency: concurrency,
		config:      cfg,
	}
}

// ProcessQueries runs every query and returns results in input order.
// Queries never submitted because ctx was cancelled carry ctx.Err().
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []string) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	out := make([]*QueryResult, 0, len(queries))
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r := range pool.Results() {
			out = append(out, r.(*QueryResult))
		}
	}()

	for i, q := range queries {
		if !pool.Submit(&QueryJob{Index: i, Query: q, Runner: b.runner, Config: b.config}) {
			break
		}
	}
	pool.Close()
	<-done

	seen := make(map[int]bool, len(out))
	for _, r := range out {
		seen[r.Index] = true
	}
	for i, q := range queries {
		if !seen[i] {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out = append(out, &QueryResult{Index: i, Query: q, Error: err})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// ProcessFile reads queries from a file and runs them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads one query per line
func ReadQueriesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadQueries(file)
}

// ReadQueries skips blank lines and # comments, and drops duplicates
// (case-insensitive, first spelling wins).
func ReadQueries(r io.Reader) ([]string, error) {
	var queries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.Join(strings.Fields(scanner.Text()), " ")

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key := strings.ToLower(line)
		if !seen[key] {
			seen[key] = true
			queries = append(queries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan queries: %w", err)
	}

	return queries, nil
}
