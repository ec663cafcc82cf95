package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/pipeline"
)

type stubAnalyzer struct {
	got model.RunConfig
	err error
}

func (s *stubAnalyzer) Run(_ context.Context, query string, cfg model.RunConfig) (*model.AnalysisResult, error) {
	s.got = cfg
	if s.err != nil {
		return nil, s.err
	}
	return &model.AnalysisResult{Query: model.Query(query), ReportPath: "/tmp/out/q-1.html"}, nil
}

func newTestServer(t *testing.T, a Analyzer, base model.RunConfig) *httptest.Server {
	t.Helper()
	cfg := model.DefaultConfig().Server
	ts := httptest.NewServer(NewServer(cfg, a, base, "test", nil).Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{}, model.RunConfig{})

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Errorf("unexpected health body %v (%v)", body, err)
	}
}

func TestAnalyze_RequestOverridesDefaults(t *testing.T) {
	a := &stubAnalyzer{}
	ts := newTestServer(t, a, model.RunConfig{OutputDir: "/tmp/out", AllowLive: false})

	resp := post(t, ts.URL+"/api/v1/analyze", `{"query":"laptop","allow_live":true,"output_json":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !a.got.AllowLive || !a.got.WriteJSON || a.got.OutputDir != "/tmp/out" {
		t.Errorf("unexpected run config %+v", a.got)
	}

	var body AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.ReportURL != "/reports/q-1.html" || body.RequestID == "" {
		t.Errorf("unexpected response %+v", body)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		code int
	}{
		{"malformed body", `{"query":`, nil, http.StatusBadRequest},
		{"unknown field", `{"q":"x"}`, nil, http.StatusBadRequest},
		{"invalid query", `{"query":" "}`, &pipeline.RunError{Stage: pipeline.StateIdle, Kind: pipeline.ErrInvalidQuery}, http.StatusBadRequest},
		{"write failure", `{"query":"x"}`, &pipeline.RunError{Stage: pipeline.StateRendering, Kind: pipeline.ErrArtifactWrite, Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"canceled", `{"query":"x"}`, &pipeline.RunError{Stage: pipeline.StateCollecting, Kind: pipeline.ErrCanceled}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &stubAnalyzer{err: tt.err}, model.RunConfig{})
			resp := post(t, ts.URL+"/api/v1/analyze", tt.body)
			if resp.StatusCode != tt.code {
				t.Errorf("expected %d, got %d", tt.code, resp.StatusCode)
			}
			var body map[string]string
			_ = json.NewDecoder(resp.Body).Decode(&body)
			if body["error"] == "" {
				t.Error("expected an error message")
			}
			if strings.Contains(body["detail"], "disk full") {
				t.Error("server errors must not leak details")
			}
		})
	}
}

func TestAnalyzeAndDownloadReport(t *testing.T) {
	dir := t.TempDir()
	orch := pipeline.New(model.DefaultConfig().Collect)
	ts := newTestServer(t, orch, model.RunConfig{OutputDir: dir})

	resp := post(t, ts.URL+"/api/v1/analyze", `{"query":"standing desk","output_json":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body AnalyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Result == nil || body.Result.DataSource != model.SourceMock {
		t.Fatalf("unexpected result %+v", body.Result)
	}

	for url, wantType := range map[string]string{body.ReportURL: "text/html", body.JSONURL: "application/json"} {
		got, err := http.Get(ts.URL + url)
		if err != nil {
			t.Fatal(err)
		}
		data, _ := io.ReadAll(got.Body)
		_ = got.Body.Close()
		if got.StatusCode != http.StatusOK || len(data) == 0 {
			t.Errorf("%s: status %d, %d bytes", url, got.StatusCode, len(data))
		}
		if !strings.HasPrefix(got.Header.Get("Content-Type"), wantType) {
			t.Errorf("%s: content type %s", url, got.Header.Get("Content-Type"))
		}
	}
}

func TestReport_NotFound(t *testing.T) {
	ts := newTestServer(t, &stubAnalyzer{}, model.RunConfig{OutputDir: t.TempDir()})

	for _, path := range []string{"/reports/missing.html", "/reports/notes.txt", "/reports/.hidden.html"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound && resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 404 or 400, got %d", path, resp.StatusCode)
		}
	}
}
