// Package report renders an analysis result into its artifacts: a
// self-contained HTML report and, optionally, the result as JSON.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ppiankov/marketlens/internal/model"
	"github.com/ppiankov/marketlens/internal/util"
)

// ErrWrite marks failures of the artifact writer, as opposed to rendering
var ErrWrite = errors.New("artifact write failed")

// Artifact describes what Assemble wrote
type Artifact struct {
	HTMLPath  string
	JSONPath  string // Empty unless JSON output was requested
	Narrative Narrative
}

// Document is the JSON artifact: the result plus its narrative
type Document struct {
	*model.AnalysisResult
	Narrative Narrative `json:"narrative"`
}

// Assembler renders and writes report artifacts
type Assembler struct {
	writer   ArtifactWriter
	narrator *Narrator
	html     *HTMLRenderer
	logger   *util.Logger
	newID    func() string
}

// NewAssembler creates an assembler writing through w
func NewAssembler(w ArtifactWriter, narrator *Narrator, logger *util.Logger) *Assembler {
	if narrator == nil {
		narrator = NewNarrator(nil, logger)
	}
	if logger == nil {
		logger = util.NopLogger()
	}
	return &Assembler{
		writer:   w,
		narrator: narrator,
		html:     NewHTMLRenderer(),
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Assemble renders r and writes the HTML report, plus JSON when writeJSON is
// set. Write failures wrap both ErrWrite and the writer's own error.
func (a *Assembler) Assemble(ctx context.Context, r *model.AnalysisResult, writeJSON bool) (Artifact, error) {
	var art Artifact
	art.Narrative = a.narrator.Narrate(ctx, r)

	page, err := a.html.Render(r, art.Narrative)
	if err != nil {
		return art, err
	}

	id := a.newID()
	htmlName := ArtifactName(string(r.Query), r.GeneratedAt, id, "html")
	art.HTMLPath, err = a.writer.WriteArtifact(ctx, htmlName, page)
	if err != nil {
		return art, fmt.Errorf("%w: %s: %w", ErrWrite, htmlName, err)
	}
	a.logger.Debug("wrote report %s (%d bytes)", art.HTMLPath, len(page))

	if writeJSON {
		doc, err := RenderJSON(r, art.Narrative)
		if err != nil {
			return art, err
		}
		jsonName := ArtifactName(string(r.Query), r.GeneratedAt, id, "json")
		art.JSONPath, err = a.writer.WriteArtifact(ctx, jsonName, doc)
		if err != nil {
			return art, fmt.Errorf("%w: %s: %w", ErrWrite, jsonName, err)
		}
	}

	return art, nil
}

// RenderJSON encodes the result and narrative as indented JSON
func RenderJSON(r *model.AnalysisResult, n Narrative) ([]byte, error) {
	data, err := json.MarshalIndent(Document{AnalysisResult: r, Narrative: n}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON report: %w", err)
	}
	return append(data, '\n'), nil
}
