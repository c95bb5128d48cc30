// Package pipeline runs the fixed three-stage analysis over one document:
// retrieve context, detect errors, generate the report. The stages are
// strictly sequential; any stage failure aborts the whole run.
package pipeline

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"docaudit/internal/models"
)

// State is threaded through the pipeline. Each stage reads a subset of
// fields and its typed update is merged back by explicit assignment; fields
// a stage does not touch carry forward unchanged. One State exists per run
// and is never shared between runs.
type State struct {
	FileID     string
	Query      string
	Context    []models.Chunk
	Findings   []models.Finding
	Report     string
	ReportPath string
}

// Retriever returns the most relevant chunks of a document's index.
type Retriever interface {
	Retrieve(ctx context.Context, fileID, query string, k int) ([]models.Chunk, error)
}

// Detector extracts findings from retrieved context.
type Detector interface {
	Detect(ctx context.Context, chunks []models.Chunk) ([]models.Finding, error)
}

// Synthesizer produces the report text and artifact path for findings.
type Synthesizer interface {
	Synthesize(ctx context.Context, fileID string, findings []models.Finding) (report, reportPath string, err error)
}

// Per-stage partial updates. Each variant covers only the fields its stage
// owns, so a stage cannot clobber state it has no business writing.
type retrieveUpdate struct {
	context []models.Chunk
}

type detectUpdate struct {
	findings []models.Finding
}

type reportUpdate struct {
	report     string
	reportPath string
}

type Pipeline struct {
	retriever   Retriever
	detector    Detector
	synthesizer Synthesizer
	terms       []string
	topK        int
}

func New(retriever Retriever, detector Detector, synthesizer Synthesizer, terms []string, topK int) *Pipeline {
	return &Pipeline{
		retriever:   retriever,
		detector:    detector,
		synthesizer: synthesizer,
		terms:       terms,
		topK:        topK,
	}
}

// Run executes retrieve, detect and report in order over a fresh State.
// No stage is skipped: zero retrieved chunks still flow through detection
// (which short-circuits) and report generation, so every successful run
// ends with a report. Errors propagate unchanged; the pipeline never
// catches and continues.
func (p *Pipeline) Run(ctx context.Context, fileID, query string) (*State, error) {
	state := &State{FileID: fileID, Query: query}

	ru, err := p.retrieve(ctx, state)
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Retrieval failed")
		return nil, err
	}
	state.Context = ru.context

	du, err := p.detect(ctx, state)
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Error detection failed")
		return nil, err
	}
	state.Findings = du.findings

	gu, err := p.report(ctx, state)
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID).Msg("Report generation failed")
		return nil, err
	}
	state.Report = gu.report
	state.ReportPath = gu.reportPath

	return state, nil
}

// retrieve queries the document's index with the fixed analysis query. The
// user-supplied query on the state is informational; retrieval always runs
// against the term list.
func (p *Pipeline) retrieve(ctx context.Context, state *State) (retrieveUpdate, error) {
	query := models.QueryPrefix + strings.Join(p.terms, ", ")
	chunks, err := p.retriever.Retrieve(ctx, state.FileID, query, p.topK)
	if err != nil {
		return retrieveUpdate{}, err
	}
	if len(chunks) == 0 {
		log.Warn().Str("file_id", state.FileID).Msg("No relevant chunks retrieved")
	}
	return retrieveUpdate{context: chunks}, nil
}

func (p *Pipeline) detect(ctx context.Context, state *State) (detectUpdate, error) {
	findings, err := p.detector.Detect(ctx, state.Context)
	if err != nil {
		return detectUpdate{}, err
	}
	return detectUpdate{findings: findings}, nil
}

func (p *Pipeline) report(ctx context.Context, state *State) (reportUpdate, error) {
	report, reportPath, err := p.synthesizer.Synthesize(ctx, state.FileID, state.Findings)
	if err != nil {
		return reportUpdate{}, err
	}
	return reportUpdate{report: report, reportPath: reportPath}, nil
}
