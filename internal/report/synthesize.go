// Package report turns findings into a human-readable remediation report
// and renders it to a persisted artifact.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"docaudit/internal/models"
)

// Chat is the single-prompt surface of the LLM client.
type Chat interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Renderer writes the report artifact. The PDF renderer is the default;
// tests swap in a fake.
type Renderer interface {
	Render(findings []models.Finding, report, outputPath string) error
}

// Synthesizer produces the remediation report for a set of findings.
type Synthesizer struct {
	llm      Chat
	renderer Renderer
	tempRoot string
}

func NewSynthesizer(llm Chat, renderer Renderer, tempRoot string) *Synthesizer {
	return &Synthesizer{llm: llm, renderer: renderer, tempRoot: tempRoot}
}

// Synthesize asks the model for a fixing report over the findings, renders
// the artifact and returns the report text plus the artifact path. The
// model is called even with zero findings so a compliant document still
// gets a report.
func (s *Synthesizer) Synthesize(ctx context.Context, fileID string, findings []models.Finding) (string, string, error) {
	prompt := fmt.Sprintf(models.ReportPromptTemplate, FormatFindings(findings))
	report, err := s.llm.Invoke(ctx, prompt)
	if err != nil {
		return "", "", fmt.Errorf("report generation call failed: %w", err)
	}
	if strings.TrimSpace(report) == "" {
		return "", "", fmt.Errorf("%w: report synthesis", models.ErrEmptyResponse)
	}

	outputPath := filepath.Join(s.tempRoot, "report_"+fileID+".pdf")
	if err := s.renderer.Render(findings, report, outputPath); err != nil {
		return "", "", fmt.Errorf("failed to render report for %s: %w", fileID, err)
	}
	log.Info().Str("file_id", fileID).Str("report_path", outputPath).Msg("Generated report")
	return report, outputPath, nil
}

// FormatFindings lists findings one per line for the report prompt, or the
// fixed compliant phrase when there are none.
func FormatFindings(findings []models.Finding) string {
	if len(findings) == 0 {
		return models.NoErrorsLine
	}
	lines := make([]string, len(findings))
	for i, f := range findings {
		lines[i] = fmt.Sprintf("%s: %s (Location: %s)", f.Term, f.Error, f.Location)
	}
	return strings.Join(lines, "\n")
}
