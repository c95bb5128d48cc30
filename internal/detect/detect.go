// Package detect runs LLM-based error detection over retrieved document
// context and parses the model's findings.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"docaudit/internal/models"
)

// Chat is the single-prompt surface of the LLM client.
type Chat interface {
	Invoke(ctx context.Context, prompt string) (string, error)
}

// Detector asks the model for a JSON list of findings about a fixed set of
// banking terms.
type Detector struct {
	llm   Chat
	terms []string
}

func NewDetector(llm Chat, terms []string) *Detector {
	return &Detector{llm: llm, terms: terms}
}

// Detect sends the retrieved context to the model and returns the parsed
// findings. Empty context short-circuits to zero findings without a model
// call. A response that cannot be parsed into a findings array fails with
// ErrMalformedOutput; it is never downgraded to "no findings", since that
// would make a broken detector look like a compliant document.
func (d *Detector) Detect(ctx context.Context, chunks []models.Chunk) ([]models.Finding, error) {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = chunk.Content
	}
	contextText := strings.Join(parts, models.ContextSeparator)
	if strings.TrimSpace(contextText) == "" {
		log.Warn().Msg("No context available, skipping detection")
		return []models.Finding{}, nil
	}

	prompt := fmt.Sprintf(models.DetectPromptTemplate, strings.Join(d.terms, ", "), contextText)
	raw, err := d.llm.Invoke(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("error detection call failed: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("%w: detector", models.ErrEmptyResponse)
	}

	findings, err := ParseFindings(raw)
	if err != nil {
		return nil, err
	}
	log.Info().Int("findings", len(findings)).Msg("Detected errors")
	return findings, nil
}
