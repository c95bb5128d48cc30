package service

import (
	"context"
	"hash/fnv"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docaudit/internal/chunk"
	"docaudit/internal/detect"
	"docaudit/internal/index"
	"docaudit/internal/models"
	"docaudit/internal/pipeline"
	"docaudit/internal/report"
)

// offlineEmbedder stands in for the embedding provider with deterministic
// vectors.
type offlineEmbedder struct{}

func embed(text string) []float32 {
	h := fnv.New32a()
	h.Write([]byte(text))
	x := h.Sum32()
	return []float32{float32(x%17) + 1, float32(x%11) + 1, float32(x%7) + 1}
}

func (offlineEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		vectors[i] = embed(t)
	}
	return vectors, nil
}

func (offlineEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return embed(text), nil
}

// scriptedChat answers the detection prompt with findings and every other
// prompt with report text.
type scriptedChat struct{}

func (scriptedChat) Invoke(ctx context.Context, prompt string) (string, error) {
	if strings.HasPrefix(prompt, "Analyze the following document chunks") {
		return `Here is my analysis: [{"term":"KYC","error":"verification process not specified","location":"Section 1"}]`, nil
	}
	return "## Summary\n\nSpecify the KYC verification process in Section 1.", nil
}

const bankingDoc = `Banking Document: Compliance and Monitoring Procedures.
Section 1: KYC Process. The KYC process is implemented for all customers.
Verification is done but not specified how.
Section 2: AML Policy. AML checks are performed daily. Transactions above
$10,000 require manual review, but small transactions are ignored.
Section 3: Fraud Detection. Fraud Detection uses AI. No further details provided.`

func TestIndexAnalyzeRemoveEndToEnd(t *testing.T) {
	ctx := context.Background()
	terms := models.DefaultTerms

	store, err := index.NewStore(t.TempDir(), offlineEmbedder{})
	require.NoError(t, err)

	chat := scriptedChat{}
	detector := detect.NewDetector(chat, terms)
	synthesizer := report.NewSynthesizer(chat, report.NewPDFRenderer(), t.TempDir())
	pipe := pipeline.New(store, detector, synthesizer, terms, 5)
	splitter := chunk.NewSplitter(120, 20)

	svc := New(splitter, store, pipe, newFakeRegistry())

	require.NoError(t, svc.Index(ctx, "file-1", "banking.pdf", bankingDoc))

	state, err := svc.Analyze(ctx, "file-1", models.DefaultQuery)
	require.NoError(t, err)
	require.NotEmpty(t, state.Findings)
	assert.Equal(t, "KYC", state.Findings[0].Term)
	assert.NotEmpty(t, state.Report)

	info, err := os.Stat(state.ReportPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	require.NoError(t, svc.Remove(ctx, "file-1"))
	_, err = svc.Analyze(ctx, "file-1", models.DefaultQuery)
	require.ErrorIs(t, err, models.ErrIndexNotFound)
}
