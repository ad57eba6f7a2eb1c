// Package bot turns scored properties into written recommendations. Scoring
// is always deterministic; the narrative analysis comes from a language model
// when one is configured and from a template otherwise, so the service keeps
// answering when the model API is down.
package bot

import (
	"context"
	"time"

	"github.com/righthome-ai/property-analyzer/internal/monitoring"
	"github.com/righthome-ai/property-analyzer/internal/property"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
)

// LanguageModel generates free-form analysis text. The HuggingFace adapter
// implements it; tests substitute fakes.
type LanguageModel interface {
	Generate(ctx context.Context, prompt string) (string, error)
	IsAuthenticated() bool
	Model() string
}

// PropertyBot scores properties and writes up the results.
type PropertyBot struct {
	llm     LanguageModel
	logger  *monitoring.Logger
	metrics *monitoring.Metrics
}

// New creates a bot. llm may be nil; the bot then relies on template text.
func New(llm LanguageModel, logger *monitoring.Logger, metrics *monitoring.Metrics) *PropertyBot {
	return &PropertyBot{llm: llm, logger: logger, metrics: metrics}
}

// effectiveWeights falls back to the default category importances when the
// caller sent no preferences.
func effectiveWeights(prefs scoring.Weights) scoring.Weights {
	if len(prefs) == 0 {
		return property.DefaultWeights()
	}
	return prefs
}

// Recommend scores one property and attaches an analysis narrative.
func (b *PropertyBot) Recommend(ctx context.Context, p *property.Property, prefs scoring.Weights) (scoring.ScoreResult, error) {
	result, err := scoring.Score(p.Record(), effectiveWeights(prefs))
	if err != nil {
		return scoring.ScoreResult{}, err
	}
	result.Analysis = b.analysisText(ctx, p, prefs, result)
	return result, nil
}

// CompareProperties scores each property with the same preferences and ranks
// them best match first.
func (b *PropertyBot) CompareProperties(ctx context.Context, properties []property.Property, prefs scoring.Weights) (scoring.Comparison, error) {
	records := make([]scoring.Record, 0, len(properties))
	byID := make(map[string]*property.Property, len(properties))
	for i := range properties {
		records = append(records, properties[i].Record())
		byID[properties[i].ID] = &properties[i]
	}

	comparison, err := scoring.Compare(records, effectiveWeights(prefs))
	if err != nil {
		return scoring.Comparison{}, err
	}

	for i := range comparison.Results {
		p := byID[comparison.Results[i].Details.PropertyID]
		if p == nil {
			continue
		}
		comparison.Results[i].Analysis = b.analysisText(ctx, p, prefs, comparison.Results[i])
	}
	comparison.BestMatch = comparison.Results[0]

	return comparison, nil
}

// analysisText asks the language model for a narrative and falls back to the
// deterministic template when the model is unavailable or fails. Model
// failures never fail the request.
func (b *PropertyBot) analysisText(ctx context.Context, p *property.Property, prefs scoring.Weights, result scoring.ScoreResult) string {
	if b.llm == nil || !b.llm.IsAuthenticated() {
		return templateAnalysis(result)
	}

	start := time.Now()
	text, err := b.llm.Generate(ctx, analysisPrompt(p, prefs))
	duration := time.Since(start)

	if b.metrics != nil {
		b.metrics.IncrementModelCall(err == nil)
	}
	if b.logger != nil {
		b.logger.ModelAPILogger(b.llm.Model(), 0, duration, err == nil)
	}

	if err != nil {
		if b.logger != nil {
			b.logger.Warn("model analysis failed, using template",
				"property_id", p.ID,
				"error", err,
			)
		}
		return templateAnalysis(result)
	}
	return text
}
