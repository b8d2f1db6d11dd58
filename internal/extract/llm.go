package extract

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/pankajverma010101-svg/predict-cpi/pkg/anthropic"
)

const classifySystem = `You classify survey-research audience descriptions.
Answer with exactly one word: B2B if the audience is professionals reached
through their job (job titles, company roles, industries), or B2C if it is
consumers reached as private individuals.`

// TypeClassifier decides b2b vs b2c, running the keyword chain first and
// escalating to the API only when no vocabulary matched. A nil client keeps
// the keyword default.
type TypeClassifier struct {
	client anthropic.Client
	model  string
}

// NewTypeClassifier builds a TypeClassifier. client may be nil.
func NewTypeClassifier(client anthropic.Client, model string) *TypeClassifier {
	return &TypeClassifier{client: client, model: model}
}

// Classify never fails: API errors fall back to the keyword default so one
// flaky call cannot block a batch.
func (t *TypeClassifier) Classify(ctx context.Context, text string) BusinessType {
	bt, matched := classifyKeywords(strings.ToLower(text))
	if matched || t.client == nil {
		return bt
	}

	resp, err := t.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     t.model,
		MaxTokens: 8,
		System:    classifySystem,
		Messages:  []anthropic.Message{{Role: "user", Content: text}},
	})
	if err != nil {
		zap.L().Warn("classifier: api fallback failed, keeping keyword default", zap.Error(err))
		return bt
	}
	resp.Usage.LogCost(t.model, "classify")

	// Anything that is not clearly consumer prices as trade.
	if strings.Contains(strings.ToLower(resp.Text()), "b2c") {
		return B2C
	}
	return B2B
}
