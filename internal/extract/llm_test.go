package extract

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/pankajverma010101-svg/predict-cpi/pkg/anthropic"
)

type fakeAnthropicClient struct {
	reply string
	err   error
	calls int
}

func (f *fakeAnthropicClient) CreateMessage(_ context.Context, _ anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.reply}},
	}, nil
}

func TestClassifyKeywordShortCircuit(t *testing.T) {
	fake := &fakeAnthropicClient{reply: "B2C"}
	tc := NewTypeClassifier(fake, "test-model")

	got := tc.Classify(context.Background(), "IT decision makers with budget")
	assert.Equal(t, B2B, got)
	assert.Zero(t, fake.calls, "a keyword match must not reach the API")
}

func TestClassifyEscalatesOnNoMatch(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  BusinessType
	}{
		{"api says consumer", "B2C", B2C},
		{"api says trade", "B2B", B2B},
		{"unclear answer prices as trade", "it depends", B2B},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeAnthropicClient{reply: tt.reply}
			tc := NewTypeClassifier(fake, "test-model")

			got := tc.Classify(context.Background(), "procurement leads at mid-size manufacturers")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 1, fake.calls)
		})
	}
}

func TestClassifyAPIErrorKeepsDefault(t *testing.T) {
	fake := &fakeAnthropicClient{err: eris.New("boom")}
	tc := NewTypeClassifier(fake, "test-model")

	got := tc.Classify(context.Background(), "procurement leads at mid-size manufacturers")
	assert.Equal(t, B2C, got, "api failure falls back to the keyword default")
}

func TestClassifyNilClient(t *testing.T) {
	tc := NewTypeClassifier(nil, "")

	got := tc.Classify(context.Background(), "procurement leads at mid-size manufacturers")
	assert.Equal(t, B2C, got)
}
