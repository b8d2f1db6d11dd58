package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pankajverma010101-svg/predict-cpi/internal/model"
)

func TestSuffixConversationID(t *testing.T) {
	assert.Equal(t, "conv", SuffixConversationID("conv", 1, 1))
	assert.Equal(t, "conv_01", SuffixConversationID("conv", 1, 2))
	assert.Equal(t, "conv_02", SuffixConversationID("conv", 2, 2))
	assert.Equal(t, "conv_11", SuffixConversationID("conv", 11, 12))
}

func TestCheckFieldLengths(t *testing.T) {
	ok := model.Bid{Fields: map[string]string{"market": "usa"}}
	assert.NoError(t, checkFieldLengths(ok))

	tooLong := model.Bid{Fields: map[string]string{
		"quotas": strings.Repeat("x", maxFieldLen+1),
	}}
	err := checkFieldLengths(tooLong)
	assert.ErrorIs(t, err, ErrDataTooLong)
	assert.Contains(t, err.Error(), "quotas")
}
