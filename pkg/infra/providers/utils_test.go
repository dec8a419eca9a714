package providers_test

import (
	"testing"

	"github.com/NeuralTrust/PromptGuard/pkg/infra/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatInstructions(t *testing.T) {
	assert.Equal(t, "[Instructions]\n", providers.FormatInstructions(nil))
	assert.Equal(t,
		"[Instructions]\n- answer with one word\n",
		providers.FormatInstructions([]string{"answer with one word", "  "}),
	)
}

func TestDecodeOptions(t *testing.T) {
	var opts struct {
		DisableThinking bool   `mapstructure:"disable_thinking"`
		Region          string `mapstructure:"region"`
	}
	err := providers.DecodeOptions(map[string]interface{}{
		"disable_thinking": "true",
		"region":           "eu-west-1",
	}, &opts)
	require.NoError(t, err)
	assert.True(t, opts.DisableThinking)
	assert.Equal(t, "eu-west-1", opts.Region)
}

func TestTrimFences(t *testing.T) {
	assert.Equal(t, `{"verdict":"ALLOW"}`, providers.TrimFences("```json\n{\"verdict\":\"ALLOW\"}\n```"))
	assert.Equal(t, "SAFE", providers.TrimFences("  SAFE \n"))
}
