package prompt

import (
	"bytes"
	"strings"
	"testing"

	"deviceguard/internal/config"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseVariant_ConfiguredSkipsPrompt(t *testing.T) {
	asked := false
	ask := func(string) (bool, error) {
		asked = true
		return true, nil
	}

	v, err := ChooseVariant("full", ask)
	require.NoError(t, err)
	assert.Equal(t, config.VariantFull, v)
	assert.False(t, asked)

	_, err = ChooseVariant("huge", ask)
	assert.Error(t, err)
}

func TestChooseVariant_AsksOperator(t *testing.T) {
	tests := []struct {
		answer   bool
		expected config.Variant
	}{
		{true, config.VariantTiny},
		{false, config.VariantFull},
	}

	for _, tt := range tests {
		var title string
		v, err := ChooseVariant("", func(q string) (bool, error) {
			title = q
			return tt.answer, nil
		})
		require.NoError(t, err)
		assert.Equal(t, tt.expected, v)
		assert.Contains(t, title, "YOLOv3-tiny")
	}
}

func TestChooseVariant_PromptError(t *testing.T) {
	_, err := ChooseVariant("", func(string) (bool, error) {
		return false, errors.New("no terminal")
	})
	assert.Error(t, err)
}

func TestWaitForEnter(t *testing.T) {
	var out bytes.Buffer
	WaitForEnter(strings.NewReader("\n"), &out)
	assert.Contains(t, out.String(), "Press Enter to exit")

	// EOF must not block.
	WaitForEnter(strings.NewReader(""), &out)
}
