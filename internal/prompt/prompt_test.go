package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptLine(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(strings.NewReader("hello world\r\nsecond\n"), &out)

	got, err := term.PromptLine(context.Background(), "Body")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Body: ", out.String())

	got, err = term.PromptLine(context.Background(), "Next")
	require.NoError(t, err)
	assert.Equal(t, "second", got)

	_, err = term.PromptLine(context.Background(), "More")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPromptLine_LastLineWithoutNewline(t *testing.T) {
	term := NewTerminal(strings.NewReader("tail"), io.Discard)
	got, err := term.PromptLine(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "tail", got)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"maybe\ny\n", false, true},
		{"", true, false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			term := NewTerminal(strings.NewReader(tt.input), io.Discard)
			got, err := term.Confirm(context.Background(), "Delete 3 objects?", tt.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirm_Hint(t *testing.T) {
	var out bytes.Buffer
	_, err := NewTerminal(strings.NewReader("\n"), &out).Confirm(context.Background(), "Purge?", false)
	require.NoError(t, err)
	assert.Equal(t, "Purge? [y/N] ", out.String())
}

func TestPromptLine_Cancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewTerminal(r, io.Discard).PromptLine(ctx, "x")
	assert.ErrorIs(t, err, context.Canceled)
}
