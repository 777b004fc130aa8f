package forge_err

import (
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestExpectedUserError(t *testing.T) {
	t.Parallel()

	err := NewUserError("operator declined")
	assert.True(t, IsExpectedUserError(err))

	wrapped := cerr.Wrap(NewExpectedError(cerr.New("inner")), "outer")
	assert.True(t, IsExpectedUserError(wrapped))

	assert.False(t, IsExpectedUserError(cerr.New("plain")))
	assert.Nil(t, NewExpectedError(nil))
}

func TestExtractSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"empty", "   ", "No output provided."},
		{"picks error lines", "ok\nError: bind failed\nmore", "Error: bind failed"},
		{"caps candidates", "error one\nerror two\nerror three", "error one - error two"},
		{"falls back to first line", "just chatter\nmore chatter", "just chatter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummary(tt.output, 2))
		})
	}
}
