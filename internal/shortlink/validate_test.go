package shortlink

import (
	"strings"
	"testing"

	"github.com/abdusco/shortlink/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{input: "https://example.com/a", want: "https://example.com/a", ok: true},
		{input: "  http://example.com  ", want: "http://example.com", ok: true},
		{input: "HTTPS://EXAMPLE.COM/x?y=1", want: "HTTPS://EXAMPLE.COM/x?y=1", ok: true},
		{input: "/docs", want: "/docs", ok: true},
		{input: "/docs/page?x=1#top", want: "/docs/page?x=1#top", ok: true},
		{input: ""},
		{input: "   "},
		{input: "example.com"},
		{input: "//example.com/a"},
		{input: "javascript:alert(1)"},
		{input: "data:text/html,hi"},
		{input: "ftp://example.com/file"},
		{input: "https://"},
		{input: "https://example.com/" + strings.Repeat("a", maxURLLength)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateURL(tt.input)
			if !tt.ok {
				assert.ErrorIs(t, err, internal.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
