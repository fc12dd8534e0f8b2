package tcp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanDelimitedLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "Single", input: "hello\n", want: []string{"hello\n"}},
		{name: "Multiple", input: "a\nb\n", want: []string{"a\n", "b\n"}},
		{name: "Carriage Return Kept", input: "a\r\n", want: []string{"a\r\n"}},
		{name: "Trailing Partial Dropped", input: "a\nbc", want: []string{"a\n"}},
		{name: "Empty", input: "", want: nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newLineScanner(strings.NewReader(tt.input), 64)
			var got []string
			for s.Scan() {
				got = append(got, s.Text())
			}
			require.NoError(t, s.Err(), "Scanning should not fail.")
			assert.Equal(t, tt.want, got, "Lines should match.")
		})
	}
}

func TestScanLineTooLong(t *testing.T) {
	t.Parallel()
	s := newLineScanner(strings.NewReader("ok\n"+strings.Repeat("x", 20)+"\n"), 8)
	require.True(t, s.Scan(), "Short line should scan.")
	assert.Equal(t, "ok\n", s.Text())
	assert.False(t, s.Scan(), "Long line should stop the scanner.")
	assert.Error(t, s.Err(), "Long line should be reported.")
}
