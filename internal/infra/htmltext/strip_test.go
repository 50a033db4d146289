package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain text untouched", in: "Stocks rally on jobs data", want: "Stocks rally on jobs data"},
		{name: "inline tags", in: `<b>Nvidia</b> beats <a href="https://x.com">estimates</a>`, want: "Nvidia beats estimates"},
		{name: "entities decoded", in: "AT&amp;T &#39;guides&#39; higher", want: "AT&T 'guides' higher"},
		{name: "paragraphs keep a space", in: "<p>First line.</p><p>Second line.</p>", want: "First line. Second line."},
		{name: "scripts dropped", in: "Headline<script>alert(1)</script>", want: "Headline"},
		{name: "whitespace collapsed", in: "  a \n\n\t b  ", want: "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Strip(tt.in))
		})
	}
}
