package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hello world", "hello world"},
		{"tags stripped", "<p>hello <b>world</b></p>", "hello world"},
		{"script removed", "<script>alert(1)</script>hello", "hello"},
		{"style removed", "<style>body{color:red}</style>hello", "hello"},
		{"entities decoded", "fish &amp; chips", "fish & chips"},
		{"whitespace collapsed", "a\n\n  b\t c", "a b c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeHTML(tt.in))
		})
	}
}

func TestFoldAccents(t *testing.T) {
	assert.Equal(t, "Jose", FoldAccents("José"))
	assert.Equal(t, "uber cafe", FoldAccents("über café"))
	assert.Equal(t, "plain", FoldAccents("plain"))
}

func TestToValidUTF8(t *testing.T) {
	assert.Equal(t, "ok", ToValidUTF8("ok"))
	assert.Equal(t, "ab", ToValidUTF8("a\xffb"))
}
