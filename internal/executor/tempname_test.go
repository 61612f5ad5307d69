package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTempName(t *testing.T) {
	name := NewTempName("photo.png")
	assert.True(t, strings.HasPrefix(name, TempMarker))
	assert.True(t, strings.HasSuffix(name, "__photo.png"))
	assert.Len(t, name, len(TempMarker)+8+2+len("photo.png"))
	assert.NotEqual(t, name, NewTempName("photo.png"))

	original, ok := ParseTempName(name)
	assert.True(t, ok)
	assert.Equal(t, "photo.png", original)
}

func TestParseTempName(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"valid", TempMarker + "0a1b2c3d__a.txt", "a.txt", true},
		{"original with separators", TempMarker + "deadbeef__x__y.txt", "x__y.txt", true},
		{"no marker", "0a1b2c3d__a.txt", "", false},
		{"short token", TempMarker + "0a1b__a.txt", "", false},
		{"non-hex token", TempMarker + "zzzzzzzz__a.txt", "", false},
		{"missing separator", TempMarker + "0a1b2c3d_a.txt", "", false},
		{"empty original", TempMarker + "0a1b2c3d__", "", false},
		{"ordinary dotfile", ".bashrc", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTempName(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, IsTempName(tt.in))
		})
	}
}
