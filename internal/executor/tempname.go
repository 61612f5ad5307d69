package executor

import (
	"encoding/hex"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// TempMarker starts every temporary name. No legal target name produced by
// the planners begins with it.
const TempMarker = ".__bulkrename_tmp__"

const tokenLen = 8

// NewTempName returns a temporary name for original: the marker, an 8-hex
// random token, "__" and the original name.
func NewTempName(original string) string {
	id := uuid.New()
	token := hex.EncodeToString(id[:tokenLen/2])
	return TempMarker + token + "__" + original
}

// tempPath returns a temporary path next to source.
func tempPath(source string) string {
	return filepath.Join(filepath.Dir(source), NewTempName(filepath.Base(source)))
}

// IsTempName reports whether name is a well-formed temporary name.
func IsTempName(name string) bool {
	_, ok := ParseTempName(name)
	return ok
}

// ParseTempName recovers the original name encoded in a temporary name.
func ParseTempName(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, TempMarker)
	if !ok || len(rest) < tokenLen+2 {
		return "", false
	}
	if _, err := hex.DecodeString(rest[:tokenLen]); err != nil {
		return "", false
	}
	original, ok := strings.CutPrefix(rest[tokenLen:], "__")
	if !ok || original == "" {
		return "", false
	}
	return original, true
}
