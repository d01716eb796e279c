package util

import "strings"

// Delimiters used by the sources for composite location strings.
const (
	CommaOrPipe = ",|"
	Slash       = "/"
)

// SplitLocation splits on any rune in seps and trims each fragment. Empty
// input yields an empty (non-nil) slice, never [""].
func SplitLocation(text, seps string) []string {
	out := []string{}
	text = CleanText(text)
	if text == "" {
		return out
	}
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(seps, r)
	})
	for _, p := range parts {
		if p = CleanText(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// AppendFragment appends one already-separate location element if non-empty.
func AppendFragment(dst []string, s string) []string {
	if s = CleanText(s); s != "" {
		return append(dst, s)
	}
	return dst
}
