package util

import "strings"

var titleJunk = strings.NewReplacer("\n", "", "\r", "", "|", "")

func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// CleanTitle drops line breaks and pipe separators some boards wrap titles with.
func CleanTitle(s string) string {
	return CleanText(titleJunk.Replace(s))
}
