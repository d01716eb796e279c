package domain

import "strings"

// Source identifies the listing site a posting came from.
type Source string

const (
	SourceRemoteOK       Source = "remoteok"
	SourceWeWorkRemotely Source = "weworkremotely"
	SourceRemoteCo       Source = "remoteco"
)

var displayNames = map[Source]string{
	SourceRemoteOK:       "RemoteOK",
	SourceWeWorkRemotely: "WeWorkRemotely",
	SourceRemoteCo:       "Remote.co",
}

// DisplayName is the human label persisted alongside records.
func (s Source) DisplayName() string {
	if n, ok := displayNames[s]; ok {
		return n
	}
	return string(s)
}

// ParseSource accepts either the key ("remoteco") or the display name ("Remote.co").
func ParseSource(v string) (Source, bool) {
	v = strings.TrimSpace(v)
	for s, name := range displayNames {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, name) {
			return s, true
		}
	}
	return "", false
}
