package service

import (
	"regexp"
	"strings"
)

const broadcastToken = "@all"

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9_]+)`)

// ExtractMentions returns each distinct @name in content, in order of first
// appearance, without the @ and without the broadcast token.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]bool, len(matches))
	var names []string
	for _, m := range matches {
		name := m[1]
		if "@"+name == broadcastToken || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// IsBroadcast reports whether content addresses every user. The check is a
// plain substring match, so "@allison" also counts.
func IsBroadcast(content string) bool {
	return strings.Contains(content, broadcastToken)
}
