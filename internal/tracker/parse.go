package tracker

import (
	"regexp"
	"strings"
)

// #region kv-parsing
var kvSplit = regexp.MustCompile(`[,\s]+`)

// ParseKV splits "distance=8.2 steps=12345, kcal=640" into a lowercase-keyed
// map. Tokens without '=' are dropped.
func ParseKV(text string) map[string]string {
	kv := make(map[string]string)
	for _, part := range kvSplit.Split(strings.TrimSpace(text), -1) {
		if !strings.Contains(part, "=") {
			continue
		}
		pieces := strings.SplitN(part, "=", 2)
		kv[strings.ToLower(pieces[0])] = pieces[1]
	}
	return kv
}

// #endregion kv-parsing
