package util

import (
	"fmt"
	"strings"
)

// Truthy reports whether a user-supplied flag string means "yes".
func Truthy(s string) bool {
	normalized := strings.ToLower(strings.TrimSpace(s))
	return normalized == "true" || normalized == "1" || normalized == "yes"
}

// Must panics on err, for initialization that cannot sensibly fail at
// runtime (compiled-in schemas, templates).
func Must[V any](v V, err error) V {
	if err != nil {
		panic(fmt.Sprintf("util.Must: %v", err))
	}

	return v
}
