package auth

import (
	"fmt"
	"strings"
)

// parseCredentialList parses "a1:b1,a2:b2" into a map of a -> b. The split
// happens at the first colon so values may contain further colons. Blank
// entries are skipped; label prefixes error messages.
func parseCredentialList(label, config, want string) (map[string]string, error) {
	trimmed := strings.TrimSpace(config)
	if trimmed == "" {
		return nil, fmt.Errorf("%s: config must not be empty", label)
	}

	out := make(map[string]string)
	for _, entry := range strings.Split(trimmed, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		left, right, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("%s: invalid entry format, expected %s", label, want)
		}

		left = strings.TrimSpace(left)
		right = strings.TrimSpace(right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("%s: both parts of %s must be set", label, want)
		}

		out[left] = right
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no valid entries found", label)
	}

	return out, nil
}
