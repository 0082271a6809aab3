package visibility

import "strings"

// nodeWithinTree reports whether nodeID is rootID itself or a descendant of
// it in the colon-delimited node path hierarchy ("a:b:c" is under "a:b" and
// "a").
func nodeWithinTree(nodeID, rootID string) bool {
	return nodeID == rootID || strings.HasPrefix(nodeID, rootID+":")
}

// containsAny reports whether any element of keys is present in chain.
func containsAny(chain []string, keys map[string]bool) bool {
	for _, id := range chain {
		if keys[id] {
			return true
		}
	}
	return false
}
