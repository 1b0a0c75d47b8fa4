package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// GenerateCacheKey derives a deterministic key from the search query and
// every option that changes the response shape. Filter keys are sorted so
// map iteration order cannot produce distinct keys for equal filters.
func GenerateCacheKey(query string, topK int, filter map[string]any, includeValues, includeMetadata, returnScores bool) string {
	var b strings.Builder
	b.WriteString(query)
	fmt.Fprintf(&b, "|k=%d|v=%t|m=%t|s=%t", topK, includeValues, includeMetadata, returnScores)

	if len(filter) > 0 {
		keys := make([]string, 0, len(filter))
		for k := range filter {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			val, _ := json.Marshal(filter[k])
			fmt.Fprintf(&b, "|f:%s=%s", k, val)
		}
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
