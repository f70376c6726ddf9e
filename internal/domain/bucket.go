package domain

import (
	"sort"
	"strings"
)

// NormalizeBucketSet turns a request's bucket list into a set:
// blank names are dropped, duplicates collapsed and the result sorted
func NormalizeBucketSet(buckets []string) []string {
	seen := make(map[string]struct{}, len(buckets))
	out := make([]string, 0, len(buckets))
	for _, b := range buckets {
		if strings.TrimSpace(b) == "" {
			continue
		}
		if _, dup := seen[b]; dup {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}
