package analyzer

import (
	"regexp"
	"sort"
	"strings"
)

// Extraction patterns, applied in order with all matches unioned. The
// stoplist is applied after matching so it can change without touching
// these expressions.
var (
	cashtagRe = regexp.MustCompile(`\$([A-Z]{2,10})\b`)
	hashtagRe = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
	atRefRe   = regexp.MustCompile(`@([A-Za-z0-9_]+)`)
	suffixRe  = regexp.MustCompile(`(?i)\b([a-z0-9]+(?:coin|token))\b`)
)

// ExplicitHit is one extracted candidate key with the pattern category
// that produced it.
type ExplicitHit struct {
	Key      string
	Category string
}

// ExtractExplicit returns the directly-named candidate keys in a post.
// Duplicate matches within one post collapse to one hit; stoplisted keys
// are removed after extraction.
func ExtractExplicit(text string, stopset map[string]struct{}) []ExplicitHit {
	found := make(map[string]string)

	for _, m := range cashtagRe.FindAllStringSubmatch(text, -1) {
		found[strings.ToUpper(m[1])] = "symbol"
	}
	for _, m := range suffixRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToUpper(m[1])
		if _, ok := found[key]; !ok {
			found[key] = "symbol"
		}
	}
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if _, ok := found[key]; !ok {
			found[key] = "hashtag"
		}
	}
	for _, m := range atRefRe.FindAllStringSubmatch(text, -1) {
		key := strings.ToLower(m[1])
		if _, ok := found[key]; !ok {
			found[key] = "account"
		}
	}

	hits := make([]ExplicitHit, 0, len(found))
	for key, category := range found {
		if _, stopped := stopset[strings.ToUpper(key)]; stopped {
			continue
		}
		hits = append(hits, ExplicitHit{Key: key, Category: category})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Key < hits[j].Key })
	return hits
}
