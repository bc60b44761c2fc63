// Package cache implements the two-tier hybrid cache described in §4.8:
// an in-memory LRU tier for hot, small, frequently-invalidated data and
// a persistent blob tier for large, immutable message bodies.
package cache

import (
	"fmt"
	"regexp"
	"strings"
)

// Key shapes, colon-separated for prefix locality (§4.8).
func SenderKey(email string) string        { return "sender:" + strings.ToLower(email) }
func SendersAllKey() string                 { return "senders:all" }
func FoldersKey(senderID string) string     { return fmt.Sprintf("folders:%s", senderID) }
func StatusKey(senderID, folder string) string {
	return fmt.Sprintf("status:%s:%s", senderID, folder)
}
func MessagesKey(senderID, folder, query string) string {
	if query == "" {
		return fmt.Sprintf("messages:%s:%s", senderID, folder)
	}
	return fmt.Sprintf("messages:%s:%s|q:%s", senderID, folder, query)
}
func MessageKey(senderID, folder string, uid uint32) string {
	return fmt.Sprintf("message:%s:%s:%d", senderID, folder, uid)
}
func BodyKey(senderID, folder string, uid uint32) string {
	return fmt.Sprintf("body:%s:%s:%d", senderID, folder, uid)
}
func APIKeyKey(apiKey string) string { return "apikey:" + apiKey }

// anchoredPrefix builds a regexp that matches a key exactly equal to
// prefix or nested under it, anchored so that "abc" never matches
// "abcd" (§4.8, testable property 8). The `|` branch covers
// MessagesKey's "<prefix>|q:<query>" listing-suffix form so that a
// folder/message invalidation also drops cached query listings.
func anchoredPrefix(prefix string) *regexp.Regexp {
	return regexp.MustCompile("^" + regexp.QuoteMeta(prefix) + `($|:|\|)`)
}

// likePattern converts a SQL-LIKE-style pattern (% wildcard) used by
// the persistent tier's deletePattern into an anchored regexp.
func likePattern(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(pattern)
	escaped = strings.ReplaceAll(escaped, `%`, ".*")
	return regexp.MustCompile("^" + escaped + "$")
}
