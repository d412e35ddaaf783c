package analyzer

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	urlRe        = regexp.MustCompile(`https?://[^\s]+`)
)

// Query parameters that carry tracking state, stripped before hashing so
// the same link shared through different campaigns still collapses.
var trackingParams = map[string]struct{}{
	"ref": {}, "fbclid": {}, "gclid": {}, "igshid": {}, "mc_cid": {}, "mc_eid": {},
}

// DedupIndex is the cross-run fingerprint set. It is an explicit value
// owned by the caller, not hidden process state; hosts persist its
// snapshot and merge shards from parallel batches.
type DedupIndex struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewDedupIndex() *DedupIndex {
	return &DedupIndex{seen: make(map[string]struct{})}
}

// Add records a fingerprint. It reports whether the fingerprint was new.
func (d *DedupIndex) Add(fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[fp]; ok {
		return false
	}
	d.seen[fp] = struct{}{}
	return true
}

func (d *DedupIndex) Contains(fp string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.seen[fp]
	return ok
}

// Merge folds another index into this one. Union semantics; the other
// index is left unchanged.
func (d *DedupIndex) Merge(other *DedupIndex) {
	if other == nil {
		return
	}
	other.mu.Lock()
	fps := make([]string, 0, len(other.seen))
	for fp := range other.seen {
		fps = append(fps, fp)
	}
	other.mu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fp := range fps {
		d.seen[fp] = struct{}{}
	}
}

// Clear resets the index. This is the explicit "clear history" operation.
func (d *DedupIndex) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen = make(map[string]struct{})
}

// Snapshot returns the fingerprints sorted, for persistence.
func (d *DedupIndex) Snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	fps := make([]string, 0, len(d.seen))
	for fp := range d.seen {
		fps = append(fps, fp)
	}
	sort.Strings(fps)
	return fps
}

func (d *DedupIndex) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// normalizeText canonicalizes text for hashing only. The stored post keeps
// its original casing and spacing.
func normalizeText(text string) string {
	text = urlRe.ReplaceAllStringFunc(text, stripTracking)
	text = strings.ToLower(text)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// stripTracking removes tracking query parameters from a URL. Unparseable
// URLs pass through unchanged.
func stripTracking(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for key := range q {
		if _, ok := trackingParams[strings.ToLower(key)]; ok || strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Fingerprint derives the dedup hash for a post: normalized text, author,
// and creation time truncated to the window. Reposts of the same content
// by the same author inside one window collapse; repeated campaigns
// across windows are retained.
func Fingerprint(normText, authorID string, createdAt time.Time, window time.Duration) string {
	bucket := createdAt.UTC().Truncate(window).Unix()
	h := sha256.New()
	h.Write([]byte(normText))
	h.Write([]byte{0x1f})
	h.Write([]byte(authorID))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.FormatInt(bucket, 10)))
	return hex.EncodeToString(h.Sum(nil))
}

// NormalizeAndDedup canonicalizes a raw batch and rejects duplicates and
// malformed records. A fingerprint enters seen if and only if its post is
// accepted. Rejections are counted, never errors.
func NormalizeAndDedup(raw []models.RawPost, seen *DedupIndex, window time.Duration) (accepted []models.Post, rejected int) {
	accepted = make([]models.Post, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" || r.AuthorID == "" {
			rejected++
			continue
		}
		norm := normalizeText(r.Text)
		fp := Fingerprint(norm, r.AuthorID, r.CreatedAt, window)
		if !seen.Add(fp) {
			rejected++
			continue
		}
		accepted = append(accepted, models.Post{
			ID:             r.ID,
			AuthorID:       r.AuthorID,
			Text:           r.Text,
			NormalizedText: norm,
			Fingerprint:    fp,
			CreatedAt:      r.CreatedAt,
			Tags:           r.Tags,
			Mentions:       r.Mentions,
			Likes:          r.Likes,
			Reposts:        r.Reposts,
			Replies:        r.Replies,
			Source:         r.Source,
		})
	}
	return accepted, rejected
}
