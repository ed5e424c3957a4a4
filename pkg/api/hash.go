package api

import (
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 digest of the document content.
// Timestamps, version, revision and the persisted flag are excluded so the
// hash only changes when the user edits something.
func (t *Template) Hash() string {
	c := t.Clone()
	c.Version, c.Revision = 0, 0
	c.Persisted = false
	c.CreatedAt, c.UpdatedAt = time.Time{}, time.Time{}
	tags := make([]string, 0, len(c.Tags))
	for _, tag := range c.Tags {
		tags = append(tags, strings.ToLower(tag))
	}
	sort.Strings(tags)
	c.Tags = tags

	h := blake3.New()
	_ = json.NewEncoder(h).Encode(c)
	return hex.EncodeToString(h.Sum(nil))
}

// HashString returns the BLAKE3 hex digest of the given parts joined by NUL.
func HashString(parts ...string) string {
	h := blake3.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return hex.EncodeToString(h.Sum(nil))
}
