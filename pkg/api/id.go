package api

import (
	"strings"

	"github.com/google/uuid"
)

// DraftIDPrefix labels ids assigned locally to documents the store has not
// seen yet. It is informational only; Template.Persisted drives routing.
const DraftIDPrefix = "template_"

// NewID returns a random id for pages and elements.
func NewID() string {
	return uuid.NewString()
}

// NewDraftID returns an id in the local draft namespace.
func NewDraftID() string {
	return DraftIDPrefix + uuid.NewString()
}

func IsDraftID(id string) bool {
	return strings.HasPrefix(id, DraftIDPrefix)
}
