package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTemplate_Hash(t *testing.T) {
	base := NewTemplate("Report")
	base.Tags = []string{"work", "important"}
	base.Pages[0].Elements = append(base.Pages[0].Elements, NewElement(ElementText, Position{X: 20, Y: 20}, DefaultElementSize))

	t.Run("identical templates produce identical hashes", func(t *testing.T) {
		assert.Equal(t, base.Hash(), base.Clone().Hash())
	})

	t.Run("tag order and case are ignored", func(t *testing.T) {
		other := base.Clone()
		other.Tags = []string{"IMPORTANT", "work"}
		assert.Equal(t, base.Hash(), other.Hash())
	})

	t.Run("bookkeeping fields are ignored", func(t *testing.T) {
		other := base.Clone()
		other.Version = 7
		other.Revision = 3
		other.Persisted = true
		other.UpdatedAt = time.Now().Add(time.Hour)
		assert.Equal(t, base.Hash(), other.Hash())
	})

	t.Run("content edits change the hash", func(t *testing.T) {
		moved := base.Clone()
		moved.Pages[0].Elements[0].Position.X = 30

		renamed := base.Clone()
		renamed.Name = "Other"

		assert.NotEqual(t, base.Hash(), moved.Hash())
		assert.NotEqual(t, base.Hash(), renamed.Hash())
	})
}

func TestHashString(t *testing.T) {
	assert.Equal(t, HashString("a", "b"), HashString("a", "b"))
	assert.NotEqual(t, HashString("ab"), HashString("a", "b"))
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "My_report__v2__1700000000000.pdf", ExportFilename("My report (v2)", 1700000000000, ExportPDF))
}
