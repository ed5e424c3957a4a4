// Package editor round-trips a template through the user's $EDITOR as
// indented JSON.
package editor

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

const commentPrefix = "#"

// ComposeContent creates the text presented to the editor.
func ComposeContent(t *api.Template) ([]byte, error) {
	body, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	var b bytes.Buffer
	b.WriteString("# folio template\n")
	b.WriteString("# Lines starting with '#' before the JSON are ignored.\n")
	b.WriteString("# id, version and timestamps are managed by the store.\n")
	b.Write(body)
	b.WriteString("\n")
	return b.Bytes(), nil
}

// ParseEdited decodes editor output, fills defaults and validates the
// result. A validation failure is reported in the result, not as an error.
func ParseEdited(data []byte) (*api.Template, api.ValidationResult, error) {
	var kept []string
	header := true
	for _, line := range strings.Split(string(data), "\n") {
		if header && (strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), commentPrefix)) {
			continue
		}
		header = false
		kept = append(kept, line)
	}
	if len(kept) == 0 {
		return nil, api.ValidationResult{}, errors.New("empty document")
	}
	var t api.Template
	if err := json.Unmarshal([]byte(strings.Join(kept, "\n")), &t); err != nil {
		return nil, api.ValidationResult{}, fmt.Errorf("parse template: %w", err)
	}
	doc := validate.Sanitize(&t)
	return doc, validate.Validate(doc, validate.DefaultOptions()), nil
}

// Carry copies store-managed fields from orig onto edited so an edit cannot
// move the identity or version of the document.
func Carry(orig, edited *api.Template) {
	edited.ID = orig.ID
	edited.Version = orig.Version
	edited.Revision = orig.Revision
	edited.CreatedAt = orig.CreatedAt
	edited.UpdatedAt = orig.UpdatedAt
	edited.CreatedBy = orig.CreatedBy
	edited.Persisted = orig.Persisted
}

// PreferredEditor finds a suitable editor from env or common defaults.
func PreferredEditor() (string, error) {
	if v := os.Getenv("VISUAL"); v != "" {
		return v, nil
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e, nil
	}
	for _, cand := range []string{"nvim", "vim", "vi", "nano"} {
		if p, err := exec.LookPath(cand); err == nil {
			return p, nil
		}
	}
	return "", errors.New("no editor found; set $EDITOR or $VISUAL")
}

// PathForID returns a temp file path for a template ID.
func PathForID(id string) (string, error) {
	name := sanitizeName(id) + ".folio.json"
	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		return filepath.Join(xdg, "folio", name), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "folio", "edit", name), nil
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "new"
	}
	return b.String()
}

func writeFile0600(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, fs.FileMode(0o600))
}

// OpenAt opens the editor at path with initial content and returns final bytes and whether it changed.
func OpenAt(path string, initial []byte) (final []byte, changed bool, err error) {
	if err := writeFile0600(path, initial); err != nil {
		return nil, false, err
	}
	// Honor VISUAL/EDITOR including flags by running via a shell wrapper.
	ed := os.Getenv("VISUAL")
	if ed == "" {
		ed = os.Getenv("EDITOR")
	}
	var cmd *exec.Cmd
	if strings.TrimSpace(ed) != "" {
		cmd = exec.Command("sh", "-c", "$EDITORCMD \"$FILEPATH\"")
		cmd.Env = append(os.Environ(), "EDITORCMD="+ed, "FILEPATH="+path)
	} else {
		prog, err := PreferredEditor()
		if err != nil {
			return nil, false, err
		}
		cmd = exec.Command(prog, path)
	}
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, false, err
	}
	out, err := os.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return out, !bytes.Equal(out, initial), nil
}

// Edit opens t in the editor and returns the edited, sanitized document.
// changed is false when the file was saved untouched.
func Edit(t *api.Template) (edited *api.Template, res api.ValidationResult, changed bool, err error) {
	path, err := PathForID(t.ID)
	if err != nil {
		return nil, res, false, err
	}
	defer os.Remove(path)
	initial, err := ComposeContent(t)
	if err != nil {
		return nil, res, false, err
	}
	out, changed, err := OpenAt(path, initial)
	if err != nil || !changed {
		return nil, res, changed, err
	}
	edited, res, err = ParseEdited(out)
	if err != nil {
		return nil, res, true, err
	}
	Carry(t, edited)
	return edited, res, true, nil
}
