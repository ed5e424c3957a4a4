package cli

import (
	"context"
	"fmt"
	"os"
	gosync "sync"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/autosave"
	"github.com/mithrel/folio/internal/editor"
	"github.com/mithrel/folio/internal/wire"
	"github.com/mithrel/folio/pkg/api"
)

func newTemplateEditCmd() *cobra.Command {
	var newName string
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Edit a template as JSON in $EDITOR",
		Long: "Edit a template as JSON in $EDITOR. While the editor is open the file is\n" +
			"autosaved whenever it parses, validates and differs from the last save.",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var t *api.Template
			switch {
			case len(args) == 1:
				loaded, err := app.Sync.Load(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				t = loaded
			case newName != "":
				t = api.NewTemplate(newName)
			default:
				return fmt.Errorf("give a template id or --new <name>")
			}
			return editTemplate(cmd, app, t)
		},
	}
	cmd.Flags().StringVar(&newName, "new", "", "start a new template with this name")
	return cmd
}

// editSession tracks the document the editor file was last saved as.
type editSession struct {
	mu   gosync.Mutex
	path string
	doc  *api.Template
}

// snapshot parses the editor file. Files that do not parse or validate are
// skipped until the next tick.
func (s *editSession) snapshot() *api.Template {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	edited, res, err := editor.ParseEdited(b)
	if err != nil || !res.IsValid {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	editor.Carry(s.doc, edited)
	return edited
}

func (s *editSession) adopt(saved *api.Template) {
	s.mu.Lock()
	s.doc = saved
	s.mu.Unlock()
}

func (s *editSession) current() *api.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

func editTemplate(cmd *cobra.Command, app *wire.App, t *api.Template) error {
	path, err := editor.PathForID(t.ID)
	if err != nil {
		return err
	}
	defer os.Remove(path)
	initial, err := editor.ComposeContent(t)
	if err != nil {
		return err
	}
	sess := &editSession{path: path, doc: t}

	save := func(ctx context.Context, doc *api.Template) (*api.Template, error) {
		return app.Sync.Save(ctx, doc, nil)
	}
	saver := autosave.New(app.Cfg.GetDuration("autosave.interval"), sess.snapshot, save, app.Log.Named("autosave"))
	saver.Saved = sess.adopt
	saver.MarkSaved(t)
	if app.Cfg.GetBool("autosave.enabled") {
		if err := saver.Start(); err != nil {
			return err
		}
	}

	out, changed, err := editor.OpenAt(path, initial)
	saver.Stop()
	if err != nil {
		return err
	}
	if !changed {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No edits; template unchanged.")
		return nil
	}

	edited, res, err := editor.ParseEdited(out)
	if err != nil {
		return err
	}
	if !res.IsValid {
		for _, e := range res.Errors {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr(), "error:", e)
		}
		return fmt.Errorf("edit not saved: template has %d errors", len(res.Errors))
	}
	editor.Carry(sess.current(), edited)
	if !saver.Dirty(edited) {
		saved := sess.current()
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tv%d\n", saved.ID, saved.Name, saved.Version)
		return nil
	}
	saved, err := app.Sync.Save(cmd.Context(), edited, nil)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tv%d\n", saved.ID, saved.Name, saved.Version)
	return nil
}
