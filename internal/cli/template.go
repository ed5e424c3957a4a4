package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/errs"
	"github.com/mithrel/folio/internal/present"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/internal/wire"
	"github.com/mithrel/folio/pkg/api"
)

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "template",
		Aliases: []string{"t"},
		Short:   "Work with templates in the store",
	}
	cmd.AddCommand(newTemplateListCmd())
	cmd.AddCommand(newTemplateShowCmd())
	cmd.AddCommand(newTemplateSearchCmd())
	cmd.AddCommand(newTemplateCreateCmd())
	cmd.AddCommand(newTemplateSaveCmd())
	cmd.AddCommand(newTemplateDeleteCmd())
	cmd.AddCommand(newTemplateDuplicateCmd())
	cmd.AddCommand(newTemplateValidateCmd())
	cmd.AddCommand(newTemplateExportCmd())
	cmd.AddCommand(newTemplateRenderCmd())
	cmd.AddCommand(newTemplateEditCmd())
	return cmd
}

func newTemplateListCmd() *cobra.Command {
	var out outputFlags
	var f api.ListFilters
	var tags, public string
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options()
			if err != nil {
				return err
			}
			f.Tags = splitCSV(tags)
			if public != "" {
				b, err := strconv.ParseBool(public)
				if err != nil {
					return fmt.Errorf("invalid --public: %s", public)
				}
				f.IsPublic = &b
			}
			if !all {
				res := app.Sync.List(cmd.Context(), f)
				if err := lastFailure(app, "list"); err != nil {
					return err
				}
				return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
					return present.RenderTemplates(w, res.Templates, opts)
				})
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return streamAll(cmd.Context(), app, f, present.NewStream(w, opts))
			})
		},
	}
	cmd.Flags().StringVar(&f.Category, "category", "", "only templates in this category")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags (any match)")
	cmd.Flags().StringVar(&public, "public", "", "true or false")
	cmd.Flags().StringVar(&f.CreatedBy, "created-by", "", "only templates created by this user")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "page size (store default when 0)")
	cmd.Flags().StringVar(&f.SortBy, "sort-by", "", "name|createdAt|updatedAt|category")
	cmd.Flags().StringVar(&f.SortOrder, "sort-order", "", "asc|desc")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every page")
	addOutputFlags(cmd, &out, "plain")
	return cmd
}

// streamAll walks list pages from f.Page until the store runs out.
func streamAll(ctx context.Context, app *wire.App, f api.ListFilters, sw present.StreamWriter) error {
	f.Page = max(f.Page, 1)
	seen := 0
	for {
		res := app.Sync.List(ctx, f)
		if err := lastFailure(app, "list"); err != nil {
			_ = sw.Close()
			return err
		}
		if len(res.Templates) == 0 {
			break
		}
		if err := sw.WriteTemplates(res.Templates); err != nil {
			return err
		}
		seen += len(res.Templates)
		if seen >= res.Total {
			break
		}
		f.Page++
	}
	return sw.Close()
}

// lastFailure surfaces a failure List or Search recorded instead of
// returning. Entries are dismissed once reported.
func lastFailure(app *wire.App, op string) error {
	for _, e := range app.Errors.List() {
		if e.Op == op {
			app.Errors.Dismiss(e.ID)
			return &errs.Error{Kind: e.Kind, Message: e.Message, Details: e.Details}
		}
	}
	return nil
}

func newTemplateShowCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:               "show <id>",
		Short:             "Show one template",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options()
			if err != nil {
				return err
			}
			t, err := app.Sync.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return withPager(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), func(w io.Writer) error {
				return present.RenderTemplate(w, *t, opts)
			})
		},
	}
	addOutputFlags(cmd, &out, "pretty")
	return cmd
}

func newTemplateSearchCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search templates by name, description or tag",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options()
			if err != nil {
				return err
			}
			res := app.Sync.Search(cmd.Context(), strings.Join(args, " "))
			if err := lastFailure(app, "search"); err != nil {
				return err
			}
			return present.RenderTemplates(cmd.OutOrStdout(), res, opts)
		},
	}
	addOutputFlags(cmd, &out, "plain")
	return cmd
}

func newTemplateCreateCmd() *cobra.Command {
	var meta api.SaveMetadata
	var tags string
	var public bool
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty template",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			t := api.NewTemplate(strings.TrimSpace(strings.Join(args, " ")))
			meta.Tags = splitCSV(tags)
			if cmd.Flags().Changed("public") {
				meta.IsPublic = &public
			}
			saved, err := app.Sync.Save(cmd.Context(), t, &meta)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", saved.ID, saved.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&meta.Description, "description", "", "template description")
	cmd.Flags().StringVar(&meta.Category, "category", "", "template category")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")
	cmd.Flags().BoolVar(&public, "public", false, "make the template public")
	return cmd
}

func newTemplateSaveCmd() *cobra.Command {
	var writeBack bool
	cmd := &cobra.Command{
		Use:   "save <file.json>",
		Short: "Save a template document from a file",
		Long: "Save a template document from a file. Documents never saved before are created;\n" +
			"documents carrying \"persisted\": true update the stored copy.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			t, err := readTemplateFile(args[0])
			if err != nil {
				return err
			}
			saved, err := app.Sync.Save(cmd.Context(), t, nil)
			if err != nil {
				return err
			}
			if writeBack {
				if err := writeTemplateFile(args[0], saved); err != nil {
					return err
				}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tv%d\n", saved.ID, saved.Name, saved.Version)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&writeBack, "write", "w", false, "write the stored copy back to the file")
	return cmd
}

func newTemplateDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <id>...",
		Aliases:           []string{"rm"},
		Short:             "Delete templates",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			var errList []error
			for _, id := range args {
				if err := app.Sync.Delete(cmd.Context(), id); err != nil {
					errList = append(errList, fmt.Errorf("%s: %w", id, err))
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted\t%s\n", id)
			}
			return errors.Join(errList...)
		},
	}
}

func newTemplateDuplicateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:               "duplicate <id>",
		Short:             "Copy a template",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			dup, err := app.Sync.Duplicate(cmd.Context(), args[0], name)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", dup.ID, dup.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name of the copy (default \"<name> (Copy)\")")
	return cmd
}

func newTemplateValidateCmd() *cobra.Command {
	var out outputFlags
	var remote bool
	cmd := &cobra.Command{
		Use:               "validate <id|file.json>",
		Short:             "Check a template for structural problems",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options()
			if err != nil {
				return err
			}
			t, err := resolveTemplate(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			var res api.ValidationResult
			if remote {
				res, err = app.Sync.ValidateRemote(cmd.Context(), t)
				if err != nil {
					return err
				}
			} else {
				res = validate.Validate(t, validate.DefaultOptions())
			}
			if err := present.RenderValidation(cmd.OutOrStdout(), res, opts); err != nil {
				return err
			}
			if !res.IsValid {
				return fmt.Errorf("template has %d errors", len(res.Errors))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "validate on the store instead of locally")
	addOutputFlags(cmd, &out, "plain")
	return cmd
}

// resolveTemplate reads arg as a file when one exists at that path and
// loads it from the store otherwise.
func resolveTemplate(ctx context.Context, app *wire.App, arg string) (*api.Template, error) {
	if st, err := os.Stat(arg); err == nil && !st.IsDir() {
		return readTemplateFile(arg)
	}
	return app.Sync.Load(ctx, arg)
}

func readTemplateFile(path string) (*api.Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t api.Template
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &t, nil
}

func writeTemplateFile(path string, t *api.Template) error {
	b, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o600)
}
