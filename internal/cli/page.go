package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/pages"
	"github.com/mithrel/folio/internal/upload"
	"github.com/mithrel/folio/pkg/api"
)

// editPages loads a template, applies fn through a page manager and saves
// the result. fn returns the line to print on success.
func editPages(cmd *cobra.Command, id string, fn func(m *pages.Manager) (string, error)) error {
	app := getApp(cmd)
	t, err := app.Sync.Load(cmd.Context(), id)
	if err != nil {
		return err
	}
	m := pages.New(t, pages.WithGrid(app.Grid()))
	msg, err := fn(m)
	if err != nil {
		return err
	}
	saved, err := app.Sync.Save(cmd.Context(), m.Template(), nil)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\tv%d\n", msg, saved.Version)
	return nil
}

// pageArg parses a 1-based page number into an index.
func pageArg(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid page number %q", s)
	}
	return n - 1, nil
}

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Add, remove and arrange the pages of a template",
	}
	cmd.AddCommand(newPageAddCmd())
	cmd.AddCommand(newPageRemoveCmd())
	cmd.AddCommand(newPageDuplicateCmd())
	cmd.AddCommand(newPageMoveCmd())
	cmd.AddCommand(newPageRenameCmd())
	cmd.AddCommand(newPageSettingsCmd())
	cmd.AddCommand(newPageRegionCmd())
	cmd.AddCommand(newPageBackgroundCmd())
	return cmd
}

func newPageAddCmd() *cobra.Command {
	var after int
	var name string
	cmd := &cobra.Command{
		Use:               "add <template-id>",
		Short:             "Add a page (at the end unless --after is set)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				id := m.AddPage(after-1, name)
				return fmt.Sprintf("added page %d\t%s", m.Current()+1, id), nil
			})
		},
	}
	cmd.Flags().IntVar(&after, "after", 0, "insert after this page number (0 appends)")
	cmd.Flags().StringVar(&name, "name", "", "page name (default \"Page N\")")
	return cmd
}

func newPageRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <template-id> <page>",
		Short: "Remove a page; the last page cannot be removed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if !m.RemovePage(idx) {
					return "", fmt.Errorf("cannot remove page %d of %d", idx+1, m.Len())
				}
				return fmt.Sprintf("removed page %d", idx+1), nil
			})
		},
	}
}

func newPageDuplicateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <template-id> <page>",
		Short: "Copy a page right after itself",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				id, ok := m.DuplicatePage(idx)
				if !ok {
					return "", pages.ErrInvalidIndex
				}
				return fmt.Sprintf("added page %d\t%s", idx+2, id), nil
			})
		},
	}
}

func newPageMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <template-id> <from> <to>",
		Short: "Move a page to another position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := pageArg(args[1])
			if err != nil {
				return err
			}
			to, err := pageArg(args[2])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if !m.ReorderPages(from, to) {
					return "", pages.ErrInvalidIndex
				}
				return fmt.Sprintf("moved page %d to %d", from+1, to+1), nil
			})
		},
	}
}

func newPageRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <template-id> <page> [name]",
		Short: "Rename a page; no name restores the generated one",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 3 {
				name = args[2]
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if !m.UpdatePageName(idx, name) {
					return "", pages.ErrInvalidIndex
				}
				return fmt.Sprintf("renamed page %d\t%s", idx+1, m.Template().Pages[idx].Name), nil
			})
		},
	}
}

func newPageSettingsCmd() *cobra.Command {
	var size, orientation, margins, bg string
	var width, height float64
	var showMargins bool
	cmd := &cobra.Command{
		Use:   "settings <template-id> <page>",
		Short: "Change page size, orientation or margins",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if idx >= m.Len() {
					return "", pages.ErrInvalidIndex
				}
				ps := api.DefaultPageSettings()
				if cur := m.Template().Pages[idx].PageSettings; cur != nil {
					ps = *cur
				}
				flags := cmd.Flags()
				if flags.Changed("size") {
					ps.Size = api.PageSize(size)
				}
				if flags.Changed("orientation") {
					ps.Orientation = api.Orientation(strings.ToLower(orientation))
				}
				if flags.Changed("width") || flags.Changed("height") {
					ps.CustomSize = &api.Size{Width: width, Height: height}
				}
				if flags.Changed("margins") {
					mg, err := parseMargins(margins)
					if err != nil {
						return "", err
					}
					ps.Margins = mg
				}
				if flags.Changed("background") {
					ps.BackgroundColor = bg
				}
				if flags.Changed("show-margins") {
					ps.ShowMargins = showMargins
				}
				if err := m.SetPageSettings(idx, ps); err != nil {
					return "", err
				}
				return fmt.Sprintf("page %d\t%s %s", idx+1, ps.Size, ps.Orientation), nil
			})
		},
	}
	cmd.Flags().StringVar(&size, "size", "", "A4|A3|Letter|Legal|Custom")
	cmd.Flags().StringVar(&orientation, "orientation", "", "portrait|landscape")
	cmd.Flags().Float64Var(&width, "width", 0, "custom width in mm")
	cmd.Flags().Float64Var(&height, "height", 0, "custom height in mm")
	cmd.Flags().StringVar(&margins, "margins", "", "all, or top,right,bottom,left in mm")
	cmd.Flags().StringVar(&bg, "background", "", "page background color")
	cmd.Flags().BoolVar(&showMargins, "show-margins", false, "draw margin guides")
	return cmd
}

func parseMargins(s string) (api.Spacing, error) {
	parts := splitCSV(s)
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return api.Spacing{}, fmt.Errorf("invalid margin %q", p)
		}
		vals[i] = v
	}
	switch len(vals) {
	case 1:
		return api.Spacing{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}, nil
	case 4:
		return api.Spacing{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}, nil
	}
	return api.Spacing{}, fmt.Errorf("invalid --margins %q: want 1 or 4 values", s)
}

func newPageRegionCmd() *cobra.Command {
	var height float64
	var replicate, clear bool
	cmd := &cobra.Command{
		Use:       "region <template-id> <page> header|footer",
		Short:     "Set or clear a page header or footer",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"header", "footer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			var kind pages.RegionKind
			switch args[2] {
			case "header":
				kind = pages.Header
			case "footer":
				kind = pages.Footer
			default:
				return fmt.Errorf("region must be header or footer, got %q", args[2])
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				var r *api.Region
				if !clear {
					r = &api.Region{Height: height, ReplicateAcrossPages: replicate, Elements: []api.Element{}}
					if idx < m.Len() {
						if cur := regionOf(m.Template().Pages[idx], kind); cur != nil {
							r.Elements = cur.Elements
						}
					}
				}
				if err := m.SetRegion(idx, kind, r); err != nil {
					return "", err
				}
				if clear {
					return fmt.Sprintf("cleared %s on page %d", args[2], idx+1), nil
				}
				return fmt.Sprintf("%s on page %d\t%.0fmm", args[2], idx+1, height), nil
			})
		},
	}
	cmd.Flags().Float64Var(&height, "height", 20, "region height in mm (0-200)")
	cmd.Flags().BoolVar(&replicate, "replicate", false, "repeat on every page")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the region")
	return cmd
}

func regionOf(p api.Page, kind pages.RegionKind) *api.Region {
	if kind == pages.Header {
		return p.Header
	}
	return p.Footer
}

func newPageBackgroundCmd() *cobra.Command {
	var repeat, position string
	var opacity float64
	cmd := &cobra.Command{
		Use:   "background <template-id> <page> <image-file>",
		Short: "Upload an image and use it as the page background",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				f, err := os.Open(args[2])
				if err != nil {
					return "", err
				}
				defer f.Close()
				style := api.BackgroundImage{Repeat: repeat, Opacity: opacity, Position: position}
				link, err := upload.SetBackground(cmd.Context(), app.Uploader, m, idx, filepath.Base(args[2]), f, style)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("background on page %d\t%s", idx+1, link), nil
			})
		},
	}
	cmd.Flags().StringVar(&repeat, "repeat", "no-repeat", "repeat|no-repeat|repeat-x|repeat-y")
	cmd.Flags().Float64Var(&opacity, "opacity", 1, "0 to 1")
	cmd.Flags().StringVar(&position, "position", "center", "css background position")
	return cmd
}
