package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/pages"
	"github.com/mithrel/folio/pkg/api"
)

func newElementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "element",
		Aliases: []string{"el"},
		Short:   "Place and arrange elements on template pages",
	}
	cmd.AddCommand(newElementAddCmd())
	cmd.AddCommand(newElementMoveCmd())
	cmd.AddCommand(newElementResizeCmd())
	cmd.AddCommand(newElementTransferCmd())
	cmd.AddCommand(newElementDeleteCmd())
	for _, op := range []struct {
		use, short string
		apply      func(m *pages.Manager, id string) error
	}{
		{"front", "Raise an element above the rest of its page", (*pages.Manager).BringToFront},
		{"back", "Lower an element below the rest of its page", (*pages.Manager).SendToBack},
		{"show", "Make an element visible", func(m *pages.Manager, id string) error { return m.SetVisible(id, true) }},
		{"hide", "Hide an element", func(m *pages.Manager, id string) error { return m.SetVisible(id, false) }},
		{"lock", "Lock an element against moves and resizes", func(m *pages.Manager, id string) error { return m.SetLocked(id, true) }},
		{"unlock", "Unlock an element", func(m *pages.Manager, id string) error { return m.SetLocked(id, false) }},
	} {
		cmd.AddCommand(newElementToggleCmd(op.use, op.short, op.apply))
	}
	return cmd
}

func elementTypeNames() []string {
	out := make([]string, len(api.ElementTypes))
	for i, t := range api.ElementTypes {
		out[i] = string(t)
	}
	return out
}

func newElementAddCmd() *cobra.Command {
	var x, y float64
	var text string
	cmd := &cobra.Command{
		Use:   "add <template-id> <page> <type>",
		Short: "Add an element; the position snaps to the grid and stays inside the margins",
		Long:  "Add an element. Types: " + strings.Join(elementTypeNames(), ", ") + ".",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pageArg(args[1])
			if err != nil {
				return err
			}
			typ := api.ElementType(strings.ToLower(args[2]))
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if !m.SetCurrent(idx) {
					return "", pages.ErrInvalidIndex
				}
				id, err := m.AddElement(typ, api.Position{X: x, Y: y})
				if err != nil {
					return "", err
				}
				el, _ := m.Template().ElementByID(id)
				if text != "" {
					switch c := el.Content.(type) {
					case *api.TextContent:
						c.Text = text
					case *api.HeadingContent:
						c.Text = text
					case *api.ImageContent:
						c.Src = text
					}
				}
				return fmt.Sprintf("%s\t%s at %.1f,%.1f", id, typ, el.Position.X, el.Position.Y), nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x position in mm")
	cmd.Flags().Float64Var(&y, "y", 0, "y position in mm")
	cmd.Flags().StringVar(&text, "text", "", "text for text and heading elements, source URL for images")
	return cmd
}

func newElementMoveCmd() *cobra.Command {
	var x, y float64
	cmd := &cobra.Command{
		Use:   "move <template-id> <element-id>",
		Short: "Move an element within its page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if err := m.MoveElement(args[1], api.Position{X: x, Y: y}); err != nil {
					return "", err
				}
				el, _ := m.Template().ElementByID(args[1])
				return fmt.Sprintf("%s\tat %.1f,%.1f", args[1], el.Position.X, el.Position.Y), nil
			})
		},
	}
	cmd.Flags().Float64Var(&x, "x", 0, "x position in mm")
	cmd.Flags().Float64Var(&y, "y", 0, "y position in mm")
	return cmd
}

func newElementResizeCmd() *cobra.Command {
	var w, h float64
	cmd := &cobra.Command{
		Use:   "resize <template-id> <element-id>",
		Short: "Resize an element; it never grows past the page margins",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if err := m.ResizeElement(args[1], api.Size{Width: w, Height: h}); err != nil {
					return "", err
				}
				el, _ := m.Template().ElementByID(args[1])
				return fmt.Sprintf("%s\t%.1fx%.1f", args[1], el.Size.Width, el.Size.Height), nil
			})
		},
	}
	cmd.Flags().Float64Var(&w, "width", 0, "width in mm")
	cmd.Flags().Float64Var(&h, "height", 0, "height in mm")
	return cmd
}

func newElementTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <template-id> <element-id> <page>",
		Short: "Move an element to another page",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := pageArg(args[2])
			if err != nil {
				return err
			}
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				el, from := m.Template().ElementByID(args[1])
				if el == nil {
					return "", pages.ErrElementNotFound
				}
				if el.Locked {
					return "", pages.ErrElementLocked
				}
				if !m.MoveElementToPage(args[1], from, to) {
					return "", pages.ErrInvalidIndex
				}
				return fmt.Sprintf("%s\tpage %d", args[1], to+1), nil
			})
		},
	}
}

func newElementDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <template-id> <element-id>",
		Aliases: []string{"rm"},
		Short:   "Delete an element",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if !m.DeleteElement(args[1]) {
					return "", pages.ErrElementNotFound
				}
				return "deleted\t" + args[1], nil
			})
		},
	}
}

func newElementToggleCmd(use, short string, apply func(m *pages.Manager, id string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <template-id> <element-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editPages(cmd, args[0], func(m *pages.Manager) (string, error) {
				if err := apply(m, args[1]); err != nil {
					return "", err
				}
				return use + "\t" + args[1], nil
			})
		},
	}
}
