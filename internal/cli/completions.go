package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/util"
	"github.com/mithrel/folio/internal/wire"
	"github.com/mithrel/folio/pkg/api"
)

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "completion",
		Short:       "Generate shell completion scripts",
		Annotations: map[string]string{skipApp: "true"},
	}

	gen := func(use, short string, run func(cmd *cobra.Command) error) *cobra.Command {
		return &cobra.Command{
			Use:         use,
			Short:       short,
			Annotations: map[string]string{skipApp: "true"},
			RunE:        func(cmd *cobra.Command, args []string) error { return run(cmd) },
		}
	}
	cmd.AddCommand(gen("bash", "Generate Bash completions", func(cmd *cobra.Command) error {
		return cmd.Root().GenBashCompletion(os.Stdout)
	}))
	cmd.AddCommand(gen("zsh", "Generate Zsh completions", func(cmd *cobra.Command) error {
		return cmd.Root().GenZshCompletion(os.Stdout)
	}))
	cmd.AddCommand(gen("fish", "Generate Fish completions", func(cmd *cobra.Command) error {
		return cmd.Root().GenFishCompletion(os.Stdout, true)
	}))

	return cmd
}

const maxCompletions = 20

// completeTemplateIDs offers template ids ranked by how well their names
// match what was typed so far. Each candidate carries the name as its
// description.
func completeTemplateIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 && cmd.Name() != "delete" {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	v, err := loadConfig(cmd)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	app, err := wire.BuildApp(ctx, v)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer app.Close()

	res := app.Sync.List(ctx, api.ListFilters{Limit: 100, SortBy: "updatedAt", SortOrder: "desc"})
	return templateCompletions(res.Templates, toComplete), cobra.ShellCompDirectiveNoFileComp
}

// templateCompletions lists ids starting with toComplete first, then ids
// whose names fuzzy-match it.
func templateCompletions(ts []api.Template, toComplete string) []string {
	var out []string
	seen := map[string]bool{}
	if toComplete != "" {
		for _, t := range ts {
			if strings.HasPrefix(t.ID, toComplete) {
				out = append(out, t.ID+"\t"+t.Name)
				seen[t.ID] = true
			}
		}
	}
	byName := make(map[string][]api.Template, len(ts))
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		if _, ok := byName[t.Name]; !ok {
			names = append(names, t.Name)
		}
		byName[t.Name] = append(byName[t.Name], t)
	}
	for _, name := range util.ScoreCompletions(toComplete, names, maxCompletions) {
		for _, t := range byName[name] {
			if !seen[t.ID] {
				out = append(out, t.ID+"\t"+t.Name)
			}
		}
	}
	return out
}
