package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/folio/internal/present"
)

const defaultPager = "less -FRSX"

// withPager pipes output through $PAGER when stdout is a terminal.
func withPager(ctx context.Context, out, errOut io.Writer, write func(io.Writer) error) error {
	outFile, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(outFile.Fd())) {
		return write(out)
	}
	pager := os.Getenv("PAGER")
	if pager == "" {
		pager = defaultPager
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", pager)
	cmd.Stdout = outFile
	if errFile, ok := errOut.(*os.File); ok {
		cmd.Stderr = errFile
	} else {
		cmd.Stderr = os.Stderr
	}
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return write(out)
	}
	if err := cmd.Start(); err != nil {
		return write(out)
	}
	writeErr := write(stdin)
	_ = stdin.Close()
	waitErr := cmd.Wait()
	if writeErr != nil {
		return writeErr
	}
	return waitErr
}

// outputFlags are shared by every command that prints documents.
type outputFlags struct {
	mode      string
	noHeaders bool
	indent    bool
}

func addOutputFlags(cmd *cobra.Command, f *outputFlags, def string) {
	cmd.Flags().StringVar(&f.mode, "output", def, "output mode: plain|pretty|json|ndjson")
	cmd.Flags().BoolVar(&f.noHeaders, "noheaders", false, "hide column headers (plain)")
	cmd.Flags().BoolVar(&f.indent, "indent", false, "indent json output")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"plain", "pretty", "json", "ndjson"}, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f outputFlags) options() (present.Options, error) {
	mode, ok := present.ParseMode(strings.ToLower(f.mode))
	if !ok {
		return present.Options{}, fmt.Errorf("invalid --output: %s", f.mode)
	}
	return present.Options{Mode: mode, JSONIndent: f.indent, Headers: !f.noHeaders}, nil
}

// splitCSV splits a comma-separated list into trimmed non-empty strings.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
