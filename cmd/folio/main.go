package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mithrel/folio/internal/cli"
	"github.com/mithrel/folio/internal/errs"
)

func main() {
	if err := cli.Execute(); err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", errs.Title(e.Kind), err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
