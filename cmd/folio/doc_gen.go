//go:build ignore
// +build ignore

package main

import (
	"log"

	folio "github.com/mithrel/folio/internal/cli"
	"github.com/spf13/cobra/doc"
)

func main() {
	root := folio.NewRootCmd()

	if err := doc.GenMarkdownTree(root, "./docs/markdown"); err != nil {
		log.Fatal(err)
	}

	header := &doc.GenManHeader{
		Title:   "FOLIO",
		Section: "1",
	}
	if err := doc.GenManTree(root, header, "./docs/man"); err != nil {
		log.Fatal(err)
	}
}
