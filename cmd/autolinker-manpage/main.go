package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/jibs-autolinker/cmd/autolinker"
	"github.com/arthur-debert/jibs-autolinker/internal/version"
)

func main() {
	rootCmd := autolinker.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "JIBS-AUTOLINKER",
		Section: "1",
		Source:  "jibs-autolinker " + version.Version,
		Manual:  "jibs-autolinker manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
