package main

import (
	"os"

	"github.com/arthur-debert/jibs-autolinker/cmd/autolinker"
)

func main() {
	os.Exit(autolinker.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
