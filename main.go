package main

import (
	"os"

	"github.com/kexuanli/askdocs/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
