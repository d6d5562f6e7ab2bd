package main

import (
	"os"

	"github.com/keisukeshimizu/gwt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.ExitCode(err))
	}
}
