package main

import (
	"os"

	"moviesnow/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
