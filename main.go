package main

import (
	"os"

	"github.com/homehelp/homehelp-api/cli"
)

func main() {
	os.Exit(cli.Execute())
}
