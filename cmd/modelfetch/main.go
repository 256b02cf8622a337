package main

import (
	"os"

	"github.com/modelfetch/modelfetch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
