// Command outy runs the Outy API server and its maintenance commands.
package main

import (
	"os"

	"github.com/outy-app/outy/internal/cli"
)

func main() {
	os.Exit(cli.New().Execute())
}
