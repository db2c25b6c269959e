// Command hakija fills in, saves and sends employer benefit applications.
package main

import (
	"os"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
