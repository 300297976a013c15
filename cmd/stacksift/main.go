// stacksift filters Go crash dump stack traces down to project-owned frames.
package main

import (
	"os"

	"github.com/hupe1980/stacksift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
