// Command stride runs declarative tasks from a project manifest.
package main

import "github.com/stridecli/stride/internal/cli"

func main() {
	cli.Execute()
}
