// Docket serves a directory tree of JSON documents as a read-only API:
// over HTTP, over the Model Context Protocol, and from the command line.
package main

import "github.com/agentic-research/docket/cmd"

func main() {
	cmd.Execute()
}
