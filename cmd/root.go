// Package cmd implements the docket command line interface.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/agentic-research/docket/internal/docschema"
	"github.com/agentic-research/docket/internal/registry"
	"github.com/spf13/cobra"
)

// version is reported by --version and announced by the MCP server.
const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "docket",
	Short:   "Docket: serve a directory of JSON documents as a read-only API",
	Version: version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// stderrLogger builds the logger for commands whose results go to stdout:
// warnings and errors only, on stderr, so diagnostics never mix with output.
func stderrLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// buildRegistry constructs the document registry shared by the one-shot
// commands and the MCP server. schemaFile, when set, gates every document
// through the JSON Schema at that path.
func buildRegistry(root, ext, schemaFile string, autoReload bool) (*registry.Registry, error) {
	opts := registry.Options{
		Extension:  ext,
		AutoReload: autoReload,
		Logger:     stderrLogger(),
	}
	if schemaFile != "" {
		schema, err := docschema.Load(schemaFile)
		if err != nil {
			return nil, err
		}
		opts.Validate = schema.Validate
	}
	return registry.New(root, opts)
}
