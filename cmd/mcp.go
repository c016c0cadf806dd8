package cmd

import (
	"github.com/agentic-research/docket/internal/hook"
	"github.com/agentic-research/docket/internal/mcpserver"
	"github.com/spf13/cobra"
)

var (
	mcpRoot       string
	mcpExt        string
	mcpSchema     string
	mcpAutoReload bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the document root over the Model Context Protocol on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(mcpRoot, mcpExt, mcpSchema, mcpAutoReload)
		if err != nil {
			return err
		}
		hooks := hook.NewDispatcher()
		registerBuiltinHooks(hooks)
		// stdout carries the protocol; the logger stays on stderr.
		return mcpserver.New(reg, hooks, stderrLogger(), version).ServeStdio()
	},
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpRoot, "root", "r", "./agents", "Document root directory")
	mcpCmd.Flags().StringVar(&mcpExt, "ext", ".json", "Document file extension")
	mcpCmd.Flags().StringVarP(&mcpSchema, "schema", "s", "", "JSON Schema every document must satisfy")
	mcpCmd.Flags().BoolVar(&mcpAutoReload, "auto-reload", false, "Rescan the root on every request")
	rootCmd.AddCommand(mcpCmd)
}
