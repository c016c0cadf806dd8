package cmd

import (
	"fmt"
	"strings"

	"github.com/agentic-research/docket/internal/search"
	"github.com/spf13/cobra"
)

var (
	searchRoot  string
	searchExt   string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [terms...]",
	Short: "Find documents whose path or content matches every term",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(searchRoot, searchExt, "", false)
		if err != nil {
			return err
		}
		docs, err := reg.List(cmd.Context())
		if err != nil {
			return err
		}
		paths := search.Build(docs).Search(strings.Join(args, " "))
		if searchLimit > 0 && len(paths) > searchLimit {
			paths = paths[:searchLimit]
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchRoot, "root", "r", "./agents", "Document root directory")
	searchCmd.Flags().StringVar(&searchExt, "ext", ".json", "Document file extension")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Maximum number of results (0 means all)")
	rootCmd.AddCommand(searchCmd)
}
