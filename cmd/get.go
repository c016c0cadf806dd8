package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/agentic-research/docket/internal/query"
	"github.com/spf13/cobra"
)

var (
	getRoot  string
	getExt   string
	getQuery string
)

var getCmd = &cobra.Command{
	Use:   "get [path]",
	Short: "Print the document at a logical path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(getRoot, getExt, "", false)
		if err != nil {
			return err
		}
		doc, err := reg.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		value := doc.Value
		if getQuery != "" {
			matches, err := query.Eval(doc.Value, getQuery)
			if err != nil {
				return err
			}
			// A single match prints bare; several print as an array.
			if len(matches) == 1 {
				value = matches[0]
			} else {
				value = matches
			}
		}
		out, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	getCmd.Flags().StringVarP(&getRoot, "root", "r", "./agents", "Document root directory")
	getCmd.Flags().StringVar(&getExt, "ext", ".json", "Document file extension")
	getCmd.Flags().StringVarP(&getQuery, "query", "q", "", "JSONPath selector applied to the document")
	rootCmd.AddCommand(getCmd)
}
