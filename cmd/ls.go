package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	lsRoot string
	lsExt  string
	lsJSON bool
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the logical paths in a document root",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(lsRoot, lsExt, "", false)
		if err != nil {
			return err
		}
		docs, err := reg.List(cmd.Context())
		if err != nil {
			return err
		}
		if lsJSON {
			paths := make([]string, 0, len(docs))
			for _, doc := range docs {
				paths = append(paths, doc.Path)
			}
			out, err := json.MarshalIndent(paths, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}
		for _, doc := range docs {
			fmt.Println(doc.Path)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().StringVarP(&lsRoot, "root", "r", "./agents", "Document root directory")
	lsCmd.Flags().StringVar(&lsExt, "ext", ".json", "Document file extension")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Print paths as a JSON array")
	rootCmd.AddCommand(lsCmd)
}
