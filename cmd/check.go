package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	checkRoot   string
	checkExt    string
	checkSchema string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Scan the document root and report files that were skipped",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := buildRegistry(checkRoot, checkExt, checkSchema, false)
		if err != nil {
			return err
		}
		skipped := reg.Skipped()
		fmt.Printf("%d documents, %d skipped\n", reg.Len(), len(skipped))
		for _, s := range skipped {
			fmt.Printf("  %s: %s\n", s.File, s.Reason)
		}
		if len(skipped) > 0 {
			return fmt.Errorf("%d files failed validation", len(skipped))
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkRoot, "root", "r", "./agents", "Document root directory")
	checkCmd.Flags().StringVar(&checkExt, "ext", ".json", "Document file extension")
	checkCmd.Flags().StringVarP(&checkSchema, "schema", "s", "", "JSON Schema every document must satisfy")
	rootCmd.AddCommand(checkCmd)
}
