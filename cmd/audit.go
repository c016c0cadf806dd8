package cmd

import (
	"fmt"
	"time"

	"github.com/agentic-research/docket/internal/audit"
	"github.com/spf13/cobra"
)

var (
	auditDB    string
	auditLimit int
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent document accesses from the audit database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := audit.Open(auditDB)
		if err != nil {
			return err
		}
		defer func() { _ = rec.Close() }()

		total, err := rec.Count(cmd.Context())
		if err != nil {
			return err
		}
		accesses, err := rec.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}
		fmt.Printf("%d accesses recorded\n", total)
		for _, a := range accesses {
			fmt.Printf("  %s  %-30s  %-21s  %v\n",
				a.At.Format(time.RFC3339), a.Path, a.Remote, a.Elapsed)
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVarP(&auditDB, "database", "d", "./docket_audit.db", "Audit database path")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 50, "Maximum rows to show")
	rootCmd.AddCommand(auditCmd)
}
