package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the packages affected by recent changes",
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	r, err := resolveAffected(cmd)
	if err != nil {
		return err
	}
	fmt.Println(affectedLine(r.affected))
	return nil
}
