package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [-- args...]",
	Short: "Render and run a custom command template over the affected set",
	Long: `Runs a user-supplied command template against the resolved package sets.
The template may reference three variables, each iterable in a for loop:

  packages  the affected package names
  excludes  every workspace package not affected
  args      extra arguments passed after --

For example:

  ripple run -c 'cargo test {% for pkg in packages %} -p {{ pkg }} {% endfor %}'

Any other variable reference is an error. Without --command, the affected
set is printed instead.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringP("command", "c", "", "command template to render and execute")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	template, _ := cmd.Flags().GetString("command")
	if template == "" {
		r, err := resolveAffected(cmd)
		if err != nil {
			return err
		}
		fmt.Println(affectedLine(r.affected))
		return nil
	}
	return executeTemplate(cmd, template, templateArgs(cmd, args))
}
