package cmd

import (
	"github.com/spf13/cobra"

	"github.com/papapumpkin/ripple/internal/config"
)

// Built-in command templates, overridable per subcommand via the
// templates section of .ripple.yaml.
const (
	testTemplate    = "cargo test {% for pkg in packages %} -p {{ pkg }} {% endfor %} {% for arg in args %} {{ arg }} {% endfor %}"
	nextestTemplate = "cargo nextest run {% for pkg in packages %} -p {{ pkg }} {% endfor %} {% for arg in args %} {{ arg }} {% endfor %}"
	buildTemplate   = "cargo build {% for pkg in packages %} -p {{ pkg }} {% endfor %} {% for arg in args %} {{ arg }} {% endfor %}"
	benchTemplate   = "cargo bench {% for pkg in packages %} -p {{ pkg }} {% endfor %} {% for arg in args %} {{ arg }} {% endfor %}"
)

// newBuiltinCommand wires a subcommand around a fixed template. Extra
// arguments after -- are passed to the template as the args variable.
func newBuiltinCommand(name, short, template string) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [-- args...]",
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			return executeTemplate(cmd, cfg.Template(name, template), templateArgs(cmd, args))
		},
	}
}

func init() {
	rootCmd.AddCommand(
		newBuiltinCommand("test", "Run cargo test for the affected packages", testTemplate),
		newBuiltinCommand("nextest", "Run cargo nextest for the affected packages", nextestTemplate),
		newBuiltinCommand("build", "Run cargo build for the affected packages", buildTemplate),
		newBuiltinCommand("bench", "Run cargo bench for the affected packages", benchTemplate),
	)
}
