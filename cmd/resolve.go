package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/ripple/internal/cargo"
	"github.com/papapumpkin/ripple/internal/cmdtpl"
	"github.com/papapumpkin/ripple/internal/config"
	"github.com/papapumpkin/ripple/internal/gitdiff"
	"github.com/papapumpkin/ripple/internal/impact"
	"github.com/papapumpkin/ripple/internal/runner"
)

// resolution carries the outcome of one impact-resolution pass.
type resolution struct {
	cfg      config.Config
	root     string
	ws       *cargo.Workspace
	affected *impact.Result
}

// workspaceRoot resolves the workspace root from --input, defaulting to
// the current directory.
func workspaceRoot(cmd *cobra.Command) (string, error) {
	if input, _ := cmd.Flags().GetString("input"); input != "" {
		return input, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

// resolveAffected runs the full pipeline: changed files from git, the
// workspace graph from manifests, and the impact closure over both.
func resolveAffected(cmd *cobra.Command) (*resolution, error) {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}

	root, err := workspaceRoot(cmd)
	if err != nil {
		return nil, err
	}

	since, _ := cmd.Flags().GetString("since")
	files, err := gitdiff.ChangedFiles(root, since, cfg.Extensions)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[ripple] %d changed source files\n", len(files))
		for _, f := range files {
			fmt.Fprintf(os.Stderr, "[ripple]   %s\n", f)
		}
	}

	ws, err := cargo.Load(root)
	if err != nil {
		return nil, err
	}

	affected := impact.Resolve(ws, files)
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "[ripple] %d of %d packages affected\n",
			len(affected.Names()), ws.Index.Len())
	}

	return &resolution{cfg: cfg, root: ws.Root, ws: ws, affected: affected}, nil
}

// bindings builds the template variable bindings from the resolved sets.
func (r *resolution) bindings(args []string) cmdtpl.Bindings {
	return cmdtpl.Bindings{
		Packages: r.affected.Names(),
		Excludes: r.affected.Excludes(r.ws),
		Args:     args,
	}
}

// affectedLine formats the affected set the way a build tool consumes
// it: a space-joined "-p name" list, or a fixed message when empty.
func affectedLine(affected *impact.Result) string {
	if affected.Empty() {
		return "no packages affected"
	}
	parts := make([]string, 0, len(affected.Names())*2)
	for _, name := range affected.Names() {
		parts = append(parts, "-p", name)
	}
	return strings.Join(parts, " ")
}

// executeTemplate resolves the affected set, renders the template, and
// either prints the command (--no-run) or executes it with inherited
// streams, exiting with the child's status.
func executeTemplate(cmd *cobra.Command, template string, args []string) error {
	r, err := resolveAffected(cmd)
	if err != nil {
		return err
	}

	argv, err := cmdtpl.Command(template, r.bindings(args))
	if err != nil {
		return err
	}

	if noRun, _ := cmd.Flags().GetBool("no-run"); noRun {
		fmt.Println(strings.Join(argv, " "))
		return nil
	}

	code, err := runner.Run(r.root, argv)
	if err != nil {
		return err
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// templateArgs returns the arguments bound to the template's args
// variable: everything after the -- separator.
func templateArgs(cmd *cobra.Command, args []string) []string {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[dash:]
	}
	return args
}
