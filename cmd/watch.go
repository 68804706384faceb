package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/ripple/internal/cargo"
	"github.com/papapumpkin/ripple/internal/config"
	"github.com/papapumpkin/ripple/internal/gitdiff"
	"github.com/papapumpkin/ripple/internal/impact"
	"github.com/papapumpkin/ripple/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Continuously print the packages affected as files are saved",
	Long: `Watches the workspace for source file changes and, for every save,
prints the packages impacted by the saved files, including everything
that transitively depends on them. Stop with Ctrl-C.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		cfg.Verbose = true
	}

	root, err := workspaceRoot(cmd)
	if err != nil {
		return err
	}

	// Validate the workspace up front so a bad root fails fast.
	ws, err := cargo.Load(root)
	if err != nil {
		return err
	}

	w, err := watch.New([]string{ws.Root}, func(path string) bool {
		return gitdiff.Considered(path, cfg.Extensions)
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	w.Start()
	defer w.Stop()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "[ripple] watching %s\n", ws.Root)
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch := <-w.Batches:
			// Manifests may themselves have changed; reload the graph.
			// A half-saved manifest is transient in watch mode, so report
			// and keep watching instead of exiting.
			ws, err := cargo.Load(root)
			if err != nil {
				fmt.Fprintf(os.Stderr, "[ripple] %v\n", err)
				continue
			}
			if cfg.Verbose {
				for _, f := range batch {
					fmt.Fprintf(os.Stderr, "[ripple] changed: %s\n", f)
				}
			}
			fmt.Println(affectedLine(impact.Resolve(ws, batch)))
		}
	}
}
