package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "ripple",
	Short: "Run build commands scoped to the packages affected by recent changes",
	Long: `Ripple inspects the files changed in a workspace's git history, maps them
to the packages that own them, and follows reverse dependency edges to find
every package the change ripples out to. It then runs (or prints) a command
templated over that affected set.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default .ripple.yaml)")
	rootCmd.PersistentFlags().StringP("input", "i", "", "workspace root (default current directory)")
	rootCmd.PersistentFlags().String("since", "", "diff this revision against HEAD instead of HEAD's parent")
	rootCmd.PersistentFlags().Bool("no-run", false, "print the generated command instead of executing it")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func initConfig() {
	if cfgFile, _ := rootCmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".ripple")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("RIPPLE")
	viper.AutomaticEnv()

	// It's fine if no config file is found; we use defaults.
	_ = viper.ReadInConfig()
}
