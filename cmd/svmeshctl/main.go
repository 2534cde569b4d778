// Command svmeshctl holds the maintenance tools of the site: config
// generation, content import, content checks and scaffolding.
package main

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/svmesh/svmesh-web/internal/config"
	"github.com/svmesh/svmesh-web/internal/db"
	"github.com/svmesh/svmesh-web/internal/logger"
	"github.com/svmesh/svmesh-web/internal/repository"
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "svmeshctl",
		Short:        "Maintenance tools for the Susquehanna Valley Mesh site",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			l := logger.NewWithWriter(opts.logLevel, logger.Writer(cmd.ErrOrStderr(), opts.logFormat))
			config.SetLogger(l)
			db.SetLogger(l)
			repository.SetLogger(l)
		},
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "config.yaml"
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "site config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", config.LogFormatConsole, "log format (console or json)")

	root.AddCommand(
		newConfigCmd(),
		newImportCmd(opts),
		newCheckCmd(),
		newNewCmd(),
	)
	return root
}
