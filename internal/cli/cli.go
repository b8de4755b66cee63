// Package cli implements the kintree command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "kintree"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	verbose    bool
	configPath string
	chartName  string

	cfg *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "kintree draws interactive family trees",
		Long: `kintree fetches family records from a person API, arranges them by
generation and renders the chart as SVG, JSON, DOT, PNG or PDF. Charts are
stored locally between runs; "kintree serve" hosts an interactive page.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				registerLogHooks(c.Logger)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}
	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/kintree/config.toml)")
	flags.StringVarP(&c.chartName, "chart", "c", store.DefaultChart, "name of the stored chart")

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.avatarCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.clearCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.pinCommand())
	root.AddCommand(c.resetPositionsCommand())
	root.AddCommand(c.collapseCommand())
	root.AddCommand(c.orientationCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.chartsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration file once per run.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "api", cfg.API.BaseURL, "store", cfg.Store.Backend)
	c.cfg = cfg
	return cfg, nil
}

// registerLogHooks routes observability events to the debug log.
func registerLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetChartHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}
