// Gray Logic Designer compiles building-automation project designs into
// ROEHN controller documents and imports them back.
//
// It runs as an HTTP API (`designer serve`) or offline against the same
// database (`designer export`, `designer import`).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-designer/internal/infrastructure/logging"
	_ "github.com/nerrad567/gray-logic-designer/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes the command line in args. It is separated from main for
// testability.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds what every command shares once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	stdout     io.Writer
	stderr     io.Writer

	cfg *config.Config
	log *logging.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "designer",
		Short:         "Gray Logic Designer compiles project designs into ROEHN documents",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate(fmt.Sprintf("designer %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "configuration file (default $DESIGNER_CONFIG or "+defaultConfigPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newMigrateCmd(a),
		newTokenCmd(a),
	)
	return root
}

// resolveConfigPath picks the configuration file. The second result reports
// whether the path was chosen explicitly, in which case it must exist.
func resolveConfigPath(flag string) (string, bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv("DESIGNER_CONFIG"); env != "" {
		return env, true
	}
	return defaultConfigPath, false
}

// load reads the configuration and builds the logger. Command logs go to
// stderr so exported documents can be piped from stdout.
func (a *app) load() error {
	path, explicit := resolveConfigPath(a.configPath)

	var (
		cfg *config.Config
		err error
	)
	if _, statErr := os.Stat(path); statErr != nil && !explicit && errors.Is(statErr, os.ErrNotExist) {
		cfg, err = config.LoadDefaults()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logCfg := cfg.Logging
	if a.verbose {
		logCfg.Level = "debug"
	}
	a.cfg = cfg
	a.log = logging.NewWithWriter(a.stderr, logCfg, version)
	a.log.Debug("configuration loaded", "path", path, "explicit", explicit)
	return nil
}
