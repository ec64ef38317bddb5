// Command calc-engine runs one appraisal calculation from the command line
// and prints the result, for scripting and for checking the wizard's numbers.
//
//	calc-engine firr --data '{"rows": [{"year": 2025, "capex": 1000}, ...]}'
//	calc-engine report --file project.hjson --format markdown
//	calc-engine import --kind cost --file schedule.html
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"project_appraisal/pkg/core/appraisal"
	"project_appraisal/pkg/core/config"
	"project_appraisal/pkg/core/logging"
)

type options struct {
	data       string
	file       string
	configPath string
	debug      bool

	format string // report
	kind   string // import

	logger *zap.Logger
	cfg    appraisal.Config
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "calc-engine",
		Short: "Capital project appraisal calculations",
		Long: `calc-engine computes FIRR, EIRR, sensitivity, viability gap funding and the
funding-track decision for one project. Input is JSON or Hjson, passed inline
with --data or read from --file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.NewCLI(opts.debug)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			opts.logger = logger

			path := opts.configPath
			if path == "" {
				path = config.LoadSettings().ConfigPath
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger.Debug("engine config loaded", zap.String("path", path))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.data, "data", "", "inline JSON or Hjson payload")
	flags.StringVar(&opts.file, "file", "", "payload file (.json, .hjson; .html for import)")
	flags.StringVar(&opts.configPath, "config", "", "engine config YAML (default $APPRAISAL_CONFIG or config/appraisal.yaml)")
	flags.BoolVar(&opts.debug, "debug", false, "debug logging")

	root.AddCommand(
		newFIRRCmd(opts),
		newEIRRCmd(opts),
		newSensitivityCmd(opts),
		newVGFCmd(opts),
		newRouteCmd(opts),
		newReportCmd(opts),
		newImportCmd(opts),
	)
	return root
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}
