package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"cloudpick/internal/app"
	"cloudpick/internal/config"
	"cloudpick/internal/ctxlog"
	"cloudpick/internal/printers"
)

// options are the persistent flags; config keys are bound to them in
// config.Load.
type options struct {
	configFile string
	profile    string
	region     string
	logLevel   string
	editor     string
	output     string
}

// Execute runs the CLI on the process streams. Errors are printed once here
// since cobra's own error output is silenced.
func Execute(ctx context.Context) error {
	err := NewRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

// NewRootCmd builds the root command over the given streams.
func NewRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var (
		opts   options
		appCtx *app.App
		wire   *app.Wire
	)

	setup := func(cmd *cobra.Command) error {
		if wire != nil {
			return nil
		}
		settings, err := config.Load(opts.configFile, cmd.Root().PersistentFlags())
		if err != nil {
			return err
		}

		logger := ctxlog.New(errOut, settings.Log.Level)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		wire, err = app.NewWire(cmd.Context(), app.Config{Settings: settings, In: in, Out: out, Err: errOut})
		if err != nil {
			return err
		}
		appCtx = app.FromWire(wire)
		return nil
	}

	root := &cobra.Command{
		Use:   "cloudpick [domain] [subcommand] [args...]",
		Short: "Fuzzy-pick cloud resources and act on them",
		Args:  cobra.ArbitraryArgs,

		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},

		RunE: func(cmd *cobra.Command, args []string) error {
			defer flush(cmd, wire)
			switch len(args) {
			case 0:
				return appCtx.Interactive(cmd.Context(), "")
			case 1:
				return appCtx.Interactive(cmd.Context(), args[0])
			}
			return appCtx.Run(cmd.Context(), args[0], args[1], args[2:])
		},

		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			// Completion requests skip the persistent pre-run hook.
			if wire == nil && setup(cmd) != nil {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			var out []string
			for _, c := range wire.Registry.Completions(args) {
				if strings.HasPrefix(c, toComplete) {
					out = append(out, c)
				}
			}
			return out, cobra.ShellCompDirectiveNoFileComp
		},
	}

	// Flags stop at the first positional so handlers receive their own flags.
	root.Flags().SetInterspersed(false)

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/cloudpick/config.yaml)")
	pf.StringVar(&opts.profile, "profile", "", "platform credentials profile")
	pf.StringVar(&opts.region, "region", "", "platform region")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.StringVar(&opts.editor, "editor", "", "editor command (default $VISUAL, $EDITOR, vi)")
	pf.StringVarP(&opts.output, "output", "o", "yaml", "describe output format: "+strings.Join(printers.SupportedFormats(), ", "))

	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(domainsCmd(func() *app.Wire { return wire }))

	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w (see --help)", err)
	})
	return root
}

// flush exports buffered spans before the process exits.
func flush(cmd *cobra.Command, wire *app.Wire) {
	if wire == nil {
		return
	}
	if err := wire.Shutdown(context.WithoutCancel(cmd.Context())); err != nil {
		ctxlog.FromContext(cmd.Context()).Warn("flush traces", "error", err)
	}
}
