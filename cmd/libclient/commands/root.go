package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/library-maintenance/libclient/internal/app"
	"github.com/library-maintenance/libclient/internal/config"
	"github.com/library-maintenance/libclient/internal/logger"
)

type state struct {
	out    io.Writer
	format string
	lib    *app.Library
}

// Execute runs the CLI with args, writing command output to out.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	root, st := newRootCmd(out)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, st.close())
}

// close runs after every command, including failed ones.
func (st *state) close() error {
	defer logger.Close()
	if st.lib == nil {
		return nil
	}
	err := st.lib.Close()
	st.lib = nil
	return err
}

func newRootCmd(out io.Writer) (*cobra.Command, *state) {
	st := &state{out: out}
	v := config.New()

	root := &cobra.Command{
		Use:           "libclient",
		Short:         "Client for the library maintenance services",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipRuntime(cmd) {
				return nil
			}
			switch st.format {
			case formatJSON, formatTable:
			default:
				return fmt.Errorf("unsupported output %q (want %s or %s)", st.format, formatJSON, formatTable)
			}

			cfg, err := config.FromViper(v)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if _, err := logger.Init(cfg.LogLevel); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			logger.DebugObj("libclient starting", "config", cfg)

			lib, err := app.NewLibrary(cmd.Context(), cfg, logger.Std{})
			if err != nil {
				return err
			}
			st.lib = lib
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVarP(&st.format, "output", "o", formatTable, "output format: table|json")
	flags.String("profile", "", "service profile: zelda|local|legacy")
	flags.String("services-file", "", "YAML/JSON file overriding service handles")
	flags.String("publishers-file", "", "YAML/JSON file declaring change publishers")
	flags.String("log-level", "", "log level: debug|info|warn|error")

	for key, flag := range map[string]string{
		"service_profile": "profile",
		"services_file":   "services-file",
		"publishers_file": "publishers-file",
		"log_level":       "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		servicesCmd(st),
		tracksCmd(st),
		artistsCmd(st),
		genresCmd(st),
		historyCmd(st),
	)
	return root, st
}

// skipRuntime reports whether cmd is a cobra builtin that needs no backend.
func skipRuntime(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion":
			return true
		}
	}
	return false
}
