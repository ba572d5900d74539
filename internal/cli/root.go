package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"enr/internal/appctx"
	"enr/internal/common/errs"
	"enr/internal/common/response"
	"enr/internal/nginxconf"
	clog "enr/utils/log" //custom log
)

type options struct {
	port       int
	hostPort   string
	image      string
	name       string
	keepConfig bool
	dryRun     bool
	detach     bool
	redirect   bool
	replace    bool
	network    string
	runtime    string
	engine     string
	verbose    bool
}

// NewRootCommand builds the enr command. Flag defaults come from deps.Config.
func NewRootCommand(deps *appctx.Dependencies) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "enr <domain> <upstream>",
		Short: "Generate an nginx reverse proxy for a domain and run it in a container",
		Long: `Renders an nginx server block that proxies <domain> to <upstream> and
starts an nginx container with the config mounted read-only.

  enr example.com http://localhost:3000
  enr example.com http://10.0.0.5:8080/app --port 8080 --detach
  enr example.com https://example.org --redirect --dry-run

Exit codes:
  0  success
  1  usage error
  2  render error
  3  launch error`,
		Version:       deps.Config.Version,
		Args:          exactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				clog.LogSet(deps.Stderr, slog.LevelDebug)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := validate(opts, deps, args[0], args[1])
			if err != nil {
				return err
			}
			return handle(cmd.Context(), deps, inv)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.New(errs.Usage, errs.TagUsage, err)
	})

	cfg := deps.Config
	flags := cmd.Flags()
	flags.IntVarP(&opts.port, "port", "p", nginxconf.DefaultPort, "port nginx listens on")
	flags.StringVar(&opts.hostPort, "host-port", "", "host port to publish, [IP:]PORT (default: the listen port)")
	flags.StringVar(&opts.image, "image", cfg.Image, "nginx image")
	flags.StringVar(&opts.name, "name", "", "container name (default: enr-<domain>)")
	flags.BoolVar(&opts.keepConfig, "keep-config", false, "keep the generated config file and print its path")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the config and exit without starting a container")
	flags.BoolVarP(&opts.detach, "detach", "d", false, "leave the container running in the background")
	flags.BoolVar(&opts.redirect, "redirect", false, "answer with a 301 to the upstream instead of proxying")
	flags.BoolVar(&opts.replace, "replace", false, "remove an existing container with the same name first")
	flags.StringVar(&opts.network, "network", "", "container network (host disables port publishing)")
	flags.StringVar(&opts.runtime, "runtime", cfg.Runtime, "container runtime binary for the cli engine")
	flags.StringVar(&opts.engine, "engine", cfg.Engine, "launch engine: cli or api")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")

	return cmd
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return errs.New(errs.Usage, errs.TagUsage, err)
		}
		return nil
	}
}

// Run executes one invocation and returns the process exit code.
func Run(ctx context.Context, args []string, deps *appctx.Dependencies) int {
	cmd := NewRootCommand(deps)
	cmd.SetArgs(args)
	cmd.SetOut(deps.Stdout)
	cmd.SetErr(deps.Stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	response.WriteResponse(deps.Stderr, response.StatusError, err)
	var detail *errs.ErrorDetail
	if errors.As(err, &detail) && detail.Code == errs.Usage {
		fmt.Fprint(deps.Stderr, "\n"+cmd.UsageString())
	}
	return errs.ExitCode(err)
}
