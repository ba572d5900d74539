package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"enr/internal/appctx"
	"enr/internal/cli"
	"enr/internal/config"
	"enr/internal/dockerops"
	clog "enr/utils/log" //custom log
)

func main() {
	cfg := config.Load()
	clog.LogSet(os.Stderr, clog.ParseLevel(cfg.LogLevel))

	// A signal cancels the launch; deferred cleanup in the cli still runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	deps := &appctx.Dependencies{
		Config: cfg,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Launchers: map[string]appctx.LauncherFactory{
			"cli": func() (dockerops.Launcher, error) {
				return dockerops.NewCLILauncher(os.Stdout, os.Stderr), nil
			},
			"api": func() (dockerops.Launcher, error) {
				return dockerops.NewEngineLauncher(os.Stdout, os.Stderr)
			},
		},
	}

	code := cli.Run(ctx, os.Args[1:], deps)
	stop()
	os.Exit(code)
}
