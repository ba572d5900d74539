package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"enr/internal/appctx"
	"enr/internal/common/errs"
	"enr/internal/common/request"
	"enr/internal/common/response"
	"enr/internal/config"
	"enr/internal/dockerops"
	"enr/internal/nginxconf"
	clog "enr/utils/log" //custom log
)

// invocation is the validated form of the command line.
type invocation struct {
	req    request.ProxyRequest
	ports  []request.PortMapping
	name   string
	opts   *options
	engine appctx.LauncherFactory
}

func validate(opts *options, deps *appctx.Dependencies, domain, upstream string) (*invocation, error) {
	if strings.TrimSpace(domain) == "" {
		clog.Debug("Domain is empty")
		return nil, errs.Newf(errs.Usage, errs.TagUsage, "domain must not be empty")
	}
	if opts.port < 1 || opts.port > 65535 {
		return nil, errs.Newf(errs.Usage, errs.TagUsage, "--port %d out of range 1-65535", opts.port)
	}

	publish := opts.hostPort
	if publish == "" {
		publish = strconv.Itoa(opts.port)
	}
	ports, err := dockerops.PortMappings(fmt.Sprintf("%s:%d", publish, opts.port))
	if err != nil {
		return nil, errs.New(errs.Usage, errs.TagUsage, fmt.Errorf("--host-port: %w", err))
	}

	factory, ok := deps.Launchers[opts.engine]
	if !ok {
		engines := lo.Keys(deps.Launchers)
		sort.Strings(engines)
		return nil, errs.Newf(errs.Usage, errs.TagUsage,
			"unknown engine %q (available: %s)", opts.engine, strings.Join(engines, ", "))
	}

	name := opts.name
	if name == "" {
		name = config.NamePrefix + lo.Ternary(nginxconf.NormalizeName(domain) != "", nginxconf.NormalizeName(domain), "site")
	}

	return &invocation{
		req: request.ProxyRequest{
			Domain:   domain,
			Upstream: upstream,
			Port:     opts.port,
			Mode:     lo.Ternary(opts.redirect, request.ModeRedirect, request.ModeProxy),
		},
		ports:  ports,
		name:   name,
		opts:   opts,
		engine: factory,
	}, nil
}

// handle renders the config and, unless this is a dry run, starts the
// container with it. The config file is removed on every return path
// unless it was kept.
func handle(ctx context.Context, deps *appctx.Dependencies, inv *invocation) error {
	conf, err := nginxconf.Render(inv.req)
	if err != nil {
		return err
	}

	if inv.opts.dryRun {
		if _, err := io.WriteString(deps.Stdout, conf); err != nil {
			return errs.New(errs.Render, errs.TagOutput, fmt.Errorf("failed to print config: %w", err))
		}
		return nil
	}

	tmp, err := nginxconf.WriteTemp(deps.Config.TempDir, inv.req.Domain, conf)
	if err != nil {
		return errs.New(errs.Launch, errs.TagLaunchFailed, err)
	}
	defer func() {
		if cerr := tmp.Cleanup(); cerr != nil {
			clog.Warn("Config cleanup failed", "path", tmp.Path, "err", cerr)
		}
	}()

	if inv.opts.keepConfig {
		keep(deps, tmp)
	}

	launcher, err := inv.engine()
	if err != nil {
		return err
	}
	if closer, ok := launcher.(io.Closer); ok {
		defer closer.Close()
	}

	spec := request.LaunchSpec{
		Runtime:    inv.opts.runtime,
		Image:      inv.opts.image,
		ConfigPath: tmp.Path,
		MountPath:  deps.Config.MountPath,
		Ports:      inv.ports,
		Name:       inv.name,
		Network:    inv.opts.network,
		Detach:     inv.opts.detach,
		Replace:    inv.opts.replace,
	}
	clog.Debug("Launching", "engine", inv.opts.engine, "image", spec.Image, "name", spec.Name)

	res, err := launcher.Launch(ctx, spec)
	if err != nil {
		return err
	}

	if spec.Detach {
		// The running container keeps reading the file after we exit.
		if !tmp.Kept() {
			keep(deps, tmp)
		}
		response.WriteResponse(deps.Stderr, response.StatusSuccess,
			fmt.Sprintf("%s started for %s (%s)", spec.Name, inv.req.Domain, shortID(res.ContainerID)))
	}
	return nil
}

func keep(deps *appctx.Dependencies, tmp *nginxconf.TempConfig) {
	tmp.Keep()
	response.WriteResponse(deps.Stderr, response.StatusInfo, "config kept at "+tmp.Path)
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
