package cli

import (
	"fmt"

	"github.com/chenjicheng/upmc/internal/bootstrap"
	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/components"
	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/orchestrator"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/runtime"
	"github.com/chenjicheng/upmc/internal/updater"
)

// wiring builds the concrete collaborators for one command.
type wiring struct {
	env      env
	version  string
	runner   runtime.Runner
	client   *download.Client
	resolver *resolver.Resolver
}

func newWiring(e env, version string) *wiring {
	s := e.settings
	client := download.New(
		download.WithTimeouts(s.HTTPTimeout, s.DownloadTimeout),
		download.WithUserAgent(fmt.Sprintf("%s/%s", branding.CLIName(), version)),
	)
	return &wiring{
		env:     e,
		version: version,
		runner:  runtime.ExecRunner{},
		client:  client,
		resolver: resolver.New(client, s.ManifestURL,
			resolver.WithPolicy(s.Retry),
			resolver.WithUpdaterURLs(s.UpdaterVersionURL, s.UpdaterDevVersionURL),
		),
	}
}

func (w *wiring) agent() *updater.Agent {
	return updater.New(w.version, w.env.layout, w.resolver, w.client,
		updater.WithPolicy(w.env.settings.Retry),
		updater.WithRunner(w.runner),
		updater.WithEnv(branding.EnvVar("INSTALL_DIR")+"="+w.env.layout.Root),
	)
}

func (w *wiring) installer() *components.Installer {
	s := w.env.settings
	return components.New(w.env.layout, w.runner, w.client, s.JavaDownloadURL,
		components.WithPolicy(s.Retry),
		components.WithVanillaManifestURL(s.VanillaManifestURL),
	)
}

func (w *wiring) pipeline() *orchestrator.Pipeline {
	inst := w.installer()
	return &orchestrator.Pipeline{
		Layout:     w.env.layout,
		Remote:     w.resolver,
		SelfUpdate: w.agent(),
		Bootstrap:  bootstrap.New(w.env.layout, w.client, w.env.settings.Retry),
		Upgrade:    inst,
		Ensure:     inst,
		Content:    inst,
	}
}
