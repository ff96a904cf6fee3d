package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/bootstrap"
	"github.com/chenjicheng/upmc/internal/components"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/updater"
)

// RemoteSource fetches the target state.
type RemoteSource interface {
	FetchRemoteState(ctx context.Context) (resolver.RemoteState, error)
}

// SelfUpdater checks for and schedules an update of this executable.
type SelfUpdater interface {
	Check(ctx context.Context, report progress.Func) (updater.Result, error)
}

// Bootstrapper installs missing components on first run.
type Bootstrapper interface {
	Run(ctx context.Context, remote resolver.RemoteState, report progress.Func) error
}

// Upgrader installs a new loader version.
type Upgrader interface {
	InstallLoader(ctx context.Context, mcVersion, fabricVersion string) error
}

// Ensurer repairs state that external tools are known to undo.
type Ensurer interface {
	EnsureVanilla(ctx context.Context, mcVersion string) error
	FixIsolation(versionTag string) error
}

// ContentSyncer brings the modpack content in line with the index.
type ContentSyncer interface {
	SyncContent(ctx context.Context, indexURL string) error
}

var (
	_ RemoteSource  = (*resolver.Resolver)(nil)
	_ SelfUpdater   = (*updater.Agent)(nil)
	_ Bootstrapper  = (*bootstrap.Bootstrapper)(nil)
	_ Upgrader      = (*components.Installer)(nil)
	_ Ensurer       = (*components.Installer)(nil)
	_ ContentSyncer = (*components.Installer)(nil)
)

// Pipeline is one configured update run. SelfUpdate may be nil.
type Pipeline struct {
	Layout     layout.Layout
	Remote     RemoteSource
	SelfUpdate SelfUpdater
	Bootstrap  Bootstrapper
	Upgrade    Upgrader
	Ensure     Ensurer
	Content    ContentSyncer
}

// Start runs the pipeline on a worker goroutine and returns its stream.
func (p *Pipeline) Start(ctx context.Context) *Stream {
	s := NewStream(DefaultBuffer)
	Go(ctx, s, func(ctx context.Context, s *Stream) {
		s.Finish(p.Run(ctx, s.Report))
	})
	return s
}

// Run executes every stage in order and returns the terminal Result.
func (p *Pipeline) Run(ctx context.Context, report progress.Func) Result {
	logger := log.WithField("run", uuid.NewString())
	logger.WithField("root", p.Layout.Root).Info("update run started")

	res := p.run(ctx, logger, report)
	entry := logger.WithField("outcome", res.Outcome)
	if res.Err != nil {
		entry.WithError(res.Err).Error("update run failed")
	} else {
		entry.Info("update run finished")
	}
	return res
}

func (p *Pipeline) run(ctx context.Context, logger *log.Entry, report progress.Func) Result {
	l := p.Layout

	report(0, "Checking server...")
	remote, err := p.Remote.FetchRemoteState(ctx)
	if err != nil {
		if !failure.Is(err, failure.NetworkUnavailable) {
			return Failed(fmt.Errorf("reading server state: %w", err))
		}
		if bootstrap.IsBootstrapped(l) {
			logger.WithError(err).Warn("server unreachable, starting offline")
			report(100, "Server unreachable, starting offline")
			return Result{Outcome: Offline}
		}
		return Failed(failure.Wrap(err, failure.NetworkUnavailable, "the first run requires a network connection"))
	}
	report(1, fmt.Sprintf("Server wants Minecraft %s with Fabric %s", remote.Minecraft(), remote.Fabric()))

	if p.SelfUpdate != nil {
		res, err := p.SelfUpdate.Check(ctx, report)
		if err != nil {
			logger.WithError(err).Warn("self-update failed, continuing with the current build")
		} else if res == updater.Restarting {
			return Result{Outcome: SelfUpdateRestarting}
		}
	}

	if bootstrap.Needs(l) {
		if err := p.Bootstrap.Run(ctx, remote, report); err != nil {
			return Failed(fmt.Errorf("first-run install: %w", err))
		}
	}

	if err := p.upgrade(ctx, logger, remote, report); err != nil {
		return Failed(err)
	}

	report(79, "Checking game files...")
	if err := p.Ensure.EnsureVanilla(ctx, remote.Minecraft()); err != nil {
		return Failed(fmt.Errorf("ensuring Minecraft %s: %w", remote.Minecraft(), err))
	}
	if err := p.Ensure.FixIsolation(remote.VersionTag()); err != nil {
		return Failed(fmt.Errorf("fixing version isolation: %w", err))
	}

	report(80, "Syncing modpack...")
	if err := p.Content.SyncContent(ctx, remote.ContentIndexURL); err != nil {
		return Failed(fmt.Errorf("syncing modpack: %w", err))
	}
	report(95, "Modpack synced")

	report(100, "Ready")
	return Result{Outcome: Success}
}

// upgrade installs the remote loader when the recorded versions differ.
// LocalState is saved last so that an interrupted upgrade is retried.
func (p *Pipeline) upgrade(ctx context.Context, logger *log.Entry, remote resolver.RemoteState, report progress.Func) error {
	l := p.Layout
	local := resolver.ReadLocalState(l)
	if !resolver.NeedsComponentUpgrade(remote, local) {
		return nil
	}
	logger.WithFields(log.Fields{"local": local.Versions, "remote": remote.Versions}).Info("component upgrade needed")

	report(55, fmt.Sprintf("Installing Fabric %s for Minecraft %s...", remote.Fabric(), remote.Minecraft()))
	if err := p.Upgrade.InstallLoader(ctx, remote.Minecraft(), remote.Fabric()); err != nil {
		return fmt.Errorf("upgrading components: %w", err)
	}

	report(72, "Removing old versions...")
	if err := components.PurgeVersions(l.Versions(), remote.VersionTag()); err != nil {
		return fmt.Errorf("removing old versions: %w", err)
	}

	report(75, "Clearing old mods...")
	if err := components.ClearMods(l.Mods()); err != nil {
		return fmt.Errorf("clearing old mods: %w", err)
	}

	if err := resolver.SaveLocalState(l, resolver.LocalFromRemote(remote)); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "recording installed versions", l.LocalState())
	}
	report(78, "Components upgraded")
	return nil
}
