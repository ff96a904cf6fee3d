package updater

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/platform"
	"github.com/chenjicheng/upmc/internal/progress"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/retry"
	"github.com/chenjicheng/upmc/internal/runtime"
)

// Result is the outcome of a successful Check.
type Result int

const (
	// UpToDate means the pipeline should continue with this executable.
	UpToDate Result = iota
	// Restarting means a helper was scheduled and this process must exit.
	Restarting
)

func (r Result) String() string {
	if r == Restarting {
		return "restarting"
	}
	return "up-to-date"
}

// InfoSource provides the per-channel version documents.
type InfoSource interface {
	UpdaterURL(ch resolver.Channel) string
	FetchUpdaterInfo(ctx context.Context, ch resolver.Channel) (*manifest.UpdaterInfo, error)
}

var _ InfoSource = (*resolver.Resolver)(nil)

// Agent checks for and applies updates of the running executable.
type Agent struct {
	currentVersion string
	layout         layout.Layout
	source         InfoSource
	client         *download.Client
	runner         runtime.Runner
	policy         retry.Policy
	exe            string
	pid            int
	env            []string
}

// Option configures an Agent.
type Option func(*Agent)

// WithExecutable overrides the path of the running executable.
func WithExecutable(path string) Option {
	return func(a *Agent) {
		a.exe = path
	}
}

// WithPolicy sets the retry policy of download and verification.
func WithPolicy(p retry.Policy) Option {
	return func(a *Agent) {
		a.policy = p
	}
}

// WithEnv adds KEY=value pairs to the helper's environment. The restarted
// executable inherits them.
func WithEnv(kv ...string) Option {
	return func(a *Agent) {
		a.env = append(a.env, kv...)
	}
}

// WithRunner sets how the helper process is started.
func WithRunner(r runtime.Runner) Option {
	return func(a *Agent) {
		a.runner = r
	}
}

// New creates an Agent for the build currentVersion.
func New(currentVersion string, l layout.Layout, source InfoSource, client *download.Client, opts ...Option) *Agent {
	a := &Agent{
		currentVersion: currentVersion,
		layout:         l,
		source:         source,
		client:         client,
		runner:         runtime.ExecRunner{},
		policy:         retry.DefaultPolicy(),
		pid:            os.Getpid(),
	}
	if exe, err := os.Executable(); err == nil {
		a.exe = exe
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Executable returns the path that an update replaces.
func (a *Agent) Executable() string {
	return a.exe
}

// Check runs one self-update cycle and reports progress in the 1-11 band.
// On Restarting the helper is already running and the caller must exit
// without launching anything.
func (a *Agent) Check(ctx context.Context, report progress.Func) (Result, error) {
	cfg := resolver.ReadChannelConfig(a.layout)
	logger := log.WithField("channel", cfg.Channel)

	if a.source.UpdaterURL(cfg.Channel) == "" {
		logger.Debug("no updater version URL configured, skipping self-update")
		return UpToDate, nil
	}
	if a.exe == "" {
		return UpToDate, failure.New(failure.SelfUpdateFailed, "locating the running executable")
	}

	report(1, "Checking for updater updates...")
	info, err := a.source.FetchUpdaterInfo(ctx, cfg.Channel)
	if err != nil {
		return UpToDate, failure.Wrap(err, failure.SelfUpdateFailed, "checking for updater updates")
	}
	if !IsUpdateAvailable(cfg, a.currentVersion, info) {
		logger.WithField("remote", info.String()).Info("updater is up to date")
		return UpToDate, nil
	}
	logger.WithFields(log.Fields{"current": a.currentVersion, "remote": info.String()}).Info("updater update available")

	report(2, "Downloading updater "+info.Version+"...")
	staged, err := a.downloadVerified(ctx, info.DownloadURL, report)
	if err != nil {
		return UpToDate, fmt.Errorf("self-update: %w", err)
	}

	report(11, "Restarting into the new updater...")
	if err := a.scheduleReplace(staged); err != nil {
		platform.RemoveIfExists(staged)
		return UpToDate, failure.Wrap(err, failure.SelfUpdateFailed, "scheduling executable replacement")
	}

	if cfg.Channel == resolver.Dev && info.BuildID != nil {
		cfg.SetDevBuildID(*info.BuildID)
		if err := resolver.SaveChannelConfig(a.layout, cfg); err != nil {
			logger.WithError(err).Warn("could not record dev build id")
		}
	}
	return Restarting, nil
}
