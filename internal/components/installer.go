package components

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/chenjicheng/upmc/internal/download"
	"github.com/chenjicheng/upmc/internal/failure"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/retry"
	"github.com/chenjicheng/upmc/internal/runtime"
)

// JavaLocator returns the java executable to run tool jars with.
type JavaLocator func() (string, error)

// Installer runs component operations against one install root.
type Installer struct {
	layout             layout.Layout
	runner             runtime.Runner
	client             *download.Client
	policy             retry.Policy
	findJava           JavaLocator
	vanillaManifestURL string
}

// Option configures an Installer.
type Option func(*Installer)

// WithPolicy sets the retry policy for network-dependent steps.
func WithPolicy(p retry.Policy) Option {
	return func(i *Installer) {
		i.policy = p
	}
}

// WithJavaLocator overrides how java is found.
func WithJavaLocator(f JavaLocator) Option {
	return func(i *Installer) {
		i.findJava = f
	}
}

// WithVanillaManifestURL sets the Mojang version manifest URL.
func WithVanillaManifestURL(url string) Option {
	return func(i *Installer) {
		i.vanillaManifestURL = url
	}
}

// New creates an Installer. By default java is located with
// runtime.FindJava and javaDownloadURL is used in its error hint.
func New(l layout.Layout, runner runtime.Runner, client *download.Client, javaDownloadURL string, opts ...Option) *Installer {
	i := &Installer{
		layout: l,
		runner: runner,
		client: client,
		policy: retry.DefaultPolicy(),
		findJava: func() (string, error) {
			return runtime.FindJava(l, javaDownloadURL)
		},
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// InstallLoader runs the Fabric installer for the given game and loader
// versions. The installer requires launcher_profiles.json to exist, so an
// empty one is created first.
func (i *Installer) InstallLoader(ctx context.Context, mcVersion, fabricVersion string) error {
	jar := i.layout.Installer()
	if _, err := os.Stat(jar); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "locating Fabric installer", jar)
	}

	game := i.layout.Game()
	if err := os.MkdirAll(game, layout.DirPerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating directory", game)
	}
	profiles := filepath.Join(game, "launcher_profiles.json")
	if !layout.Exists(profiles) {
		if err := os.WriteFile(profiles, []byte(`{"profiles":{}}`), layout.FilePerm); err != nil {
			return failure.WrapPath(err, failure.Filesystem, "writing", profiles)
		}
	}

	log.WithFields(log.Fields{"minecraft": mcVersion, "fabric": fabricVersion}).Info("installing Fabric loader")
	return i.runJar(ctx, "installing Fabric loader", jar, "",
		"client",
		"-dir", game,
		"-mcversion", mcVersion,
		"-loader", fabricVersion,
		"-noprofile",
	)
}

// SyncContent runs packwiz-installer-bootstrap against the content index in
// headless client mode, with .minecraft as the working directory. The run is
// retried because packwiz itself downloads from the network.
func (i *Installer) SyncContent(ctx context.Context, indexURL string) error {
	jar := i.layout.ContentTool()
	if _, err := os.Stat(jar); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "locating packwiz bootstrap", jar)
	}
	game := i.layout.Game()
	if err := os.MkdirAll(game, layout.DirPerm); err != nil {
		return failure.WrapPath(err, failure.Filesystem, "creating directory", game)
	}

	// Resolve java once; a missing runtime is not worth retrying.
	java, err := i.findJava()
	if err != nil {
		return err
	}
	return retry.Run(ctx, i.policy, "syncing modpack content", func() error {
		return i.runJava(ctx, "syncing modpack content", java, jar, game, "-g", "-s", "client", indexURL)
	})
}

func (i *Installer) runJar(ctx context.Context, op, jar, dir string, args ...string) error {
	java, err := i.findJava()
	if err != nil {
		return err
	}
	return i.runJava(ctx, op, java, jar, dir, args...)
}

func (i *Installer) runJava(ctx context.Context, op, java, jar, dir string, args ...string) error {
	cmd := runtime.Cmd{
		Path: java,
		Args: append([]string{"-jar", jar}, args...),
		Dir:  dir,
	}
	out, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return &failure.Error{
			Kind: failure.ExternalProcessFailed,
			Op:   op,
			Err:  err,
			Hint: failure.Diagnose(out.Combined()),
		}
	}
	if out.ExitCode != 0 {
		return processError(op, out)
	}
	return nil
}

func processError(op string, out *runtime.Output) error {
	return &failure.Error{
		Kind: failure.ExternalProcessFailed,
		Op:   op,
		Err:  fmt.Errorf("exit code %d\nstdout: %s\nstderr: %s", out.ExitCode, out.Stdout, out.Stderr),
		Hint: failure.Diagnose(out.Combined()),
	}
}
