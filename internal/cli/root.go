package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/config"
	"github.com/chenjicheng/upmc/internal/console"
	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/logging"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/updater"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	rootDir     string
	channelFlag string
	verbose     bool
	noLaunch    bool
)

// env is what every command works against, resolved before it runs.
type env struct {
	layout   layout.Layout
	settings *config.Settings
}

var current env

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Install root (default $"+branding.EnvVar("INSTALL_DIR")+" or ~/Documents/"+branding.InstallDirName()+")")
	rootCmd.PersistentFlags().StringVar(&channelFlag, "channel", "", "Switch the update channel (stable or dev)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Also print log entries to stderr")
	rootCmd.Flags().BoolVar(&noLaunch, "no-launch", false, "Update only, do not start the launcher")
}

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` updater. Each run brings the Java runtime, the Fabric loader,
the launcher and the modpack in line with the server, then starts the launcher.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	Args:              cobra.NoArgs,
	PersistentPreRunE: prepare,
	RunE:              runUpdate,
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}

// prepare resolves the install root, settings and logging. Stale swap files
// are removed here, except in the helper which still needs them.
func prepare(cmd *cobra.Command, args []string) error {
	root := rootDir
	if root == "" {
		var err error
		if root, err = layout.DefaultRoot(); err != nil {
			return fmt.Errorf("resolving install root: %w", err)
		}
	}
	current.layout = layout.New(root)

	settings, err := config.Load(current.layout.Settings())
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	current.settings = settings

	if err := logging.Init(current.layout.Logs(), logFileName(cmd), settings.LogLevel, verbose); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	log.WithFields(log.Fields{
		"version": buildVersion,
		"command": cmd.Name(),
		"root":    root,
	}).Debug("starting")

	if cmd.Name() == updater.HelperCommand {
		return nil
	}
	if exe, err := os.Executable(); err == nil {
		if err := updater.CleanupStale(exe); err != nil {
			log.WithError(err).Warn("could not remove leftovers of a previous self-update")
		}
	}
	applyChannelFlag(current.layout, channelFlag)
	return nil
}

// logFileName keeps the replacement helper out of the file its parent may
// still be writing.
func logFileName(cmd *cobra.Command) string {
	if cmd.Name() == updater.HelperCommand {
		return logging.HelperFileName
	}
	return logging.FileName
}

// applyChannelFlag persists a --channel choice. An unknown value is logged
// and the persisted channel is kept.
func applyChannelFlag(l layout.Layout, value string) {
	if value == "" {
		return
	}
	ch, err := resolver.ParseChannel(value)
	if err != nil {
		log.WithError(err).Warn("ignoring --channel")
		return
	}
	cfg := resolver.ReadChannelConfig(l)
	if cfg.Channel == ch {
		return
	}
	cfg.Select(ch)
	if err := resolver.SaveChannelConfig(l, cfg); err != nil {
		log.WithError(err).Warn("could not save channel selection")
		return
	}
	log.WithField("channel", ch).Info("update channel switched")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	w := newWiring(current, buildVersion)
	stream := w.pipeline().Start(context.Background())

	opts := []console.Option{console.WithLogPath(logging.Path)}
	if noLaunch {
		opts = append(opts, console.WithoutLaunch())
	}
	p := console.New(cmd.OutOrStdout(), current.layout, w.runner, current.settings.JavaDownloadURL, opts...)
	if _, err := p.Wait(stream); err != nil {
		return presentedError{err}
	}
	return nil
}

// presentedError marks an error the console has already shown.
type presentedError struct{ error }

func (e presentedError) Unwrap() error { return e.error }

// Presented reports whether err was already shown to the player.
func Presented(err error) bool {
	var p presentedError
	return errors.As(err, &p)
}
