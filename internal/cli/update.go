package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/updater"
)

var updateCheck bool

func init() {
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "Only check for updates, don't install")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:     "update",
	Aliases: []string{"self-update"},
	Short:   "Update this updater only",
	Long: `Checks the update channel for a newer build of this program and installs it
without touching the game. The modpack itself is updated by running the
program without a subcommand.

  upmc update           # update now
  upmc update --check   # check only`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		w := newWiring(current, buildVersion)
		cfg := resolver.ReadChannelConfig(current.layout)

		if w.resolver.UpdaterURL(cfg.Channel) == "" {
			fmt.Fprintf(out, "No update source configured for the %s channel.\n", cfg.Channel)
			return nil
		}

		if updateCheck {
			info, err := w.resolver.FetchUpdaterInfo(context.Background(), cfg.Channel)
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if updater.IsUpdateAvailable(cfg, buildVersion, info) {
				fmt.Fprintf(out, "Update available: %s -> %s\n", buildVersion, info)
			} else {
				fmt.Fprintf(out, "You are on the latest %s build (%s)\n", cfg.Channel, buildVersion)
			}
			return nil
		}

		fmt.Fprintln(os.Stderr, "Checking for updates...")
		res, err := w.agent().Check(context.Background(), func(percent int, message string) {
			fmt.Fprintf(os.Stderr, "\r%s", message)
		})
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return err
		}
		if res == updater.Restarting {
			fmt.Fprintln(out, "Update downloaded. Restarting...")
			return nil
		}
		fmt.Fprintf(out, "You are on the latest %s build (%s)\n", cfg.Channel, buildVersion)
		return nil
	},
}
