package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/resolver"
)

func init() {
	rootCmd.AddCommand(channelCmd)
}

var channelCmd = &cobra.Command{
	Use:   "channel [stable|dev]",
	Short: "Show or switch the self-update channel",
	Long: `Without an argument, prints the channel this updater follows. With an
argument, switches to it. Leaving dev forgets the installed dev build, so the
next switch back to dev downloads the current dev build again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := current.layout
		cfg := resolver.ReadChannelConfig(l)
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Channel)
			return nil
		}

		ch, err := resolver.ParseChannel(args[0])
		if err != nil {
			return err
		}
		cfg.Select(ch)
		if err := resolver.SaveChannelConfig(l, cfg); err != nil {
			return fmt.Errorf("saving channel: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Channel set to %s\n", ch)
		return nil
	},
}
