package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/branding"
	"github.com/chenjicheng/upmc/internal/resolver"
)

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		ch := resolver.ReadChannelConfig(current.layout)
		if versionJSON {
			info := map[string]string{
				"version": buildVersion,
				"commit":  buildCommit,
				"date":    buildDate,
				"channel": string(ch.Channel),
			}
			if ch.DevBuildID != nil {
				info["dev_build_id"] = *ch.DevBuildID
			}
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		fmt.Fprintf(out, "%s version %s (commit: %s, built: %s)\n", branding.CLIName(), buildVersion, buildCommit, buildDate)
		if id := ch.ShortBuildID(); id != "" {
			fmt.Fprintf(out, "channel: %s (build %s)\n", ch.Channel, id)
		} else {
			fmt.Fprintf(out, "channel: %s\n", ch.Channel)
		}
		return nil
	},
}
