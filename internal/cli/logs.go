package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/logging"
)

var logsPath bool

func init() {
	logsCmd.Flags().BoolVar(&logsPath, "path", false, "Print the log file location only")
	rootCmd.AddCommand(logsCmd)
}

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Print the updater log",
	Long:  `Print the persisted log so it can be sent to the server admins.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if logsPath {
			fmt.Fprintln(cmd.OutOrStdout(), logging.Path())
			return nil
		}
		content := logging.ReadAll()
		if content == "" {
			fmt.Fprintln(cmd.ErrOrStderr(), "The log is empty.")
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	},
}
