package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/runtime"
	"github.com/chenjicheng/upmc/internal/updater"
)

var (
	helperPID    int
	helperSource string
	helperTarget string
)

func init() {
	helperCmd.Flags().IntVar(&helperPID, "pid", 0, "Process to wait for")
	helperCmd.Flags().StringVar(&helperSource, "source", "", "Downloaded build")
	helperCmd.Flags().StringVar(&helperTarget, "target", "", "Executable to replace and restart")
	for _, f := range []string{"pid", "source", "target"} {
		_ = helperCmd.MarkFlagRequired(f)
	}
	rootCmd.AddCommand(helperCmd)
}

var helperCmd = &cobra.Command{
	Use:    updater.HelperCommand,
	Short:  "Replace the executable after it exits (internal)",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := updater.NewHelper(helperPID, helperSource, helperTarget, runtime.ExecRunner{})
		return h.Run(context.Background())
	},
}
