package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chenjicheng/upmc/internal/layout"
	"github.com/chenjicheng/upmc/internal/manifest"
	"github.com/chenjicheng/upmc/internal/resolver"
	"github.com/chenjicheng/upmc/internal/runtime"
)

var doctorFix bool

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Create missing directories")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Health check for the install",
	Long:  `Check the install root, the Java runtime and the recorded versions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		l := current.layout

		problems, err := layout.Check(out, l, doctorFix)
		if err != nil {
			return err
		}
		if !runJavaCheck(out, l, current.settings.JavaDownloadURL) {
			problems++
		}
		runStateCheck(out, l)

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found", problems)
		}
		fmt.Fprintln(out, "No problems found.")
		return nil
	},
}

func runJavaCheck(w io.Writer, l layout.Layout, downloadURL string) bool {
	fmt.Fprintln(w, "Java check:")
	java, err := runtime.FindJava(l, downloadURL)
	if err != nil {
		fmt.Fprintf(w, "  [MISS] %v\n", err)
		return false
	}
	fmt.Fprintf(w, "  [ OK ] java found at %s\n", java)
	return true
}

func runStateCheck(w io.Writer, l layout.Layout) {
	fmt.Fprintln(w, "Recorded state:")
	local := resolver.ReadLocalState(l)
	if len(local.Versions) == 0 {
		fmt.Fprintln(w, "  [INFO] no versions recorded yet")
	}
	for _, k := range []string{manifest.VersionMinecraft, manifest.VersionFabric} {
		if v, ok := local.Versions[k]; ok {
			fmt.Fprintf(w, "  [INFO] %s %s\n", k, v)
		}
	}
	ch := resolver.ReadChannelConfig(l)
	fmt.Fprintf(w, "  [INFO] channel %s\n", ch.Channel)
}
