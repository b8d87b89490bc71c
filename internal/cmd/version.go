package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fulmenhq/gofulmen/crucible"
	"github.com/spf13/cobra"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for build, Go and library versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeVersion(cmd.OutOrStdout(), GetAppIdentity().BinaryName, extended)
	},
}

func writeVersion(w io.Writer, name string, full bool) error {
	if _, err := fmt.Fprintf(w, "%s %s\n", name, versionInfo.Version); err != nil {
		return err
	}
	if !full {
		return nil
	}

	libs := crucible.GetVersion()
	_, err := fmt.Fprintf(w, "Commit: %s\nBuilt: %s\nGo: %s %s/%s\n\nGofulmen: %s\nCrucible: %s\n",
		versionInfo.Commit,
		versionInfo.BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
		libs.Gofulmen,
		libs.Crucible)
	return err
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
