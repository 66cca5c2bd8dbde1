package cmd

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PCL-Community/craftauth/internal/buildinfo"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the craftauth installation",
	RunE: func(cmd *cobra.Command, args []string) error {
		log.Debug().Msg("showing local build info")
		printInfo(buildinfo.GetBuildInfo())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(info buildinfo.Info) {
	fmt.Println(bold("\n── craftauth Build Information ──"))
	fmt.Printf("  %s:    %s\n", faint("Version"), info.Version)
	fmt.Printf("  %s:     %s\n", faint("Commit"), info.CommitHash)
	fmt.Printf("  %s:      %s\n", faint("About"), info.About)
}
