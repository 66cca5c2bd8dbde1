package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print only the game access token",
	Long: `Runs the login pipeline and prints the Minecraft bearer token to
stdout, for scripting. Requires a cached session unless a device-code
sign-in is completed interactively.`,
	Example: `  MC_TOKEN=$(craftauth token)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		factory := NewFactory()
		factory.NoBrowser = true

		svc, err := factory.GetLoginService()
		if err != nil {
			return err
		}

		result := svc.Login(cmd.Context())
		if !result.Success {
			return reportFailure(result)
		}

		fmt.Println(result.Token.Value)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
