package cmd

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PCL-Community/craftauth/internal/minecraft"
)

var debugClaimsCmd = &cobra.Command{
	Use:   "claims JWT-TOKEN",
	Short: "Prints the claims of a game token without verifying it",
	Long: `Decodes a Minecraft bearer token and dumps its claims. No signature
validation is performed; this is a diagnostic aid only.`,
	Example: `  craftauth debug claims "$(craftauth token)"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tokenInput := args[0]
		if tokenInput == "" {
			return fmt.Errorf("token cannot be empty")
		}

		claims, err := minecraft.PeekClaims(tokenInput)
		if err != nil {
			return fmt.Errorf("decoding token: %w", err)
		}

		log.Info().Msg("Token Claims:")
		log.Info().Msg(spew.Sdump(claims))
		return nil
	},
}

func init() {
	debugCmd.AddCommand(debugClaimsCmd)
}
