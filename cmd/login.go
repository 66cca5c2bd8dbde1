package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PCL-Community/craftauth/internal/cliconfig"
	"github.com/PCL-Community/craftauth/internal/core"
)

var (
	loginFactory = NewFactory()
	loginJSON    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and obtain a playable Minecraft profile",
	Long: `Signs a Microsoft account in (silently from the cached session when
possible, via the device-code flow otherwise) and chains the Xbox Live,
XSTS and Minecraft services exchanges into a game token and profile.

The resulting (username, uuid, token) triple is everything a launcher
needs; the token itself is never written to disk.`,
	Example: `  craftauth login
  craftauth login --fresh --no-browser
  craftauth login --json > session.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loginFactory.GetLoginService()
		if err != nil {
			return err
		}

		result := svc.Login(cmd.Context())
		if !result.Success {
			return reportFailure(result)
		}

		if loginJSON {
			return printJSONResult(result)
		}

		logSuccess("signed in as %s (%s)", bold(result.Profile.Name), result.Profile.ID)
		log.Info().Msgf("game token valid for %s", (time.Duration(result.Token.ExpiresIn) * time.Second).String())
		fmt.Printf("\n%s\n", result.Token.Value)

		saveSession(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginFactory.bindPipelineFlags(loginCmd.Flags())
	loginCmd.Flags().BoolVar(&loginJSON, "json", false, "Print the result as JSON")
}

// reportFailure surfaces the stage and classified kind verbatim, with
// distinct remediation advice for the user-actionable rejections.
func reportFailure(result core.LoginResult) error {
	log.Error().Msgf("%s login failed at stage %s (%s)", redCross, bold(string(result.Stage)), result.Kind)
	log.Error().Msgf("%s", result.Detail)

	switch result.Kind {
	case core.KindNoLinkedAccount:
		log.Error().Msg("create an Xbox profile for this Microsoft account at https://www.xbox.com and try again")
	case core.KindRegionUnsupported:
		log.Error().Msg("Xbox Live is not available for the account's country or region")
	case core.KindNotEntitled:
		log.Error().Msg("buy Minecraft at https://www.minecraft.net or sign in with the owning account")
	case core.KindInteractiveTimeout:
		log.Error().Msg("run 'craftauth login' again and complete the sign-in before the code expires")
	}

	log.Debug().Msgf("correlation ID: %s", result.CorrelationID)
	return BeQuietError{}
}

func printJSONResult(result core.LoginResult) error {
	out := struct {
		Success            bool          `json:"success"`
		GameAccessToken    string        `json:"game_access_token"`
		TokenExpirySeconds int64         `json:"token_expiry_seconds"`
		Profile            *core.Profile `json:"profile"`
	}{
		Success:            true,
		GameAccessToken:    result.Token.Value,
		TokenExpirySeconds: result.Token.ExpiresIn,
		Profile:            result.Profile,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	saveSession(result)
	return nil
}

// saveSession records the login summary for 'craftauth status'. Tokens
// are deliberately not part of the record.
func saveSession(result core.LoginResult) {
	cfg, err := cliconfig.Load()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msg("could not load CLI config, session summary not saved")
			return
		}
		cfg = &cliconfig.CLIConfig{}
	}

	cfg.RecordSession(result.Profile.ID, &cliconfig.Session{
		UUID:      result.Profile.ID,
		Name:      result.Profile.Name,
		Account:   result.Account,
		LastLogin: time.Now(),
	})

	if err := cliconfig.Save(cfg); err != nil {
		log.Warn().Err(err).Msg("could not save session summary")
	}
}
