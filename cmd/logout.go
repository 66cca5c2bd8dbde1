package cmd

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PCL-Community/craftauth/internal/cliconfig"
	"github.com/PCL-Community/craftauth/internal/tokencache"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the cached provider session and recorded logins",
	Long: `Deletes the provider token cache file, so the next login requires the
device-code flow again, and clears the recorded session summaries.`,
	Example: `  craftauth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := viper.GetString(CachePathKey)
		if cachePath == "" {
			var err error
			if cachePath, err = tokencache.DefaultPath(); err != nil {
				return err
			}
		}

		switch err := os.Remove(cachePath); {
		case err == nil:
			logSuccess("removed token cache %s", cachePath)
		case os.IsNotExist(err):
			log.Info().Msgf("no token cache at %s", cachePath)
		default:
			return logError(err, "", "could not remove token cache")
		}

		configPath, err := cliconfig.GetConfigPath()
		if err != nil {
			return err
		}
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return logError(err, "", "could not clear recorded sessions")
		}

		logSuccess("signed out")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
