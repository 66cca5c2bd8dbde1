package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/PCL-Community/craftauth/internal/buildinfo"
	"github.com/PCL-Community/craftauth/internal/logging"
)

// global flags
var (
	userConfig   string
	servicesPath string
)

const (
	ClientIDKey  = "msa.client_id"
	AuthorityKey = "msa.authority"
	CachePathKey = "msa.cache_path"
	ServicesKey  = "services"
)

var rootCmd = &cobra.Command{
	Use:   "craftauth",
	Short: fmt.Sprintf("Minecraft Microsoft-account login (version: %s, commit: %s)", buildinfo.Version, buildinfo.CommitHash),
	Long: `craftauth signs a Microsoft account in via the device-code flow and
chains the Xbox Live, XSTS and Minecraft services token exchanges into a
playable profile: a (username, uuid, token) triple ready for launching
the game.`,
	Version: buildinfo.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, configErr := initConfig()
		logging.Init(nil)
		if configErr != nil { // handle error after logging is initialized
			return configErr
		}
		if configPath != "" {
			log.Debug().Msgf("using config file: %s", configPath)
		}
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		if errors.As(err, &BeQuietError{}) {
			// the command already reported the failure to the user
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("execution failed")
		os.Exit(1)
	}
}

func init() {
	// setup pre-flag logger
	logging.InitDefault()

	rootCmd.PersistentFlags().StringVar(&userConfig, "user-config", "",
		"User configuration file for default values (default is $HOME/.craftauth.yaml)")
	rootCmd.PersistentFlags().StringVar(&servicesPath, "services-config", "",
		"Services configuration file with endpoint overrides")

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	_ = viper.BindPFlag(logging.LevelKey, rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.PersistentFlags().String("log-format", "console", "Log format (console, json)")
	_ = viper.BindPFlag(logging.FormatKey, rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.PersistentFlags().Bool("no-color", false, "Disable color output")
	_ = viper.BindPFlag(logging.NoColorKey, rootCmd.PersistentFlags().Lookup("no-color"))

	rootCmd.PersistentFlags().String("client-id", "", "Azure application (client) ID for the device-code flow")
	_ = viper.BindPFlag(ClientIDKey, rootCmd.PersistentFlags().Lookup("client-id"))

	rootCmd.PersistentFlags().String("authority", "", "Identity provider authority URL (default: consumer tenant)")
	_ = viper.BindPFlag(AuthorityKey, rootCmd.PersistentFlags().Lookup("authority"))

	rootCmd.PersistentFlags().String("cache-path", "", "Token cache file (default: ~/.minecraft/msal_token_cache.json)")
	_ = viper.BindPFlag(CachePathKey, rootCmd.PersistentFlags().Lookup("cache-path"))

	viper.SetEnvPrefix("CRAFTAUTH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))

	viper.AutomaticEnv()

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
}

func initConfig() (string, error) {
	// reads in config file and ENV variables if set.
	if userConfig != "" {
		viper.SetConfigFile(userConfig)
	} else {
		// search order: current dir, $HOME, XDG config
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}

		config, err := os.UserConfigDir()
		if err == nil {
			viper.AddConfigPath(config + "/craftauth")
		}

		viper.SetConfigType("yaml")
		viper.SetConfigName(".craftauth")
	}

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		var notFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundError) {
			return "", err
		}
	} else {
		return viper.ConfigFileUsed(), nil
	}

	return "", nil
}
