package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/PCL-Community/craftauth/internal/cliconfig"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show known sessions",
	Long: `Lists the login summaries recorded by previous 'craftauth login' runs.
Only names and UUIDs are stored; whether the provider session is still
valid is only known after the next login attempt.`,
	Example: `  craftauth status`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := cliconfig.Load()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				log.Info().Msg("no sessions recorded yet, run 'craftauth login' first")
				return nil
			}
			return err
		}

		if len(cfg.Sessions) == 0 {
			log.Info().Msg("no sessions recorded yet, run 'craftauth login' first")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Name", "UUID", "Account", "Last Login"})

		for _, session := range cfg.Sessions {
			account := session.Account
			if account == "" {
				account = "(unknown)"
			}
			t.AppendRow(table.Row{
				bold(session.Name),
				session.UUID,
				truncate(account, 40),
				faint("%s", session.LastLogin.Format(time.RFC3339)),
			})
		}

		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
