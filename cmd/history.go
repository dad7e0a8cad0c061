package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-dashboard/internal/config"
	"github.com/vzahanych/weather-dashboard/internal/preferences"
)

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List recent searches, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kv, err := preferences.NewKV(config.GetConfig().Storage)
			if err != nil {
				return fmt.Errorf("failed to open preference storage: %w", err)
			}
			store := preferences.NewStore(kv, log)
			defer store.Close()

			prefs := store.Load(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "units: %s\n", prefs.Units)
			for i, city := range prefs.History {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, city)
			}
			return nil
		},
	}
}
