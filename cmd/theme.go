package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-search-app/internal/config"
	"go.uber.org/zap"
)

func themeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark]",
		Short:     "Show or persist the display theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(config.ThemeLight), string(config.ThemeDark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()

			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cfg.Display.ThemePreference())
				return nil
			}

			theme, err := config.ParseTheme(args[0])
			if err != nil {
				return err
			}

			if err := config.SaveTheme(configPath, theme); err != nil {
				return err
			}

			log.Info("Theme saved", zap.String("theme", string(theme)))
			fmt.Fprintln(cmd.OutOrStdout(), theme)
			return nil
		},
	}
}
