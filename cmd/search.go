package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vzahanych/weather-search-app/internal/config"
	"github.com/vzahanych/weather-search-app/internal/presenter"
	"github.com/vzahanych/weather-search-app/internal/weather"
)

func searchCmd() *cobra.Command {
	var unitFlag string

	cmd := &cobra.Command{
		Use:   "search [place]",
		Short: "Show the weather for a place",
		Long:  `Search a place by name and print its current weather and outlook. Without arguments the configured seed city is used.`,
		Example: `  weather search Paris
  weather search "New York" --unit F`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()

			if unitFlag == "" {
				unitFlag = cfg.Display.Unit
			}
			unit, err := weather.ParseDisplayUnit(unitFlag)
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg)
			if err != nil {
				return err
			}

			var state weather.ViewState
			if query := strings.TrimSpace(strings.Join(args, " ")); query != "" {
				state = p.Run(cmd.Context(), query)
			} else {
				state = p.Seed(cmd.Context())
			}

			view := presenter.Present(state, unit, cfg.Display.IconURL)
			fmt.Fprint(cmd.OutOrStdout(), presenter.Text(view))

			if state.Error != weather.ErrorNone {
				return errors.New(state.Error.Message())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&unitFlag, "unit", "u", "", "temperature unit, C or F (default from config)")

	return cmd
}
