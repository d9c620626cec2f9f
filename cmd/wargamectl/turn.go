package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wargame/pkg/wargame"
)

func turnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Show or advance a guild's turn",
	}
	cmd.AddCommand(turnShowCmd())
	cmd.AddCommand(turnAdvanceCmd())
	return cmd
}

func turnShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print --guild's current turn and config",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}
			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			cfg, err := s.GetConfig(cmd.Context(), guildID)
			if err != nil {
				return err
			}
			fmt.Printf("guild %d: turn %d (resolution %s)\n", guildID, cfg.CurrentTurn, enabledLabel(cfg.TurnResolutionEnabled))
			return nil
		},
	}
	return cmd
}

func turnAdvanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Resolve --guild's current turn and advance to the next",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}
			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			before, err := s.GetConfig(cmd.Context(), guildID)
			if err != nil {
				return err
			}
			e := wargame.NewEngine(s, openLocker())
			if err := e.AdvanceTurn(cmd.Context(), guildID); err != nil {
				return err
			}
			color.Green("guild %d advanced from turn %d", guildID, before.CurrentTurn)
			return nil
		},
	}
	return cmd
}

func enabledLabel(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
