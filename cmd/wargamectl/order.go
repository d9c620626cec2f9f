package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/wargame/internal/model"
	"github.com/example/wargame/pkg/wargame"
)

func orderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Submit or cancel orders",
	}
	cmd.AddCommand(orderSubmitCmd())
	cmd.AddCommand(orderCancelCmd())
	return cmd
}

func orderSubmitCmd() *cobra.Command {
	var (
		submitter       string
		orderType       string
		unit            string
		path            []string
		speed           int
		sourceTerritory string
		targetTerritory string
		targetCharacter string
		targetFaction   string
		targetUnit      string
		resourceType    string
		resourceAmount  int
		transferOrderID string
		term            int
		buildType       string
		objective       string
		override        bool
	)
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an order for --guild on behalf of --submitter",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}
			if submitter == "" {
				return fmt.Errorf("--submitter is required")
			}

			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			e := wargame.NewEngine(s, openLocker())
			req := wargame.OrderRequest{
				OrderType:       wargame.OrderType(orderType),
				Path:            path,
				Speed:           speed,
				SourceTerritory: sourceTerritory,
				TargetTerritory: targetTerritory,
				TargetCharacter: targetCharacter,
				TargetFactionID: targetFaction,
				TargetUnitID:    targetUnit,
				ResourceType:    model.ResourceKind(resourceType),
				ResourceAmount:  resourceAmount,
				TransferOrderID: transferOrderID,
				Term:            term,
				BuildTypeName:   buildType,
				Objective:       objective,
				Override:        override,
			}
			if unit != "" {
				req.UnitIDs = []string{unit}
			}

			result, err := e.SubmitOrder(cmd.Context(), guildID, submitter, req)
			if err != nil {
				return err
			}
			switch {
			case result.Rejected:
				color.Red("rejected: %s", result.RejectionReason)
			case result.ConfirmationNeeded:
				color.Yellow("confirmation needed; conflicts with %d existing order(s):", len(result.ExistingOrders))
				for _, c := range result.ExistingOrders {
					fmt.Printf("  - %s (%s)\n", c.OrderID, c.OrderType)
				}
				fmt.Println("re-run with --override to supersede them")
			default:
				color.Green("order submitted: %s", result.OrderID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&submitter, "submitter", "", "submitting character identifier")
	cmd.Flags().StringVar(&orderType, "type", "", "order type, e.g. TRANSIT, JOIN_FACTION, DECLARE_WAR")
	cmd.Flags().StringVar(&unit, "unit", "", "unit id (path/combat orders)")
	cmd.Flags().StringSliceVar(&path, "path", nil, "territory id path (movement orders)")
	cmd.Flags().IntVar(&speed, "speed", 1, "patrol speed: maximum MP spent per turn")
	cmd.Flags().StringVar(&sourceTerritory, "source-territory", "", "source territory id")
	cmd.Flags().StringVar(&targetTerritory, "target-territory", "", "target territory id")
	cmd.Flags().StringVar(&targetCharacter, "target-character", "", "target character id")
	cmd.Flags().StringVar(&targetFaction, "target-faction", "", "target faction id")
	cmd.Flags().StringVar(&targetUnit, "target-unit", "", "target unit id")
	cmd.Flags().StringVar(&resourceType, "resource", "", "resource kind, e.g. ORE, LUMBER")
	cmd.Flags().IntVar(&resourceAmount, "amount", 0, "resource amount")
	cmd.Flags().StringVar(&transferOrderID, "transfer-order", "", "order id to cancel (CANCEL_TRANSFER)")
	cmd.Flags().IntVar(&term, "term", 0, "ongoing transfer duration in turns (0 = indefinite)")
	cmd.Flags().StringVar(&buildType, "build-type", "", "unit or building type name (CONSTRUCTION)")
	cmd.Flags().StringVar(&objective, "objective", "", "war objective text (DECLARE_WAR)")
	cmd.Flags().BoolVar(&override, "override", false, "supersede conflicting pending orders")
	cmd.MarkFlagRequired("submitter")
	cmd.MarkFlagRequired("type")
	return cmd
}

func orderCancelCmd() *cobra.Command {
	var submitter, orderID string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending or ongoing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireGuild(); err != nil {
				return err
			}
			if submitter == "" || orderID == "" {
				return fmt.Errorf("--submitter and --order are required")
			}

			s, closeStore, err := openStore()
			if err != nil {
				return err
			}
			defer closeStore()

			e := wargame.NewEngine(s, openLocker())
			if err := e.CancelOrder(cmd.Context(), guildID, submitter, orderID); err != nil {
				return err
			}
			color.Green("order %s cancelled", orderID)
			return nil
		},
	}
	cmd.Flags().StringVar(&submitter, "submitter", "", "submitting character identifier")
	cmd.Flags().StringVar(&orderID, "order", "", "order id to cancel")
	cmd.MarkFlagRequired("submitter")
	cmd.MarkFlagRequired("order")
	return cmd
}
