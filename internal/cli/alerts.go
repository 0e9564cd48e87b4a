package cli

import (
	"fmt"
	"os/user"

	"github.com/spf13/cobra"
	"github.com/vetlink-systems/vetlink-triage/pkg/output"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Operational alerts",
	Long:  "View, acknowledge, and resolve open operational alerts",
}

var alertsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List open alerts",
	RunE: func(cmd *cobra.Command, args []string) error {
		instances, err := NewClient(serverURL).ListAlerts()
		if err != nil {
			return fmt.Errorf("failed to list alerts: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(instances)
		}

		if len(instances) == 0 {
			output.Info("No open alerts")
			return nil
		}

		table := output.NewTable("ID", "Rule", "Severity", "Value", "Triggered At", "Acked")
		for _, inst := range instances {
			acked := ""
			if inst.Acknowledged() {
				acked = *inst.AcknowledgedBy
			}
			table.AddRow(
				inst.ID,
				inst.RuleName,
				inst.Severity,
				fmt.Sprintf("%g", inst.Value),
				inst.TriggeredAt.Format("2006-01-02 15:04"),
				acked,
			)
		}
		table.Render()
		return nil
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack [id]",
	Short: "Acknowledge an alert",
	Long:  "Acknowledge an open alert and stop its escalation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		by, _ := cmd.Flags().GetString("by")
		if by == "" {
			if u, err := user.Current(); err == nil {
				by = u.Username
			}
		}

		inst, err := NewClient(serverURL).AcknowledgeAlert(args[0], by)
		if err != nil {
			return fmt.Errorf("failed to acknowledge alert: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(inst)
		}

		output.Success("Alert %s acknowledged by %s", inst.ID, *inst.AcknowledgedBy)
		return nil
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve [id]",
	Short: "Resolve an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := NewClient(serverURL).ResolveAlert(args[0])
		if err != nil {
			return fmt.Errorf("failed to resolve alert: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(inst)
		}

		output.Success("Alert %s resolved", inst.ID)
		return nil
	},
}

func init() {
	alertsAckCmd.Flags().String("by", "", "acknowledging user (defaults to the current OS user)")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsAckCmd)
	alertsCmd.AddCommand(alertsResolveCmd)
}
