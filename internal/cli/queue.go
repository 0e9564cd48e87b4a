package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vetlink-systems/vetlink-triage/pkg/output"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Waiting queue",
	Long:  "Inspect the triage queue and run auto-assignment",
}

var queueShowCmd = &cobra.Command{
	Use:     "show",
	Aliases: []string{"ls"},
	Short:   "Show the current waiting queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := NewClient(serverURL).Queue()
		if err != nil {
			return fmt.Errorf("failed to fetch queue: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(snap)
		}

		if len(snap.Entries) == 0 {
			output.Info("Queue is empty")
			return nil
		}

		table := output.NewTable("Pos", "Case ID", "Patient", "Triage", "Waiting Since")
		for _, e := range snap.Entries {
			table.AddRow(
				fmt.Sprintf("%d", e.Position),
				e.CaseID,
				e.PatientName,
				string(e.TriageLevel),
				e.CreatedAt.Format("2006-01-02 15:04"),
			)
		}
		table.Render()

		output.Info("\n%d waiting as of %s", len(snap.Entries), snap.TakenAt.Format("15:04:05"))
		return nil
	},
}

var queueAutoAssignCmd = &cobra.Command{
	Use:   "autoassign",
	Short: "Pair waiting cases with available vets",
	RunE: func(cmd *cobra.Command, args []string) error {
		assignments, err := NewClient(serverURL).AutoAssign()
		if err != nil {
			return fmt.Errorf("auto-assign failed: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(assignments)
		}

		if len(assignments) == 0 {
			output.Info("No assignments made")
			return nil
		}

		for _, a := range assignments {
			output.Success("Case %s -> vet %s", a.CaseID, a.VetID)
		}
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueShowCmd)
	queueCmd.AddCommand(queueAutoAssignCmd)
}
