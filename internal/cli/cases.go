package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vetlink-systems/vetlink-triage/internal/models"
	"github.com/vetlink-systems/vetlink-triage/pkg/output"
)

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Case management",
	Long:  "Register, inspect, and move triage cases through their lifecycle",
}

var casesCreateCmd = &cobra.Command{
	Use:   "create [patient name]",
	Short: "Register a new case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("level")
		species, _ := cmd.Flags().GetString("species")
		complaint, _ := cmd.Flags().GetString("complaint")

		c, err := NewClient(serverURL).CreateCase(&models.IntakeRequest{
			PatientName: args[0],
			Species:     species,
			Complaint:   complaint,
			TriageLevel: models.TriageLevel(level),
		})
		if err != nil {
			return fmt.Errorf("failed to create case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(c)
		}

		output.Success("Case %s created (%s, %s)", c.ID, c.PatientName, c.TriageLevel)
		return nil
	},
}

var casesGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get case details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewClient(serverURL).GetCase(args[0])
		if err != nil {
			return fmt.Errorf("failed to get case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(c)
		}

		output.Info("Case ID: %s", c.ID)
		output.Info("Patient: %s", c.PatientName)
		if c.Species != "" {
			output.Info("Species: %s", c.Species)
		}
		if c.Complaint != "" {
			output.Info("Complaint: %s", c.Complaint)
		}
		output.Info("Triage: %s", c.TriageLevel)
		output.Info("Status: %s", c.Status)
		output.Info("Created: %s", c.CreatedAt.Format("2006-01-02 15:04:05"))
		if c.AssignedVetID != nil {
			output.Info("Assigned Vet: %s", *c.AssignedVetID)
		}
		if c.ConsultationStart != nil {
			output.Info("Consultation Start: %s", c.ConsultationStart.Format("2006-01-02 15:04:05"))
		}
		if c.ConsultationEnd != nil {
			output.Info("Consultation End: %s", c.ConsultationEnd.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var casesAssignCmd = &cobra.Command{
	Use:   "assign [id] [vet-id]",
	Short: "Assign a waiting case to a vet",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewClient(serverURL).AssignCase(args[0], args[1])
		if err != nil {
			return fmt.Errorf("failed to assign case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(c)
		}

		output.Success("Case %s assigned to %s", c.ID, *c.AssignedVetID)
		return nil
	},
}

var casesTransitionCmd = &cobra.Command{
	Use:   "transition [id] [status]",
	Short: "Move a case to a new status",
	Long:  "Move a case forward: waiting, assigned, in_consult, complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewClient(serverURL).TransitionCase(args[0], models.CaseStatus(args[1]))
		if err != nil {
			return fmt.Errorf("failed to transition case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(c)
		}

		output.Success("Case %s is now %s", c.ID, c.Status)
		return nil
	},
}

var casesCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := NewClient(serverURL).CancelCase(args[0])
		if err != nil {
			return fmt.Errorf("failed to cancel case: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(c)
		}

		output.Success("Case %s cancelled", c.ID)
		return nil
	},
}

var casesEstimateCmd = &cobra.Command{
	Use:   "estimate [id]",
	Short: "Show the wait estimate for a waiting case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		est, err := NewClient(serverURL).EstimateCase(args[0])
		if err != nil {
			return fmt.Errorf("failed to get estimate: %w", err)
		}

		outputFormat, _ := cmd.Flags().GetString("output")
		if outputFormat == "json" {
			return output.JSON(est)
		}

		output.Info("Case %s: position %d, estimated wait %d minutes", est.CaseID, est.Position, est.WaitMinutes)
		return nil
	},
}

func init() {
	casesCreateCmd.Flags().String("level", "green", "triage level: red, yellow, green")
	casesCreateCmd.Flags().String("species", "", "patient species")
	casesCreateCmd.Flags().String("complaint", "", "presenting complaint")

	casesCmd.AddCommand(casesCreateCmd)
	casesCmd.AddCommand(casesGetCmd)
	casesCmd.AddCommand(casesAssignCmd)
	casesCmd.AddCommand(casesTransitionCmd)
	casesCmd.AddCommand(casesCancelCmd)
	casesCmd.AddCommand(casesEstimateCmd)
}
