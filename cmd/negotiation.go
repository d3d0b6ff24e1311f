package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"gentletalk/internal/bootstrap"
	"gentletalk/internal/domain/negotiation"
	"gentletalk/internal/errs"
	negotiationuc "gentletalk/internal/usecase/negotiation"
)

var negotiationCmd = &cobra.Command{
	Use:   "negotiation",
	Short: "Track negotiation rounds on an issue",
}

var negotiationRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Open a negotiation round",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		userNo, _ := cmd.Flags().GetInt64("user")
		proposal, _ := cmd.Flags().GetString("proposal")
		counter, _ := cmd.Flags().GetString("counter")

		n, err := app.Negotiations.Register(cmd.Context(), negotiationuc.RegisterInput{
			IssueNo:           issueNo,
			UserNo:            userNo,
			ProposalLogNo:     optionalInt64(cmd, "log"),
			MediationProposal: proposal,
			CounterProposal:   counter,
		})
		if err != nil {
			return errs.Wrap(err, "register negotiation")
		}
		return writeNegotiations(cmd.OutOrStdout(), []negotiation.Negotiation{n})
	}),
}

var negotiationGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one negotiation round",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		no, _ := cmd.Flags().GetInt64("id")
		n, err := app.Negotiations.Get(cmd.Context(), no)
		if err != nil {
			return errs.Wrap(err, "get negotiation")
		}
		return writeNegotiations(cmd.OutOrStdout(), []negotiation.Negotiation{n})
	}),
}

var negotiationListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rounds by issue or by user",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		ongoing, _ := cmd.Flags().GetBool("ongoing")
		recent, _ := cmd.Flags().GetInt("recent")

		var (
			items []negotiation.Negotiation
			err   error
		)
		switch {
		case cmd.Flags().Changed("issue"):
			issueNo, _ := cmd.Flags().GetInt64("issue")
			items, err = app.Negotiations.ListByIssue(ctx, issueNo)
		case cmd.Flags().Changed("user"):
			userNo, _ := cmd.Flags().GetInt64("user")
			switch {
			case ongoing:
				items, err = app.Negotiations.Ongoing(ctx, userNo)
			case recent > 0:
				items, err = app.Negotiations.Recent(ctx, userNo, recent)
			default:
				items, err = app.Negotiations.ListByUser(ctx, userNo)
			}
		default:
			return errs.E(errs.KindInvalidArgument, "either --issue or --user is required")
		}
		if err != nil {
			return errs.Wrap(err, "list negotiations")
		}
		return writeNegotiations(cmd.OutOrStdout(), items)
	}),
}

type negotiationStep func(s *negotiationuc.Service, ctx context.Context, negotiationNo int64) (negotiation.Negotiation, error)

func negotiationStepCmd(use, short string, step negotiationStep) *cobra.Command {
	c := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
			no, _ := cmd.Flags().GetInt64("id")
			n, err := step(app.Negotiations, cmd.Context(), no)
			if err != nil {
				return errs.Wrap(err, use+" negotiation")
			}
			return writeNegotiations(cmd.OutOrStdout(), []negotiation.Negotiation{n})
		}),
	}
	c.Flags().Int64("id", 0, "Negotiation number")
	_ = c.MarkFlagRequired("id")
	return c
}

var negotiationStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Set a round's status",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		no, _ := cmd.Flags().GetInt64("id")
		raw, _ := cmd.Flags().GetString("set")
		override, _ := cmd.Flags().GetBool("override")

		status, err := negotiation.ParseStatus(raw)
		if err != nil {
			return errs.WithKind(err, errs.KindInvalidArgument, "parse status")
		}
		n, err := app.Negotiations.UpdateStatus(cmd.Context(), negotiationuc.UpdateStatusInput{
			NegotiationNo: no,
			Status:        status,
			Override:      override,
		})
		if err != nil {
			return errs.Wrap(err, "update negotiation status")
		}
		return writeNegotiations(cmd.OutOrStdout(), []negotiation.Negotiation{n})
	}),
}

func init() {
	rootCmd.AddCommand(negotiationCmd)
	negotiationCmd.AddCommand(
		negotiationRegisterCmd, negotiationGetCmd, negotiationListCmd, negotiationStatusCmd,
		negotiationStepCmd("accept", "Accept a pending round", (*negotiationuc.Service).Accept),
		negotiationStepCmd("finalize", "Finalize an accepted round", (*negotiationuc.Service).Finalize),
		negotiationStepCmd("reject", "Reject a round", (*negotiationuc.Service).Reject),
	)

	negotiationRegisterCmd.Flags().Int64("issue", 0, "Issue number")
	negotiationRegisterCmd.Flags().Int64("user", 0, "Negotiating user number")
	negotiationRegisterCmd.Flags().Int64("log", 0, "Proposal log the round is based on")
	negotiationRegisterCmd.Flags().String("proposal", "", "Mediation proposal text")
	negotiationRegisterCmd.Flags().String("counter", "", "Counter proposal text")
	_ = negotiationRegisterCmd.MarkFlagRequired("issue")
	_ = negotiationRegisterCmd.MarkFlagRequired("user")

	negotiationGetCmd.Flags().Int64("id", 0, "Negotiation number")
	_ = negotiationGetCmd.MarkFlagRequired("id")

	negotiationListCmd.Flags().Int64("issue", 0, "Issue number")
	negotiationListCmd.Flags().Int64("user", 0, "User number")
	negotiationListCmd.Flags().Bool("ongoing", false, "Only pending or accepted rounds")
	negotiationListCmd.Flags().Int("recent", 0, "Only the newest N rounds")

	negotiationStatusCmd.Flags().Int64("id", 0, "Negotiation number")
	negotiationStatusCmd.Flags().String("set", "", "New status")
	negotiationStatusCmd.Flags().Bool("override", false, "Skip transition validation")
	_ = negotiationStatusCmd.MarkFlagRequired("id")
	_ = negotiationStatusCmd.MarkFlagRequired("set")
}
