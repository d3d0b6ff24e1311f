package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"gentletalk/internal/bootstrap"
	"gentletalk/internal/bootstrap/logging"
	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
	issueuc "gentletalk/internal/usecase/issue"
)

var issueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Register, analyze and update disputes",
}

var issueRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new dispute",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		userNo, _ := cmd.Flags().GetInt64("user")
		conflict, _ := cmd.Flags().GetString("conflict")
		requirements, _ := cmd.Flags().GetString("requirements")
		opponentName, _ := cmd.Flags().GetString("opponent-name")
		opponentContact, _ := cmd.Flags().GetString("opponent-contact")

		item, err := app.Issues.Register(ctx, issueuc.RegisterInput{
			UserNo:            userNo,
			ConflictSituation: conflict,
			Requirements:      requirements,
			OpponentName:      opponentName,
			OpponentContact:   opponentContact,
		})
		if err != nil {
			return errs.Wrap(err, "register issue")
		}
		return writeIssueLine(cmd.OutOrStdout(), item)
	}),
}

var issueGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show one issue by number or code",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		issueNo, _ := cmd.Flags().GetInt64("issue")
		code, _ := cmd.Flags().GetString("code")

		var (
			item domainissue.Issue
			err  error
		)
		if code != "" {
			item, err = app.Issues.GetByCode(ctx, code)
		} else {
			item, err = app.Issues.Get(ctx, issueNo)
		}
		if err != nil {
			return errs.Wrap(err, "get issue")
		}
		return writeIssueDetail(cmd.OutOrStdout(), item)
	}),
}

var issueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues page by page",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		rawStatus, _ := cmd.Flags().GetString("status")

		input := issueuc.PageInput{Page: page, Size: size}
		if cmd.Flags().Changed("user") {
			userNo, _ := cmd.Flags().GetInt64("user")
			input.UserNo = &userNo
		}
		if rawStatus != "" {
			status, err := domainissue.ParseStatus(rawStatus)
			if err != nil {
				return errs.WithKind(err, errs.KindInvalidArgument, "parse status")
			}
			input.Status = status
		}

		result, err := app.Issues.Page(ctx, input)
		if err != nil {
			return errs.Wrap(err, "list issues")
		}
		if err := writeIssues(cmd.OutOrStdout(), result.Items); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "page %d size %d total %d\n", result.Page, result.Size, result.Total)
		return errs.Wrap(err, "write page footer")
	}),
}

var issueMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List issues a user owns or is the opponent of",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		userNo, _ := cmd.Flags().GetInt64("user")
		items, err := app.Issues.ListMine(cmd.Context(), userNo)
		if err != nil {
			return errs.Wrap(err, "list my issues")
		}
		return writeIssues(cmd.OutOrStdout(), items)
	}),
}

var issueAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a dispute and draft the outreach message",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		issueNo, _ := cmd.Flags().GetInt64("issue")

		item, err := app.Issues.Analyze(ctx, issueNo)
		if err != nil {
			return errs.Wrap(err, "analyze issue")
		}
		if item.Status == domainissue.StatusAnalysisFailed {
			logging.Warn(ctx, "analysis recorded as failed", slog.Int64("issue_no", item.No))
		}
		return writeIssueDetail(cmd.OutOrStdout(), item)
	}),
}

var issueOpponentCmd = &cobra.Command{
	Use:   "opponent",
	Short: "Record the opponent's name and contact",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		name, _ := cmd.Flags().GetString("name")
		contact, _ := cmd.Flags().GetString("contact")

		item, err := app.Issues.UpdateOpponent(cmd.Context(), issueNo, name, contact)
		if err != nil {
			return errs.Wrap(err, "update opponent")
		}
		return writeIssueDetail(cmd.OutOrStdout(), item)
	}),
}

var issueProposalsCmd = &cobra.Command{
	Use:   "proposals",
	Short: "Store a proposal bundle on an issue",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		proposals, _ := cmd.Flags().GetStringArray("proposal")

		item, err := app.Issues.SaveProposals(cmd.Context(), issueNo, proposals)
		if err != nil {
			return errs.Wrap(err, "save proposals")
		}
		return writeIssueDetail(cmd.OutOrStdout(), item)
	}),
}

var issueSelectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select the proposal both parties negotiate on",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		proposal, _ := cmd.Flags().GetString("proposal")

		item, err := app.Issues.SelectProposal(cmd.Context(), issueNo, proposal)
		if err != nil {
			return errs.Wrap(err, "select proposal")
		}
		return writeIssueDetail(cmd.OutOrStdout(), item)
	}),
}

var issueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show or change an issue's status",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		ctx := cmd.Context()
		issueNo, _ := cmd.Flags().GetInt64("issue")
		rawStatus, _ := cmd.Flags().GetString("set")
		override, _ := cmd.Flags().GetBool("override")

		if rawStatus == "" {
			status, err := app.Issues.Status(ctx, issueNo)
			if err != nil {
				return errs.Wrap(err, "read issue status")
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", issueNo, status)
			return errs.Wrap(err, "write status output")
		}

		status, err := domainissue.ParseStatus(rawStatus)
		if err != nil {
			return errs.WithKind(err, errs.KindInvalidArgument, "parse status")
		}
		item, err := app.Issues.UpdateStatus(ctx, issueuc.UpdateStatusInput{IssueNo: issueNo, Status: status, Override: override})
		if err != nil {
			return errs.Wrap(err, "update issue status")
		}
		return writeIssueLine(cmd.OutOrStdout(), item)
	}),
}

var issueCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count issues in a status",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		rawStatus, _ := cmd.Flags().GetString("status")
		status, err := domainissue.ParseStatus(rawStatus)
		if err != nil {
			return errs.WithKind(err, errs.KindInvalidArgument, "parse status")
		}
		var userNo *int64
		if cmd.Flags().Changed("user") {
			v, _ := cmd.Flags().GetInt64("user")
			userNo = &v
		}

		n, err := app.Issues.CountByStatus(cmd.Context(), userNo, status)
		if err != nil {
			return errs.Wrap(err, "count issues")
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: %d\n", status, n)
		return errs.Wrap(err, "write count output")
	}),
}

func init() {
	rootCmd.AddCommand(issueCmd)
	issueCmd.AddCommand(
		issueRegisterCmd, issueGetCmd, issueListCmd, issueMineCmd, issueAnalyzeCmd,
		issueOpponentCmd, issueProposalsCmd, issueSelectCmd, issueStatusCmd, issueCountCmd,
	)

	issueRegisterCmd.Flags().Int64("user", 0, "Owner user number")
	issueRegisterCmd.Flags().String("conflict", "", "Conflict situation")
	issueRegisterCmd.Flags().String("requirements", "", "What the owner wants")
	issueRegisterCmd.Flags().String("opponent-name", "", "Opponent name")
	issueRegisterCmd.Flags().String("opponent-contact", "", "Opponent phone number")
	_ = issueRegisterCmd.MarkFlagRequired("user")
	_ = issueRegisterCmd.MarkFlagRequired("conflict")

	issueGetCmd.Flags().Int64("issue", 0, "Issue number")
	issueGetCmd.Flags().String("code", "", "Issue code")

	issueListCmd.Flags().Int64("user", 0, "Filter by owner")
	issueListCmd.Flags().String("status", "", "Filter by status")
	issueListCmd.Flags().Int("page", 1, "Page number")
	issueListCmd.Flags().Int("size", 20, "Page size")

	issueMineCmd.Flags().Int64("user", 0, "User number")
	_ = issueMineCmd.MarkFlagRequired("user")

	for _, c := range []*cobra.Command{issueAnalyzeCmd, issueOpponentCmd, issueProposalsCmd, issueSelectCmd, issueStatusCmd} {
		c.Flags().Int64("issue", 0, "Issue number")
		_ = c.MarkFlagRequired("issue")
	}
	issueOpponentCmd.Flags().String("name", "", "Opponent name")
	issueOpponentCmd.Flags().String("contact", "", "Opponent phone number")
	issueProposalsCmd.Flags().StringArray("proposal", nil, "Proposal text (repeatable)")
	issueSelectCmd.Flags().String("proposal", "", "Selected proposal text")
	issueStatusCmd.Flags().String("set", "", "New status")
	issueStatusCmd.Flags().Bool("override", false, "Skip transition validation")

	issueCountCmd.Flags().String("status", "", "Status to count")
	issueCountCmd.Flags().Int64("user", 0, "Restrict to a participant")
	_ = issueCountCmd.MarkFlagRequired("status")
}
