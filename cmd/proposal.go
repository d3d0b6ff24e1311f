package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gentletalk/internal/bootstrap"
	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/errs"
	mediationuc "gentletalk/internal/usecase/mediation"
)

var proposalCmd = &cobra.Command{
	Use:   "proposal",
	Short: "Generate, look up and reuse mediation proposals",
}

func optionalInt64(cmd *cobra.Command, name string) *int64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt64(name)
	return &v
}

var proposalLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Serve a cached proposal for a conflict, recording the reuse",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		category, _ := cmd.Flags().GetInt64("category")
		conflict, _ := cmd.Flags().GetString("conflict")
		requirements, _ := cmd.Flags().GetString("requirements")

		got, err := app.Mediation.GetOrCreate(cmd.Context(), mediationuc.GetOrCreateInput{
			CategoryNo:        category,
			ConflictSituation: conflict,
			Requirements:      requirements,
			IssueNo:           optionalInt64(cmd, "issue"),
		})
		if err != nil {
			return errs.Wrap(err, "lookup proposal")
		}
		if !got.Hit {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "miss key=%s\n", got.Key)
			return errs.Wrap(err, "write lookup output")
		}
		return writeEntries(cmd.OutOrStdout(), []mediation.ProposalLogEntry{got.Entry})
	}),
}

var proposalRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Store proposals generated elsewhere as originals",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		category, _ := cmd.Flags().GetInt64("category")
		conflict, _ := cmd.Flags().GetString("conflict")
		requirements, _ := cmd.Flags().GetString("requirements")
		proposals, _ := cmd.Flags().GetStringArray("proposal")
		model, _ := cmd.Flags().GetString("model")

		created, err := app.Mediation.RegisterGenerated(cmd.Context(), mediationuc.RegisterGeneratedInput{
			CategoryNo:        category,
			ConflictSituation: conflict,
			Requirements:      requirements,
			Proposals:         proposals,
			AIModel:           model,
			IssueNo:           optionalInt64(cmd, "issue"),
		})
		if err != nil {
			return errs.Wrap(err, "register proposals")
		}
		return writeEntries(cmd.OutOrStdout(), created)
	}),
}

var proposalGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate proposals for an analyzed issue",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		regenerate, _ := cmd.Flags().GetBool("regenerate")

		got, err := app.Mediation.GenerateFromIssue(cmd.Context(), mediationuc.GenerateInput{
			IssueNo:    issueNo,
			CategoryNo: optionalInt64(cmd, "category"),
			Regenerate: regenerate,
		})
		if err != nil {
			return errs.Wrap(err, "generate proposals")
		}
		if err := writeIssueLine(cmd.OutOrStdout(), got.Issue); err != nil {
			return err
		}
		return writeEntries(cmd.OutOrStdout(), got.Entries)
	}),
}

var proposalReuseCmd = &cobra.Command{
	Use:   "reuse",
	Short: "Increment a proposal's reuse counter",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		logNo, _ := cmd.Flags().GetInt64("log")
		if err := app.Mediation.IncrementReuse(cmd.Context(), logNo); err != nil {
			return errs.Wrap(err, "increment reuse")
		}
		entry, err := app.Mediation.Get(cmd.Context(), logNo)
		if err != nil {
			return errs.Wrap(err, "get proposal")
		}
		return writeEntries(cmd.OutOrStdout(), []mediation.ProposalLogEntry{entry})
	}),
}

var proposalSimilarCmd = &cobra.Command{
	Use:   "similar",
	Short: "List proposals stored for the same conflict",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		category, _ := cmd.Flags().GetInt64("category")
		conflict, _ := cmd.Flags().GetString("conflict")
		limit, _ := cmd.Flags().GetInt("limit")

		items, err := app.Mediation.FindSimilar(cmd.Context(), category, conflict, limit)
		if err != nil {
			return errs.Wrap(err, "find similar proposals")
		}
		return writeEntries(cmd.OutOrStdout(), items)
	}),
}

var proposalPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List the most reused proposals",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		limit, _ := cmd.Flags().GetInt("limit")
		items, err := app.Mediation.FindPopular(cmd.Context(), optionalInt64(cmd, "category"), limit)
		if err != nil {
			return errs.Wrap(err, "find popular proposals")
		}
		return writeEntries(cmd.OutOrStdout(), items)
	}),
}

var proposalRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the newest proposals",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		limit, _ := cmd.Flags().GetInt("limit")
		items, err := app.Mediation.FindRecent(cmd.Context(), optionalInt64(cmd, "category"), limit)
		if err != nil {
			return errs.Wrap(err, "find recent proposals")
		}
		return writeEntries(cmd.OutOrStdout(), items)
	}),
}

var proposalIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "List every proposal row recorded for an issue",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App) error {
		issueNo, _ := cmd.Flags().GetInt64("issue")
		items, err := app.Mediation.ListByIssue(cmd.Context(), issueNo)
		if err != nil {
			return errs.Wrap(err, "list issue proposals")
		}
		return writeEntries(cmd.OutOrStdout(), items)
	}),
}

func init() {
	rootCmd.AddCommand(proposalCmd)
	proposalCmd.AddCommand(
		proposalLookupCmd, proposalRegisterCmd, proposalGenerateCmd, proposalReuseCmd,
		proposalSimilarCmd, proposalPopularCmd, proposalRecentCmd, proposalIssueCmd,
	)

	for _, c := range []*cobra.Command{proposalLookupCmd, proposalRegisterCmd, proposalSimilarCmd} {
		c.Flags().Int64("category", 0, "Category number")
		c.Flags().String("conflict", "", "Conflict situation")
		_ = c.MarkFlagRequired("conflict")
	}
	for _, c := range []*cobra.Command{proposalLookupCmd, proposalRegisterCmd} {
		c.Flags().String("requirements", "", "Requirements")
		c.Flags().Int64("issue", 0, "Issue the rows belong to")
	}
	proposalRegisterCmd.Flags().StringArray("proposal", nil, "Proposal text (repeatable)")
	proposalRegisterCmd.Flags().String("model", "", "Model that produced the proposals")

	proposalGenerateCmd.Flags().Int64("issue", 0, "Issue number")
	proposalGenerateCmd.Flags().Int64("category", 0, "Category number (defaults to the issue number)")
	proposalGenerateCmd.Flags().Bool("regenerate", false, "Call the provider even when proposals exist")
	_ = proposalGenerateCmd.MarkFlagRequired("issue")

	proposalReuseCmd.Flags().Int64("log", 0, "Proposal log number")
	_ = proposalReuseCmd.MarkFlagRequired("log")

	proposalIssueCmd.Flags().Int64("issue", 0, "Issue number")
	_ = proposalIssueCmd.MarkFlagRequired("issue")

	for _, c := range []*cobra.Command{proposalSimilarCmd, proposalPopularCmd, proposalRecentCmd} {
		c.Flags().Int("limit", 10, "Maximum rows")
	}
	for _, c := range []*cobra.Command{proposalPopularCmd, proposalRecentCmd} {
		c.Flags().Int64("category", 0, "Restrict to a category")
	}
}
