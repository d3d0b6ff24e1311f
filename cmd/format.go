package cmd

import (
	"fmt"
	"io"
	"strings"

	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/domain/mediation"
	"gentletalk/internal/domain/negotiation"
	"gentletalk/internal/errs"
)

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func optInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func writeIssueLine(w io.Writer, item domainissue.Issue) error {
	_, err := fmt.Fprintf(w, "#%d %s [%s] owner=%d opponent=%s conflict=%q\n",
		item.No, item.Code, item.Status, item.UserNo, optInt(item.OpponentUserNo), item.ConflictSituation)
	return errs.Wrap(err, "write issue line")
}

func writeIssueDetail(w io.Writer, item domainissue.Issue) error {
	if err := writeIssueLine(w, item); err != nil {
		return err
	}
	lines := []struct{ label, value string }{
		{"requirements", item.Requirements},
		{"analysis", item.AnalysisResult},
		{"message", item.NegotiationMessage},
		{"opponent_name", item.OpponentName},
		{"opponent_contact", item.OpponentContact},
		{"selected", item.SelectedProposal},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "  %s: %s\n", l.label, dash(l.value)); err != nil {
			return errs.Wrap(err, "write issue detail")
		}
	}
	for i, p := range item.Proposals {
		if _, err := fmt.Fprintf(w, "  proposal %d: %s\n", i+1, p); err != nil {
			return errs.Wrap(err, "write issue proposal")
		}
	}
	return nil
}

func writeIssues(w io.Writer, items []domainissue.Issue) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no issues")
		return errs.Wrap(err, "write issue list")
	}
	for _, item := range items {
		if err := writeIssueLine(w, item); err != nil {
			return err
		}
	}
	return nil
}

func writeEntries(w io.Writer, entries []mediation.ProposalLogEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "no proposals")
		return errs.Wrap(err, "write proposal list")
	}
	for _, e := range entries {
		origin := "reused"
		if e.IsFromAPI {
			origin = "original"
		}
		if _, err := fmt.Fprintf(w, "log=%d seq=%d %s source=%s reuse=%d issue=%s text=%q\n",
			e.No, e.Sequence, origin, optInt(e.SourceLogNo), e.ReuseCount, optInt(e.IssueNo), e.ProposalText); err != nil {
			return errs.Wrap(err, "write proposal line")
		}
	}
	return nil
}

func writeNegotiations(w io.Writer, items []negotiation.Negotiation) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "no negotiations")
		return errs.Wrap(err, "write negotiation list")
	}
	for _, n := range items {
		if _, err := fmt.Fprintf(w, "negotiation=%d issue=%d user=%d [%s] proposal=%q counter=%q\n",
			n.No, n.IssueNo, n.UserNo, n.Status, n.MediationProposal, n.CounterProposal); err != nil {
			return errs.Wrap(err, "write negotiation line")
		}
	}
	return nil
}
