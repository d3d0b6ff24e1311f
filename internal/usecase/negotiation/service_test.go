package negotiation

import (
	"context"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	domainissue "gentletalk/internal/domain/issue"
	domain "gentletalk/internal/domain/negotiation"
	"gentletalk/internal/errs"
	"gentletalk/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "gentletalk/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "gentletalk/internal/infrastructure/persistence/sqlite/uow"
)

func setupService(t *testing.T) (*Service, domainissue.Issue) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "negotiation.sqlite")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	issues := sqliterepo.NewIssueRepository(db)
	item, err := issues.Create(context.Background(), domainissue.Issue{
		Code:              "NEG001",
		UserNo:            1,
		ConflictSituation: "dispute A",
		Status:            domainissue.StatusProposalsPresented,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return NewService(sqliterepo.NewNegotiationRepository(db), issues, sqliteuow.NewUnitOfWork(db)), item
}

func TestRegisterStartsPending(t *testing.T) {
	svc, item := setupService(t)
	ctx := context.Background()

	got, err := svc.Register(ctx, RegisterInput{IssueNo: item.No, UserNo: 1, MediationProposal: " split 50/50 "})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if got.No == 0 || got.Status != domain.StatusPending || got.MediationProposal != "split 50/50" {
		t.Fatalf("Register() = %#v", got)
	}

	if _, err := svc.Register(ctx, RegisterInput{IssueNo: 404, UserNo: 1}); !errs.IsKind(err, errs.KindNotFound) {
		t.Fatalf("Register(missing issue) error = %v", err)
	}
	if _, err := svc.Register(ctx, RegisterInput{IssueNo: item.No}); !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Fatalf("Register(no user) error = %v", err)
	}
}

func TestAcceptThenFinalizeStampsTimes(t *testing.T) {
	svc, item := setupService(t)
	ctx := context.Background()
	n, err := svc.Register(ctx, RegisterInput{IssueNo: item.No, UserNo: 1})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	accepted, err := svc.Accept(ctx, n.No)
	if err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if accepted.Status != domain.StatusAccepted || accepted.AcceptedAt == nil {
		t.Fatalf("Accept() = %#v", accepted)
	}
	if _, err := svc.Finalize(ctx, n.No); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	got, err := svc.Get(ctx, n.No)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != domain.StatusFinalized || got.AcceptedAt == nil || got.FinalizedAt == nil {
		t.Fatalf("Get() = %#v", got)
	}
	if _, err := svc.Reject(ctx, n.No); !errs.IsKind(err, errs.KindInvalidState) {
		t.Fatalf("Reject(finalized) error = %v", err)
	}
}

func TestRejectAndMissingNegotiation(t *testing.T) {
	svc, item := setupService(t)
	ctx := context.Background()
	n, err := svc.Register(ctx, RegisterInput{IssueNo: item.No, UserNo: 1})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	rejected, err := svc.Reject(ctx, n.No)
	if err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if rejected.Status != domain.StatusRejected || rejected.AcceptedAt != nil || rejected.FinalizedAt != nil {
		t.Fatalf("Reject() = %#v", rejected)
	}

	for name, fn := range map[string]func(context.Context, int64) (domain.Negotiation, error){
		"Accept":   svc.Accept,
		"Finalize": svc.Finalize,
		"Reject":   svc.Reject,
	} {
		if _, err := fn(ctx, 9999); !errs.IsKind(err, errs.KindNotFound) {
			t.Fatalf("%s(missing) error = %v", name, err)
		}
	}
}

func TestUpdateStatusOverride(t *testing.T) {
	svc, item := setupService(t)
	ctx := context.Background()
	n, err := svc.Register(ctx, RegisterInput{IssueNo: item.No, UserNo: 1})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, UpdateStatusInput{NegotiationNo: n.No, Status: domain.StatusFinalized}); !errs.IsKind(err, errs.KindInvalidState) {
		t.Fatalf("UpdateStatus(pending->finalized) error = %v", err)
	}
	got, err := svc.UpdateStatus(ctx, UpdateStatusInput{NegotiationNo: n.No, Status: domain.StatusFinalized, Override: true})
	if err != nil {
		t.Fatalf("UpdateStatus(override) error = %v", err)
	}
	if got.Status != domain.StatusFinalized || got.FinalizedAt == nil {
		t.Fatalf("UpdateStatus(override) = %#v", got)
	}
	if _, err := svc.UpdateStatus(ctx, UpdateStatusInput{NegotiationNo: n.No, Status: "bogus"}); !errs.IsKind(err, errs.KindInvalidArgument) {
		t.Fatalf("UpdateStatus(bogus) error = %v", err)
	}
}

func TestOngoingAndCounts(t *testing.T) {
	svc, item := setupService(t)
	ctx := context.Background()

	var nos []int64
	for i := 0; i < 3; i++ {
		n, err := svc.Register(ctx, RegisterInput{IssueNo: item.No, UserNo: 7})
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		nos = append(nos, n.No)
	}
	if _, err := svc.Accept(ctx, nos[1]); err != nil {
		t.Fatalf("Accept() error = %v", err)
	}
	if _, err := svc.Reject(ctx, nos[2]); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}

	ongoing, err := svc.Ongoing(ctx, 7)
	if err != nil || len(ongoing) != 2 {
		t.Fatalf("Ongoing() = %#v, %v", ongoing, err)
	}
	rejected, err := svc.CountByStatus(ctx, 7, domain.StatusRejected)
	if err != nil || rejected != 1 {
		t.Fatalf("CountByStatus(rejected) = %d, %v", rejected, err)
	}
	byIssue, err := svc.ListByIssue(ctx, item.No)
	if err != nil || len(byIssue) != 3 {
		t.Fatalf("ListByIssue() = %d, %v", len(byIssue), err)
	}
	recent, err := svc.Recent(ctx, 7, 2)
	if err != nil || len(recent) != 2 {
		t.Fatalf("Recent() = %d, %v", len(recent), err)
	}
}
