package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gentletalk/internal/bootstrap/logging"
	domain "gentletalk/internal/domain/account"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

// OpponentLinker attaches a newly registered user to the issues naming them as opponent.
type OpponentLinker interface {
	LinkOpponentIssuesAfterSignup(ctx context.Context, user domain.User) ([]int64, error)
}

type Service struct {
	users  ports.UserDirectory
	linker OpponentLinker
	uow    ports.UnitOfWork
}

func NewService(users ports.UserDirectory, linker OpponentLinker, uow ports.UnitOfWork) *Service {
	return &Service{users: users, linker: linker, uow: uow}
}

type SignupInput struct {
	Name  string
	Phone string
}

type SignupResult struct {
	User domain.User
	// LinkedIssues lists the issues this signup became the opponent of.
	LinkedIssues []int64
}

func (s *Service) check(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.users == nil {
		return errors.New("user directory is required")
	}
	if s.uow == nil {
		return errors.New("account unit of work is required")
	}
	return nil
}

// Signup registers the user and links pending opponent issues in the same transaction.
func (s *Service) Signup(ctx context.Context, input SignupInput) (SignupResult, error) {
	if err := s.check(ctx); err != nil {
		return SignupResult{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return SignupResult{}, errs.E(errs.KindInvalidArgument, "user name is required")
	}
	phone := domain.NormalizePhone(input.Phone)

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.account"))

	var out SignupResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if phone != "" {
			_, found, err := s.users.FindByPhone(txCtx, phone)
			if err != nil {
				return errs.WithKind(err, errs.KindStorage, "lookup user by phone")
			}
			if found {
				return errs.E(errs.KindConflict, "phone number already registered")
			}
		}

		created, err := s.users.Create(txCtx, domain.User{Name: name, Phone: phone})
		if err != nil {
			return errs.WithKind(err, errs.KindStorage, "insert user")
		}
		out.User = created

		if s.linker == nil {
			return nil
		}
		linked, err := s.linker.LinkOpponentIssuesAfterSignup(txCtx, created)
		if err != nil {
			return err
		}
		out.LinkedIssues = linked
		return nil
	}); err != nil {
		logging.Error(logCtx, "signup failed", slog.Any("err", errs.Loggable(err)))
		return SignupResult{}, err
	}

	logging.Info(logging.WithAttrs(logCtx, slog.Int64("user_no", out.User.No)), "user signed up",
		slog.Int("linked_issues", len(out.LinkedIssues)),
	)
	return out, nil
}

func (s *Service) Get(ctx context.Context, userNo int64) (domain.User, error) {
	if err := s.check(ctx); err != nil {
		return domain.User{}, err
	}
	user, err := s.users.GetByNo(ctx, userNo)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return domain.User{}, errs.WithKind(err, errs.KindNotFound, fmt.Sprintf("user %d not found", userNo))
		}
		return domain.User{}, errs.WithKind(err, errs.KindStorage, "load user")
	}
	return user, nil
}

func (s *Service) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	if err := s.check(ctx); err != nil {
		return domain.User{}, err
	}
	phone = domain.NormalizePhone(phone)
	if phone == "" {
		return domain.User{}, errs.E(errs.KindInvalidArgument, "phone number is required")
	}
	user, found, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		return domain.User{}, errs.WithKind(err, errs.KindStorage, "lookup user by phone")
	}
	if !found {
		return domain.User{}, errs.E(errs.KindNotFound, "no user with that phone number")
	}
	return user, nil
}
