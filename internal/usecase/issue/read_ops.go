package issue

import (
	"context"
	"strings"

	domainissue "gentletalk/internal/domain/issue"
	"gentletalk/internal/errs"
	"gentletalk/internal/ports"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

func (s *Service) Get(ctx context.Context, issueNo int64) (domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return domainissue.Issue{}, err
	}
	return s.load(ctx, issueNo)
}

func (s *Service) GetByCode(ctx context.Context, code string) (domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return domainissue.Issue{}, err
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return domainissue.Issue{}, errs.E(errs.KindInvalidArgument, "issue code is required")
	}
	item, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return domainissue.Issue{}, storeErr(err, "issue "+code)
	}
	return item, nil
}

// Status answers from the cache when possible.
func (s *Service) Status(ctx context.Context, issueNo int64) (domainissue.Status, error) {
	if err := s.check(ctx); err != nil {
		return "", err
	}
	if s.cache != nil {
		if raw, found, err := s.cache.Get(ctx, cacheIssueStatusKey(issueNo)); err == nil && found {
			if status, err := domainissue.ParseStatus(raw); err == nil {
				return status, nil
			}
		}
	}
	item, err := s.load(ctx, issueNo)
	if err != nil {
		return "", err
	}
	s.setCacheBestEffort(ctx, cacheIssueStatusKey(item.No), string(item.Status))
	return item.Status, nil
}

func (s *Service) ListByUser(ctx context.Context, userNo int64) ([]domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByUser(ctx, userNo)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list issues by user")
	}
	return items, nil
}

func (s *Service) ListByOpponent(ctx context.Context, userNo int64) ([]domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.repo.ListByOpponent(ctx, userNo)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list issues by opponent")
	}
	return items, nil
}

// ListMine merges issues the user owns with those naming them as opponent. Owned issues come
// first and each issue appears once.
func (s *Service) ListMine(ctx context.Context, userNo int64) ([]domainissue.Issue, error) {
	owned, err := s.ListByUser(ctx, userNo)
	if err != nil {
		return nil, err
	}
	opposed, err := s.ListByOpponent(ctx, userNo)
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(owned)+len(opposed))
	out := make([]domainissue.Issue, 0, len(owned)+len(opposed))
	for _, group := range [][]domainissue.Issue{owned, opposed} {
		for _, item := range group {
			if _, ok := seen[item.No]; ok {
				continue
			}
			seen[item.No] = struct{}{}
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *Service) Page(ctx context.Context, input PageInput) (PageResult, error) {
	if err := s.check(ctx); err != nil {
		return PageResult{}, err
	}
	if input.Status != "" && !input.Status.Valid() {
		return PageResult{}, errs.WithKind(domainissue.ErrInvalidStatus, errs.KindInvalidArgument, string(input.Status))
	}

	page := input.Page
	if page <= 0 {
		page = defaultPage
	}
	size := input.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	items, total, err := s.repo.List(ctx, ports.IssueFilter{
		UserNo: input.UserNo,
		Status: input.Status,
		Offset: (page - 1) * size,
		Limit:  size,
	})
	if err != nil {
		return PageResult{}, errs.WithKind(err, errs.KindStorage, "page issues")
	}
	return PageResult{Items: items, Total: total, Page: page, Size: size}, nil
}

func (s *Service) CountByStatus(ctx context.Context, userNo *int64, status domainissue.Status) (int64, error) {
	if err := s.check(ctx); err != nil {
		return 0, err
	}
	if !status.Valid() {
		return 0, errs.WithKind(domainissue.ErrInvalidStatus, errs.KindInvalidArgument, string(status))
	}
	count, err := s.repo.CountByStatus(ctx, userNo, status)
	if err != nil {
		return 0, errs.WithKind(err, errs.KindStorage, "count issues")
	}
	return count, nil
}

func (s *Service) Recent(ctx context.Context, userNo int64, limit int) ([]domainissue.Issue, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	items, err := s.repo.Recent(ctx, userNo, limit)
	if err != nil {
		return nil, errs.WithKind(err, errs.KindStorage, "list recent issues")
	}
	return items, nil
}
