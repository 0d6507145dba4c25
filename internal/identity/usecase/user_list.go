package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/hireline/hireline/internal/identity/entity"
	"github.com/hireline/hireline/internal/pkg/goerror"
	"github.com/hireline/hireline/internal/shared/constant"
)

type UserListInput struct {
	Search    string // value already trimmed
	Roles     []string
	Size      int32
	Page      int32
	SortBy    string // value already trimmed
	SortOrder string // value is: `asc` or `desc`; already trimmed and lowered
}

type UserListOutput struct {
	Page     int32
	Size     int32
	Total    int64
	Accounts []entity.Account
}

func (s *Usecase) UserList(ctx context.Context, in UserListInput) (*UserListOutput, error) {
	ctx, span := s.startSpan(ctx, "UserList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, constant.PermIdentityUsers, constant.PermActRead); err != nil {
		return nil, err
	}

	if in.Size <= 0 || in.Size > 100 {
		in.Size = 10 // default limit
	}
	if in.SortOrder != "asc" && in.SortOrder != "desc" {
		in.SortOrder = "desc"
	}

	filter := entity.AccountListFilter{
		OrderBy:        strings.ToLower(in.SortBy),
		OrderDirection: in.SortOrder,
		Search:         in.Search,
		Roles:          entity.ToInt16Slice(entity.ParseSafeRoles(in.Roles)),
		Size:           in.Size,
		Offset:         (max(in.Page, 1) - 1) * in.Size,
	}
	if in.Search != "" {
		filter.IsFilterBySearch = true
	}
	if len(filter.Roles) > 0 {
		filter.IsFilterByRole = true
	}

	accounts, count, err := s.repoDB.ListAccounts(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list accounts", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &UserListOutput{
		Page:     max(in.Page, 1),
		Size:     in.Size,
		Total:    count,
		Accounts: accounts,
	}, nil
}
