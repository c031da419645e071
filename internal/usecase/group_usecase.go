package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/policy"
	repo "app/internal/repository"
)

// グループ（MANAGER / DELIVERY_CREW）のメンバー管理。マネージャ専用
type GroupUsecase struct {
	userRepo repo.UserRepository
}

func NewGroupUsecase(userRepo repo.UserRepository) *GroupUsecase {
	return &GroupUsecase{userRepo: userRepo}
}

type GroupUserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u *GroupUsecase) ListMembers(ctx context.Context, actor policy.Identity, role model.Role) ([]GroupUserResponse, error) {
	if !policy.Can(actor, policy.ActionGroupManage) {
		return nil, NewHTTPError(http.StatusForbidden, "only managers can access this endpoint")
	}

	users, err := u.userRepo.ListByRole(ctx, role)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := make([]GroupUserResponse, 0, len(users))
	for _, usr := range users {
		out = append(out, GroupUserResponse{ID: usr.ID, Username: usr.Username, Email: usr.Email})
	}
	return out, nil
}

// usernameで指定したユーザーをグループに入れる（roleの付け替え）
func (u *GroupUsecase) AddMember(ctx context.Context, actor policy.Identity, role model.Role, username string) error {
	if !policy.Can(actor, policy.ActionGroupManage) {
		return NewHTTPError(http.StatusForbidden, "only managers can access this endpoint")
	}
	if strings.TrimSpace(username) == "" {
		return NewHTTPError(http.StatusBadRequest, "username is required")
	}

	user, err := u.userRepo.FindByUsername(ctx, strings.TrimSpace(username))
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if user.Role == role {
		// すでにメンバー
		return nil
	}

	if err := u.userRepo.UpdateRole(ctx, user.ID, role); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// グループから外れたユーザーはCUSTOMERに戻る
func (u *GroupUsecase) RemoveMember(ctx context.Context, actor policy.Identity, role model.Role, userID int64) error {
	if !policy.Can(actor, policy.ActionGroupManage) {
		return NewHTTPError(http.StatusForbidden, "only managers can access this endpoint")
	}
	if userID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 対象グループに居ないなら何もしない
	if user.Role != role {
		return nil
	}

	if err := u.userRepo.UpdateRole(ctx, user.ID, model.RoleCustomer); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
