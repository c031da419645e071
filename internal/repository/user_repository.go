package repository

import (
	"app/internal/domain/model"
	"context"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	// グループ追加/削除はroleの付け替え
	UpdateRole(ctx context.Context, userID int64, role model.Role) error
}
