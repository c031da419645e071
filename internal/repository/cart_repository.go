package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartRepository interface {
	GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error)
	FindByUserID(ctx context.Context, userID int64) (model.Cart, error)
	// 明細を全削除（カート行自体は残す）
	Clear(ctx context.Context, cartID int64) error
}
