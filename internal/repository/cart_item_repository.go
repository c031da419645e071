package repository

import (
	"app/internal/domain/model"
	"context"
)

type CartItemRepository interface {
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	// 同一(cart, menu_item)は数量加算。行ロック付きで原子的に行う
	UpsertByCartAndMenuItem(ctx context.Context, cartID int64, menuItemID int64, addQty int64, unitPrice float64) error
	FindByID(ctx context.Context, cartItemID int64) (model.CartItem, error)
	IsOwnedByUser(ctx context.Context, cartItemID int64, userID int64) (bool, error)
	DeleteByID(ctx context.Context, cartItemID int64) error
}
