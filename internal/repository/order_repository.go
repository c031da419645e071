package repository

import (
	"app/internal/domain/model"
	"context"
)

// 注文一覧の絞り込み条件。UserID/DeliveryCrewIDは可視範囲の反映
type OrderListFilter struct {
	Page           int
	PerPage        int
	Status         *model.OrderStatus
	Search         string // 明細タイトルの部分一致
	Ordering       string // date / -date / total / -total
	UserID         *int64
	DeliveryCrewID *int64
}

type OrderRepository interface {
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	List(ctx context.Context, f OrderListFilter) ([]model.Order, int64, error)
	Create(ctx context.Context, order model.Order) (int64, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	UpdateDeliveryCrew(ctx context.Context, orderID int64, crewID int64) error
	// 明細ごと削除
	Delete(ctx context.Context, orderID int64) error
}
