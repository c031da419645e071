package repository

import (
	"app/internal/domain/model"
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// メニュー一覧の検索条件
type MenuItemListQuery struct {
	Page       int
	PerPage    int
	CategoryID *int64
	Category   string // カテゴリtitle
	MaxPrice   *float64
	Search     string // titleの部分一致（大文字小文字を区別しない）
	Ordering   string // price / -price / title / -title
}

// メニューの永続化だけを約束
type MenuItemRepository interface {
	List(ctx context.Context, q MenuItemListQuery) ([]model.MenuItem, int64, error)
	FindByID(ctx context.Context, id int64) (model.MenuItem, error)
	FindByTitle(ctx context.Context, title string) (model.MenuItem, error)
	Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error)
	Update(ctx context.Context, item model.MenuItem) error
	// 参照しているカート明細ごと削除する
	Delete(ctx context.Context, id int64) error
}
