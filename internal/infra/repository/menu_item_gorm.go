package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type MenuItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewMenuItemGormRepository(db *gorm.DB) *MenuItemGormRepository {
	return &MenuItemGormRepository{db: db}
}

// 検索/カテゴリ/価格上限/ソート/ページング付きの一覧
func (r *MenuItemGormRepository) List(ctx context.Context, q repo.MenuItemListQuery) ([]model.MenuItem, int64, error) {
	var items []model.MenuItem
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.MenuItem{})

	if q.CategoryID != nil {
		tx = tx.Where("category_id = ?", *q.CategoryID)
	}

	// カテゴリtitleで絞る
	if strings.TrimSpace(q.Category) != "" {
		tx = tx.Where(
			"category_id IN (?)",
			r.db.Model(&model.Category{}).Select("id").Where("title = ?", strings.TrimSpace(q.Category)),
		)
	}

	// 価格上限
	if q.MaxPrice != nil {
		tx = tx.Where("price <= ?", *q.MaxPrice)
	}

	// titleの部分一致
	if strings.TrimSpace(q.Search) != "" {
		like := "%" + strings.TrimSpace(q.Search) + "%"
		tx = tx.Where("title ILIKE ?", like)
	}

	if err := tx.Count(&total).Error; err != nil {
		return []model.MenuItem{}, 0, err
	}

	switch q.Ordering {
	case "price":
		tx = tx.Order("price asc").Order("id asc")
	case "-price":
		tx = tx.Order("price desc").Order("id desc")
	case "title":
		tx = tx.Order("title asc")
	case "-title":
		tx = tx.Order("title desc")
	default:
		tx = tx.Order("id asc")
	}

	offset := (q.Page - 1) * q.PerPage
	if err := tx.Offset(offset).Limit(q.PerPage).Find(&items).Error; err != nil {
		return []model.MenuItem{}, 0, err
	}

	return items, total, nil
}

func (r *MenuItemGormRepository) FindByID(ctx context.Context, id int64) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

func (r *MenuItemGormRepository) FindByTitle(ctx context.Context, title string) (model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.WithContext(ctx).Where("title = ?", title).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.MenuItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.MenuItem{}, err
	}
	return m, nil
}

func (r *MenuItemGormRepository) Create(ctx context.Context, item model.MenuItem) (model.MenuItem, error) {
	if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
		return model.MenuItem{}, err
	}
	return item, nil
}

func (r *MenuItemGormRepository) Update(ctx context.Context, item model.MenuItem) error {
	res := r.db.WithContext(ctx).Model(&model.MenuItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":       item.Title,
			"price":       item.Price,
			"inventory":   item.Inventory,
			"category_id": item.CategoryID,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 削除時は参照しているカート明細も一緒に消す（注文明細はスナップショット済みなので残る）
func (r *MenuItemGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.MenuItem
		if err := tx.First(&m, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		if err := tx.Where("menu_item_id = ?", id).Delete(&model.CartItem{}).Error; err != nil {
			return err
		}

		return tx.Delete(&model.MenuItem{}, id).Error
	})
}
