package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/policy"
	repo "app/internal/repository"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// ページングの既定値と上限
const (
	DefaultPerPage = 5
	MaxPerPage     = 100
)

// メニューとカテゴリの業務ロジック
type MenuUsecase struct {
	menuRepo     repo.MenuItemRepository
	categoryRepo repo.CategoryRepository
	taxRate      float64
}

// DI。taxRateは設定値（既定0.10）
func NewMenuUsecase(
	menuRepo repo.MenuItemRepository,
	categoryRepo repo.CategoryRepository,
	taxRate float64,
) *MenuUsecase {
	return &MenuUsecase{
		menuRepo:     menuRepo,
		categoryRepo: categoryRepo,
		taxRate:      taxRate,
	}
}

type MenuItemResponse struct {
	ID            int64            `json:"id"`
	Title         string           `json:"title"`
	Price         float64          `json:"price"`
	Inventory     int64            `json:"inventory"`
	PriceAfterTax float64          `json:"price_after_tax"`
	Category      *model.Category  `json:"category,omitempty"`
	CategoryID    int64            `json:"category_id"`
}

type MenuItemListOutput struct {
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
	Items   []MenuItemResponse `json:"items"`
}

type ListMenuItemsInput struct {
	Page       int
	PerPage    int
	CategoryID *int64
	Category   string
	MaxPrice   *float64
	Search     string
	Ordering   string
}

func (u *MenuUsecase) ListMenuItems(ctx context.Context, actor policy.Identity, in ListMenuItemsInput) (MenuItemListOutput, error) {
	if !policy.Can(actor, policy.ActionMenuRead) {
		return MenuItemListOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if in.Page < 1 {
		return MenuItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PerPage < 1 || in.PerPage > MaxPerPage {
		return MenuItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}
	if in.MaxPrice != nil && *in.MaxPrice < 0 {
		return MenuItemListOutput{}, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	switch in.Ordering {
	case "", "price", "-price", "title", "-title":
	default:
		return MenuItemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid ordering")
	}

	items, total, err := u.menuRepo.List(ctx, repo.MenuItemListQuery{
		Page:       in.Page,
		PerPage:    in.PerPage,
		CategoryID: in.CategoryID,
		Category:   strings.TrimSpace(in.Category),
		MaxPrice:   in.MaxPrice,
		Search:     strings.TrimSpace(in.Search),
		Ordering:   in.Ordering,
	})
	if err != nil {
		return MenuItemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]MenuItemResponse, 0, len(items))
	for _, m := range items {
		respItems = append(respItems, u.toMenuItemResponse(ctx, m))
	}

	return MenuItemListOutput{
		Total:   total,
		Page:    in.Page,
		PerPage: in.PerPage,
		Items:   respItems,
	}, nil
}

func (u *MenuUsecase) GetMenuItem(ctx context.Context, actor policy.Identity, id int64) (MenuItemResponse, error) {
	if !policy.Can(actor, policy.ActionMenuRead) {
		return MenuItemResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if id <= 0 {
		return MenuItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	m, err := u.menuRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return MenuItemResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return MenuItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.toMenuItemResponse(ctx, m), nil
}

type MenuItemInput struct {
	Title      string
	Price      float64
	Inventory  int64
	CategoryID int64
}

func (u *MenuUsecase) validateMenuItemInput(ctx context.Context, in MenuItemInput, selfID int64) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.Inventory < 0 {
		return NewHTTPError(http.StatusBadRequest, "inventory must be >= 0")
	}

	// titleはユニーク
	existing, err := u.menuRepo.FindByTitle(ctx, strings.TrimSpace(in.Title))
	if err == nil && existing.ID != selfID {
		return NewHTTPError(http.StatusBadRequest, "title already exists")
	}
	if err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// カテゴリの存在確認
	if _, err := u.categoryRepo.FindByID(ctx, in.CategoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "invalid category_id")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MenuUsecase) CreateMenuItem(ctx context.Context, actor policy.Identity, in MenuItemInput) (MenuItemResponse, error) {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return MenuItemResponse{}, NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if err := u.validateMenuItemInput(ctx, in, 0); err != nil {
		return MenuItemResponse{}, err
	}

	m, err := u.menuRepo.Create(ctx, model.MenuItem{
		Title:      strings.TrimSpace(in.Title),
		Price:      model.Round2(in.Price),
		Inventory:  in.Inventory,
		CategoryID: in.CategoryID,
	})
	if err != nil {
		return MenuItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.toMenuItemResponse(ctx, m), nil
}

func (u *MenuUsecase) UpdateMenuItem(ctx context.Context, actor policy.Identity, id int64, in MenuItemInput) (MenuItemResponse, error) {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return MenuItemResponse{}, NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if id <= 0 {
		return MenuItemResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validateMenuItemInput(ctx, in, id); err != nil {
		return MenuItemResponse{}, err
	}

	err := u.menuRepo.Update(ctx, model.MenuItem{
		ID:         id,
		Title:      strings.TrimSpace(in.Title),
		Price:      model.Round2(in.Price),
		Inventory:  in.Inventory,
		CategoryID: in.CategoryID,
	})
	if err == repo.ErrNotFound {
		return MenuItemResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return MenuItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	m, err := u.menuRepo.FindByID(ctx, id)
	if err != nil {
		return MenuItemResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.toMenuItemResponse(ctx, m), nil
}

func (u *MenuUsecase) DeleteMenuItem(ctx context.Context, actor policy.Identity, id int64) error {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.menuRepo.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// =====================
// Categories
// =====================

type CategoryInput struct {
	Slug  string
	Title string
}

func (u *MenuUsecase) ListCategories(ctx context.Context, actor policy.Identity) ([]model.Category, error) {
	if !policy.Can(actor, policy.ActionMenuRead) {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	cats, err := u.categoryRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func (u *MenuUsecase) GetCategory(ctx context.Context, actor policy.Identity, id int64) (model.Category, error) {
	if !policy.Can(actor, policy.ActionMenuRead) {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	c, err := u.categoryRepo.FindByID(ctx, id)
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MenuUsecase) validateCategoryInput(ctx context.Context, in CategoryInput, selfID int64) error {
	if strings.TrimSpace(in.Title) == "" {
		return NewHTTPError(http.StatusBadRequest, "title required")
	}
	if !model.IsValidSlug(in.Slug) {
		return NewHTTPError(http.StatusBadRequest, "invalid slug")
	}

	existing, err := u.categoryRepo.FindBySlug(ctx, in.Slug)
	if err == nil && existing.ID != selfID {
		return NewHTTPError(http.StatusBadRequest, "slug already exists")
	}
	if err != nil && err != repo.ErrNotFound {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MenuUsecase) CreateCategory(ctx context.Context, actor policy.Identity, in CategoryInput) (model.Category, error) {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if err := u.validateCategoryInput(ctx, in, 0); err != nil {
		return model.Category{}, err
	}

	c, err := u.categoryRepo.Create(ctx, model.Category{
		Slug:  in.Slug,
		Title: strings.TrimSpace(in.Title),
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *MenuUsecase) UpdateCategory(ctx context.Context, actor policy.Identity, id int64, in CategoryInput) (model.Category, error) {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if id <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := u.validateCategoryInput(ctx, in, id); err != nil {
		return model.Category{}, err
	}

	err := u.categoryRepo.Update(ctx, model.Category{
		ID:    id,
		Slug:  in.Slug,
		Title: strings.TrimSpace(in.Title),
	})
	if err == repo.ErrNotFound {
		return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return model.Category{ID: id, Slug: in.Slug, Title: strings.TrimSpace(in.Title)}, nil
}

// 参照されているカテゴリは消せない（宙ぶらりんのメニューを作らない）
func (u *MenuUsecase) DeleteCategory(ctx context.Context, actor policy.Identity, id int64) error {
	if !policy.Can(actor, policy.ActionMenuWrite) {
		return NewHTTPError(http.StatusForbidden, "only managers can perform this action")
	}
	if id <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	count, err := u.categoryRepo.CountMenuItems(ctx, id)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if count > 0 {
		return NewHTTPError(http.StatusBadRequest, "category still has menu items")
	}

	err = u.categoryRepo.Delete(ctx, id)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *MenuUsecase) toMenuItemResponse(ctx context.Context, m model.MenuItem) MenuItemResponse {
	resp := MenuItemResponse{
		ID:            m.ID,
		Title:         m.Title,
		Price:         m.Price,
		Inventory:     m.Inventory,
		PriceAfterTax: m.PriceAfterTax(u.taxRate),
		CategoryID:    m.CategoryID,
	}

	if c, err := u.categoryRepo.FindByID(ctx, m.CategoryID); err == nil {
		resp.Category = &c
	}

	return resp
}
