package usecase

import (
	"context"
	"net/http"

	"app/internal/domain/model"
	"app/internal/policy"
	repo "app/internal/repository"
)

// /cart/menu-items の業務ロジック。カートは顧客の概念
type CartUsecase struct {
	cartRepo     repo.CartRepository
	cartItemRepo repo.CartItemRepository
	menuRepo     repo.MenuItemRepository
}

func NewCartUsecase(
	cartRepo repo.CartRepository,
	cartItemRepo repo.CartItemRepository,
	menuRepo repo.MenuItemRepository,
) *CartUsecase {
	return &CartUsecase{
		cartRepo:     cartRepo,
		cartItemRepo: cartItemRepo,
		menuRepo:     menuRepo,
	}
}

// priceは追加時点の単価×数量
type CartItemResponse struct {
	ID         int64   `json:"id"`
	MenuItemID int64   `json:"menu_item_id"`
	Title      string  `json:"title"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Price      float64 `json:"price"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type AddCartItemInput struct {
	MenuItemID int64
	Quantity   int64
}

// カート取得（無ければ作って空を返す）
func (u *CartUsecase) GetCart(ctx context.Context, actor policy.Identity) (CartResponse, error) {
	if !policy.Can(actor, policy.ActionCartRead) {
		return CartResponse{}, NewHTTPError(http.StatusForbidden, "only customers can access cart")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, actor.UserID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// カートに追加（同一商品は数量加算）
func (u *CartUsecase) AddItem(ctx context.Context, actor policy.Identity, in AddCartItemInput) (CartResponse, error) {
	if !policy.Can(actor, policy.ActionCartWrite) {
		return CartResponse{}, NewHTTPError(http.StatusForbidden, "only customers can access cart")
	}
	if in.MenuItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "menu_item_id is required")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "quantity must be a positive integer")
	}

	// 商品チェック
	m, err := u.menuRepo.FindByID(ctx, in.MenuItemID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "menu item not found")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.GetOrCreateByUserID(ctx, actor.UserID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// Upsert（同一商品は加算、単価は追加時点の価格）
	if err := u.cartItemRepo.UpsertByCartAndMenuItem(ctx, cart.ID, in.MenuItemID, in.Quantity, m.Price); err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildCartResponse(ctx, cart.ID)
}

// 明細削除（他人の明細は存在しない扱い）
func (u *CartUsecase) RemoveItem(ctx context.Context, actor policy.Identity, cartItemID int64) (CartResponse, error) {
	if !policy.Can(actor, policy.ActionCartWrite) {
		return CartResponse{}, NewHTTPError(http.StatusForbidden, "only customers can access cart")
	}
	if cartItemID <= 0 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.cartItemRepo.IsOwnedByUser(ctx, cartItemID, actor.UserID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	if err := u.cartItemRepo.DeleteByID(ctx, cartItemID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.buildCartResponse(ctx, cart.ID)
}

// 全明細削除。空カートでも成功（冪等）
func (u *CartUsecase) ClearCart(ctx context.Context, actor policy.Identity) error {
	if !policy.Can(actor, policy.ActionCartWrite) {
		return NewHTTPError(http.StatusForbidden, "only customers can access cart")
	}

	cart, err := u.cartRepo.FindByUserID(ctx, actor.UserID)
	if err == repo.ErrNotFound {
		// カート自体が無ければ消すものも無い
		return nil
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.cartRepo.Clear(ctx, cart.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// cartIDの明細をまとめてCartResponseを作る
func (u *CartUsecase) buildCartResponse(ctx context.Context, cartID int64) (CartResponse, error) {
	items, err := u.cartItemRepo.ListByCartID(ctx, cartID)
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	respItems := make([]CartItemResponse, 0, len(items))
	var total float64

	for _, it := range items {
		title := ""
		if m, err := u.menuRepo.FindByID(ctx, it.MenuItemID); err == nil {
			title = m.Title
		}

		respItems = append(respItems, CartItemResponse{
			ID:         it.ID,
			MenuItemID: it.MenuItemID,
			Title:      title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price,
		})

		total += it.Price
	}

	return CartResponse{Items: respItems, Total: model.Round2(total)}, nil
}
