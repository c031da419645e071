package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
)

func TestMenuItems_RequireAuth(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/menu-items", "", nil)
	requireStatus(t, resp, http.StatusUnauthorized, body)
}

func TestMenuItems_ListWithDefaultPagination(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	_, token := registerAndLogin(t, c, ctx)

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/menu-items", token, nil)
	requireStatus(t, resp, http.StatusOK, body)

	var out MenuListResponse
	mustDecode(t, body, &out)

	if out.Page != 1 {
		t.Fatalf("page=%d want=1", out.Page)
	}
	if out.PerPage != 5 {
		t.Fatalf("per_page=%d want=5", out.PerPage)
	}
	if len(out.Items) > 5 {
		t.Fatalf("items=%d exceeds per_page", len(out.Items))
	}
}

func TestMenuItems_InvalidOrderingRejected(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	_, token := registerAndLogin(t, c, ctx)

	resp, body := c.doJSON(ctx, t, http.MethodGet, "/menu-items?ordering=name", token, nil)
	requireStatus(t, resp, http.StatusBadRequest, body)
}

func TestMenuItems_CustomerCannotCreate(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	_, token := registerAndLogin(t, c, ctx)

	b, _ := json.Marshal(map[string]interface{}{
		"title": "Hacked Dish", "price": 1.00, "inventory": 1, "category_id": 1,
	})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/menu-items", token, b)
	requireStatus(t, resp, http.StatusForbidden, body)
}

func TestMenuItems_ManagerCRUD(t *testing.T) {
	c := NewTestClient(t)
	ctx := context.Background()

	token := managerLogin(t, c, ctx)

	// カテゴリ作成
	b, _ := json.Marshal(map[string]string{"slug": "e2e-mains", "title": "E2E Mains"})
	resp, body := c.doJSON(ctx, t, http.MethodPost, "/categories", token, b)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("category create status=%d body=%s", resp.StatusCode, string(body))
	}

	var category struct {
		ID int64 `json:"id"`
	}
	if resp.StatusCode == http.StatusCreated {
		mustDecode(t, body, &category)
	} else {
		// 既存slugなら一覧から拾う
		resp, body = c.doJSON(ctx, t, http.MethodGet, "/categories", token, nil)
		requireStatus(t, resp, http.StatusOK, body)
		var cats []struct {
			ID   int64  `json:"id"`
			Slug string `json:"slug"`
		}
		mustDecode(t, body, &cats)
		for _, cat := range cats {
			if cat.Slug == "e2e-mains" {
				category.ID = cat.ID
			}
		}
	}
	if category.ID == 0 {
		t.Fatalf("category id not resolved")
	}

	// メニュー作成 → 税込価格の確認
	b, _ = json.Marshal(map[string]interface{}{
		"title": "E2E Margherita", "price": 8.50, "inventory": 20, "category_id": category.ID,
	})
	resp, body = c.doJSON(ctx, t, http.MethodPost, "/menu-items", token, b)
	requireStatus(t, resp, http.StatusCreated, body)

	var item MenuItemDTO
	mustDecode(t, body, &item)
	if item.PriceAfterTax != 9.35 {
		t.Fatalf("price_after_tax=%v want=9.35", item.PriceAfterTax)
	}

	// 参照中のカテゴリは消せない
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/categories/"+itoa(category.ID), token, nil)
	requireStatus(t, resp, http.StatusBadRequest, body)

	// メニュー削除
	resp, body = c.doJSON(ctx, t, http.MethodDelete, "/menu-items/"+itoa(item.ID), token, nil)
	requireStatus(t, resp, http.StatusOK, body)

	// 消えたものは404
	resp, body = c.doJSON(ctx, t, http.MethodGet, "/menu-items/"+itoa(item.ID), token, nil)
	requireStatus(t, resp, http.StatusNotFound, body)
}
