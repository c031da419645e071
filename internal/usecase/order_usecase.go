package usecase

import (
	"context"
	"net/http"
	"time"

	"app/internal/domain/model"
	"app/internal/policy"
	repo "app/internal/repository"
)

type OrderUsecase struct {
	tx repo.TransactionManager
}

func NewOrderUsecase(tx repo.TransactionManager) *OrderUsecase {
	return &OrderUsecase{tx: tx}
}

type OrderItemOutput struct {
	MenuItemID int64   `json:"menu_item_id"`
	Title      string  `json:"title"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Price      float64 `json:"price"`
}

type OrderOutput struct {
	ID             int64             `json:"id"`
	UserID         int64             `json:"user_id"`
	DeliveryCrewID *int64            `json:"delivery_crew_id"`
	Status         string            `json:"status"`
	Total          float64           `json:"total"`
	Date           time.Time         `json:"date"`
	Items          []OrderItemOutput `json:"items"`
}

type OrderListOutput struct {
	Total   int64         `json:"total"`
	Page    int           `json:"page"`
	PerPage int           `json:"per_page"`
	Items   []OrderOutput `json:"items"`
}

type ListOrdersInput struct {
	Page     int
	PerPage  int
	Status   string
	Search   string
	Ordering string
}

type UpdateOrderInput struct {
	DeliveryCrewID *int64
	Status         *string
}

// カートから注文を作る。読み取り・作成・カートのクリアを1トランザクションで行う
func (u *OrderUsecase) PlaceOrder(ctx context.Context, actor policy.Identity) (OrderOutput, error) {
	if !policy.Can(actor, policy.ActionOrderCreate) {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "only customers can create orders")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindByUserID(ctx, actor.UserID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		cartItems, err := r.CartItems().ListByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(cartItems) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cannot create order from empty cart")
		}

		// 明細スナップショットと合計
		orderItems := make([]model.OrderItem, 0, len(cartItems))
		var total float64

		for _, ci := range cartItems {
			title := ""
			if m, err := r.MenuItems().FindByID(ctx, ci.MenuItemID); err == nil {
				title = m.Title
			}

			orderItems = append(orderItems, model.OrderItem{
				MenuItemID: ci.MenuItemID,
				Title:      title,
				Quantity:   ci.Quantity,
				UnitPrice:  ci.UnitPrice,
				Price:      ci.Price,
			})

			total += ci.Price
		}
		total = model.Round2(total)

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID: actor.UserID,
			Status: model.OrderStatusPending,
			Total:  total,
			Date:   now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 注文確定と同時にカートを空にする
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:     orderID,
			UserID: actor.UserID,
			Status: model.OrderStatusPending,
			Total:  total,
			Date:   now,
		}
		out = toOrderOutput(created, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// 役割ごとの可視範囲を先に適用してから一覧
func (u *OrderUsecase) ListOrders(ctx context.Context, actor policy.Identity, in ListOrdersInput) (OrderListOutput, error) {
	if !policy.Can(actor, policy.ActionOrderRead) {
		return OrderListOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if in.Page < 1 {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.PerPage < 1 || in.PerPage > MaxPerPage {
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid per_page")
	}

	var status *model.OrderStatus
	switch in.Status {
	case "":
	case string(model.OrderStatusPending), string(model.OrderStatusDelivered):
		s := model.OrderStatus(in.Status)
		status = &s
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status value")
	}

	switch in.Ordering {
	case "", "date", "-date", "total", "-total":
	default:
		return OrderListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid ordering field")
	}

	scope := policy.OrderScope(actor)

	var out OrderListOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, total, err := r.Orders().List(ctx, repo.OrderListFilter{
			Page:           in.Page,
			PerPage:        in.PerPage,
			Status:         status,
			Search:         in.Search,
			Ordering:       in.Ordering,
			UserID:         scope.UserID,
			DeliveryCrewID: scope.DeliveryCrewID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			lines, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, toOrderOutput(o, lines))
		}

		out = OrderListOutput{
			Total:   total,
			Page:    in.Page,
			PerPage: in.PerPage,
			Items:   items,
		}
		return nil
	})

	if err != nil {
		return OrderListOutput{}, err
	}
	return out, nil
}

// 見えない注文は「存在しない扱い」（404）
func (u *OrderUsecase) GetOrder(ctx context.Context, actor policy.Identity, orderID int64) (OrderOutput, error) {
	if !policy.Can(actor, policy.ActionOrderRead) {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !policy.CanSeeOrder(actor, o) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// マネージャ：配達員割り当て＋ステータス / 配達員：自分に割り当てられた注文のステータスのみ
func (u *OrderUsecase) UpdateOrder(ctx context.Context, actor policy.Identity, orderID int64, in UpdateOrderInput) (OrderOutput, error) {
	if !policy.Can(actor, policy.ActionOrderUpdate) {
		return OrderOutput{}, NewHTTPError(http.StatusForbidden, "customers cannot update orders")
	}
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var newStatus *model.OrderStatus
	if in.Status != nil {
		switch *in.Status {
		case string(model.OrderStatusPending), string(model.OrderStatusDelivered):
			s := model.OrderStatus(*in.Status)
			newStatus = &s
		default:
			return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status value")
		}
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if actor.Role == model.RoleDeliveryCrew {
			// 自分に割り当てられていない注文は見えない扱い
			if o.DeliveryCrewID == nil || *o.DeliveryCrewID != actor.UserID {
				return NewHTTPError(http.StatusForbidden, "you can only update orders assigned to you")
			}
			// 配達員が触れるのはステータスだけ
			if in.DeliveryCrewID != nil {
				return NewHTTPError(http.StatusForbidden, "delivery crew cannot change assignment")
			}
		}

		if in.DeliveryCrewID != nil {
			crew, err := r.Users().FindByID(ctx, *in.DeliveryCrewID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "user not found")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if crew.Role != model.RoleDeliveryCrew {
				return NewHTTPError(http.StatusBadRequest, "user is not in delivery crew")
			}

			if err := r.Orders().UpdateDeliveryCrew(ctx, orderID, crew.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			o.DeliveryCrewID = &crew.ID
		}

		if newStatus != nil {
			// 一方向のみ。同じ値への更新は何もしない
			if !model.CanTransitOrderStatus(o.Status, *newStatus) {
				return NewHTTPError(http.StatusBadRequest, "invalid status transition")
			}
			if o.Status != *newStatus {
				if err := r.Orders().UpdateStatus(ctx, orderID, *newStatus); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				o.Status = *newStatus
			}
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *OrderUsecase) DeleteOrder(ctx context.Context, actor policy.Identity, orderID int64) error {
	if !policy.Can(actor, policy.ActionOrderDelete) {
		return NewHTTPError(http.StatusForbidden, "only managers can delete orders")
	}
	if orderID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		err := r.Orders().Delete(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			MenuItemID: it.MenuItemID,
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			Price:      it.Price,
		})
	}

	return OrderOutput{
		ID:             o.ID,
		UserID:         o.UserID,
		DeliveryCrewID: o.DeliveryCrewID,
		Status:         string(o.Status),
		Total:          o.Total,
		Date:           o.Date,
		Items:          outItems,
	}
}
