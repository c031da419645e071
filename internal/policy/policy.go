// Package policy は「誰が何をできるか」を1箇所で判定する。
// handler/middlewareに散らさず、usecaseから必ずここを通す。
package policy

import "app/internal/domain/model"

// 認証済みの呼び出し元
type Identity struct {
	UserID int64
	Role   model.Role
}

type Action string

const (
	ActionMenuRead    Action = "menu:read"
	ActionMenuWrite   Action = "menu:write"
	ActionCartRead    Action = "cart:read"
	ActionCartWrite   Action = "cart:write"
	ActionOrderCreate Action = "order:create"
	ActionOrderRead   Action = "order:read"
	ActionOrderUpdate Action = "order:update"
	ActionOrderDelete Action = "order:delete"
	ActionGroupManage Action = "group:manage"
)

// Can は許可/拒否だけを返す。注文の見える範囲は OrderScope で別途絞る。
func Can(id Identity, a Action) bool {
	switch a {
	case ActionMenuRead, ActionOrderRead:
		// 認証済みなら誰でも
		return id.UserID > 0
	case ActionMenuWrite, ActionOrderDelete, ActionGroupManage:
		return id.Role == model.RoleManager
	case ActionCartRead, ActionCartWrite, ActionOrderCreate:
		// カートと注文作成は顧客の概念
		return id.Role == model.RoleCustomer && id.UserID > 0
	case ActionOrderUpdate:
		return id.Role == model.RoleManager || id.Role == model.RoleDeliveryCrew
	default:
		return false
	}
}

// 注文一覧の可視範囲
type OrderVisibility struct {
	All            bool
	UserID         *int64
	DeliveryCrewID *int64
}

// OrderScope は役割ごとの可視フィルタを返す。
// 顧客：自分の注文のみ / 配達員：自分に割り当てられた注文のみ / マネージャ：全件
func OrderScope(id Identity) OrderVisibility {
	switch id.Role {
	case model.RoleManager:
		return OrderVisibility{All: true}
	case model.RoleDeliveryCrew:
		crewID := id.UserID
		return OrderVisibility{DeliveryCrewID: &crewID}
	default:
		userID := id.UserID
		return OrderVisibility{UserID: &userID}
	}
}

// CanSeeOrder は注文1件が呼び出し元から見えるかどうか。
// 見えない注文は「存在しない扱い」（404）にする。
func CanSeeOrder(id Identity, o model.Order) bool {
	switch id.Role {
	case model.RoleManager:
		return true
	case model.RoleDeliveryCrew:
		return o.DeliveryCrewID != nil && *o.DeliveryCrewID == id.UserID
	default:
		return o.UserID == id.UserID
	}
}
