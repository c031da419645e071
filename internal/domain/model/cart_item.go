package model

import "time"

// カートの明細。(cart, menu_item) は1行のみで、同じ商品の追加は数量加算
// unit_price は追加時点の価格を必ず保存
type CartItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID     int64     `gorm:"not null;uniqueIndex:idx_cart_menu_item;index" json:"cart_id"`
	MenuItemID int64     `gorm:"not null;uniqueIndex:idx_cart_menu_item;index" json:"menu_item_id"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	UnitPrice  float64   `gorm:"type:numeric(8,2);not null" json:"unit_price"`
	Price      float64   `gorm:"type:numeric(8,2);not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
