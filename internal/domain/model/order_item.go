package model

import "time"

// 注文明細。作成後は不変で、タイトル・単価はカート確定時点のスナップショット
type OrderItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID    int64     `gorm:"not null;index" json:"order_id"`
	MenuItemID int64     `gorm:"not null;index" json:"menu_item_id"`
	Title      string    `gorm:"type:varchar(255);not null" json:"title"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	UnitPrice  float64   `gorm:"type:numeric(8,2);not null" json:"unit_price"`
	Price      float64   `gorm:"type:numeric(8,2);not null" json:"price"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
