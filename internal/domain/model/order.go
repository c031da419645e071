package model

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// 遷移は PENDING→DELIVERED の一方向のみ
func CanTransitOrderStatus(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	return from == OrderStatusPending && to == OrderStatusDelivered
}

// totalは作成時に確定し、以後再計算しない
type Order struct {
	ID             int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID         int64       `gorm:"not null;index" json:"user_id"`
	DeliveryCrewID *int64      `gorm:"index" json:"delivery_crew_id"`
	Status         OrderStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Total          float64     `gorm:"type:numeric(10,2);not null" json:"total"`
	Date           time.Time   `gorm:"not null;autoCreateTime" json:"date"`
}
