package model

import (
	"math"
	"time"
)

type MenuItem struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"title"`
	Price      float64   `gorm:"type:numeric(8,2);not null" json:"price"`
	Inventory  int64     `gorm:"not null" json:"inventory"`
	CategoryID int64     `gorm:"not null;index" json:"category_id"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 税率を掛けた表示用価格。税率は設定値（呼び出し側で注入）
func (m MenuItem) PriceAfterTax(taxRate float64) float64 {
	return Round2(m.Price * (1 + taxRate))
}

// 金額は小数2桁で丸める
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
