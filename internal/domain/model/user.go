package model

import "time"

type Role string

const (
	RoleCustomer     Role = "CUSTOMER"
	RoleManager      Role = "MANAGER"
	RoleDeliveryCrew Role = "DELIVERY_CREW"
)

// グループ所属は role カラム1つで表す（MANAGER / DELIVERY_CREW / 既定はCUSTOMER）
type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(20);not null;default:'CUSTOMER'" json:"role"`
	CreatedAt    time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
