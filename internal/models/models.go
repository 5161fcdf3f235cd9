package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null"     json:"username"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	IsAdmin      bool      `gorm:"not null;default:false"   json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	Name        string          `gorm:"not null"                    json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Stock       int             `gorm:"not null;check:stock >= 0"   json:"stock"`
	Category    string          `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

const OrderStatusPending = "pending"

type Order struct {
	ID          uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	UserID      uint            `gorm:"index;not null"              json:"user_id"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Status      string          `gorm:"not null;default:pending"    json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"    json:"id"`
	OrderID    uint            `gorm:"index;not null"              json:"order_id"`
	ProductID  uint            `gorm:"not null"                    json:"product_id"`
	Quantity   int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
}

// RefreshToken keeps the sha256 of an issued refresh token so it can be
// revoked on logout or rotation. The raw token never touches the DB.
type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"-"`
	JTI       string `gorm:"index;not null"  json:"jti"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
