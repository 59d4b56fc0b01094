package gormstore

import (
	"time"

	"gorm.io/gorm"
)

// User represents the users table. Balance is maintained transactionally by
// purchase and repayment writes, never set directly.
type User struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null;index"`
	Email     string    `gorm:"not null;uniqueIndex"`
	Balance   float64   `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
}

func (User) TableName() string { return "users" }

// DrinkType represents the drink_types table. Name uniqueness is enforced by
// the service's check-then-insert, not by a storage constraint.
type DrinkType struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"not null;index"`
	Brand     string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (DrinkType) TableName() string { return "drink_types" }

// Order represents the orders table, one row per bulk stocking event.
type Order struct {
	ID        int64     `gorm:"primaryKey"`
	OrdererID int64     `gorm:"not null;index"`
	TotalCost float64   `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

// StockBatch represents the stock_batches table. DateAdded is the FIFO
// ordering key for purchase consumption.
type StockBatch struct {
	ID           int64     `gorm:"primaryKey"`
	OrderID      int64     `gorm:"not null;index"`
	DrinkTypeID  int64     `gorm:"not null;index:idx_batches_drink_added,priority:1"`
	CostPerItem  float64   `gorm:"not null"`
	InitialQty   int       `gorm:"not null"`
	RemainingQty int       `gorm:"not null"`
	DateAdded    time.Time `gorm:"not null;index:idx_batches_drink_added,priority:2"`
}

func (StockBatch) TableName() string { return "stock_batches" }

// Purchase represents the drink_purchases table. Cost and ChargedToID are
// copies of the batch's per-item cost and orderer at purchase time.
type Purchase struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"not null;index"`
	BatchID     int64     `gorm:"not null;index"`
	Cost        float64   `gorm:"not null"`
	ChargedToID int64     `gorm:"not null;index"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

func (Purchase) TableName() string { return "drink_purchases" }

// Repayment represents the repayments table.
type Repayment struct {
	ID         int64     `gorm:"primaryKey"`
	PayerID    int64     `gorm:"not null;index"`
	ReceiverID int64     `gorm:"not null;index"`
	Amount     float64   `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}

func (Repayment) TableName() string { return "repayments" }

// Migrate creates any missing tables and indexes. Safe to call on every
// startup.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &DrinkType{}, &Order{}, &StockBatch{}, &Purchase{}, &Repayment{})
}
