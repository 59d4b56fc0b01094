package prost

import (
	"context"
	"time"
)

// User is a ledger participant. Balance is a running signed total maintained
// alongside every purchase and repayment: negative means the user owes money,
// positive means money is owed to them.
type User struct {
	ID      int64
	Name    string
	Email   string
	Balance float64
}

// IsInDebt reports whether the user owes money.
func (user User) IsInDebt() bool {
	return user.Balance < 0
}

// IsOwed reports whether money is owed to the user.
func (user User) IsOwed() bool {
	return user.Balance > 0
}

// DrinkType is a catalog entry. Name acts as the application-level uniqueness
// key; brand is free text.
type DrinkType struct {
	ID    int64
	Name  string
	Brand string
}

// Order records one bulk stocking event financed by a single user.
type Order struct {
	ID        int64
	OrdererID int64
	TotalCost float64
	CreatedAt time.Time
}

// StockBatch is a pool of identically priced items added by one order.
// RemainingQty only ever decreases, one unit per purchase drawn from it.
type StockBatch struct {
	ID           int64
	OrderID      int64
	DrinkTypeID  int64
	CostPerItem  float64
	InitialQty   int
	RemainingQty int
	DateAdded    time.Time
}

// Purchase is one consumed item. Cost and ChargedToID are snapshots taken from
// the batch at purchase time and never change afterwards.
type Purchase struct {
	ID          int64
	UserID      int64
	BatchID     int64
	Cost        float64
	ChargedToID int64
	CreatedAt   time.Time
}

// Repayment is a direct transfer between two users.
type Repayment struct {
	ID         int64
	PayerID    int64
	ReceiverID int64
	Amount     float64
	CreatedAt  time.Time
}

// StockItem describes one line of a stock order.
type StockItem struct {
	DrinkTypeID int64
	CostPerItem float64
	Quantity    int
}

// PurchaseRecord is the flat read model consumed by the display.
type PurchaseRecord struct {
	UserName    string
	DrinkName   string
	Cost        float64
	Timestamp   time.Time
	OrdererName string
}

// StockLevel reports remaining quantity per drink type across all batches.
type StockLevel struct {
	DrinkName      string
	Brand          string
	TotalRemaining int
}

// DebtSummary aggregates purchase cost owed by one user to another.
type DebtSummary struct {
	DebtorName   string
	CreditorName string
	AmountOwed   float64
}

// Store is the persistence contract used by Service. Implementations map
// storage-level misses to the domain not-found sentinels.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	UserByEmail(ctx context.Context, email string) (User, error)
	UserByName(ctx context.Context, name string) (User, error)
	UserByID(ctx context.Context, userID int64) (User, error)
	CreateUser(ctx context.Context, name string, email string) (int64, error)
	ListUsers(ctx context.Context) ([]User, error)

	DrinkTypeByName(ctx context.Context, name string) (DrinkType, error)
	DrinkTypeByID(ctx context.Context, drinkTypeID int64) (DrinkType, error)
	CreateDrinkType(ctx context.Context, name string, brand string) (int64, error)
	ListDrinkTypes(ctx context.Context) ([]DrinkType, error)

	CreateOrder(ctx context.Context, ordererID int64, totalCost float64, createdAt time.Time) (int64, error)
	OrderByID(ctx context.Context, orderID int64) (Order, error)
	CreateStockBatch(ctx context.Context, batch StockBatch) (int64, error)
	OldestOpenBatch(ctx context.Context, drinkTypeID int64) (StockBatch, error)
	DecrementBatch(ctx context.Context, batchID int64) error

	AdjustBalance(ctx context.Context, userID int64, delta float64) error
	CreatePurchase(ctx context.Context, purchase Purchase) (int64, error)
	CreateRepayment(ctx context.Context, repayment Repayment) (int64, error)

	RecentPurchases(ctx context.Context, limit int) ([]PurchaseRecord, error)
	StockStatus(ctx context.Context) ([]StockLevel, error)
	UserDebts(ctx context.Context) ([]DebtSummary, error)
}
