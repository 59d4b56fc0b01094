package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/MarkoPoloResearchLab/prost/pkg/prost"
	"gorm.io/gorm"
)

const (
	errorOperationStore  = "store"
	errorSubjectUser     = "user"
	errorSubjectDrink    = "drink_type"
	errorSubjectOrder    = "order"
	errorSubjectBatch    = "batch"
	errorSubjectPurchase = "purchase"
	errorSubjectPayment  = "repayment"
	errorSubjectBalance  = "balance"
	errorSubjectReport   = "report"
	errorCodeCreate      = "create"
	errorCodeDecrement   = "decrement"
	errorCodeGet         = "get"
	errorCodeList        = "list"
	errorCodeLookup      = "lookup"
	errorCodeUpdate      = "update"
)

// Store implements prost.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore prost.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) UserByEmail(ctx context.Context, email string) (prost.User, error) {
	var model User
	err := store.db.WithContext(ctx).Where("email = ?", email).Take(&model).Error
	if err != nil {
		return prost.User{}, userLookupError(err)
	}
	return mapUser(model), nil
}

func (store *Store) UserByName(ctx context.Context, name string) (prost.User, error) {
	var model User
	// Names are not unique; the first match by storage order wins.
	err := store.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").Take(&model).Error
	if err != nil {
		return prost.User{}, userLookupError(err)
	}
	return mapUser(model), nil
}

func (store *Store) UserByID(ctx context.Context, userID int64) (prost.User, error) {
	var model User
	err := store.db.WithContext(ctx).Where("id = ?", userID).Take(&model).Error
	if err != nil {
		return prost.User{}, userLookupError(err)
	}
	return mapUser(model), nil
}

func (store *Store) CreateUser(ctx context.Context, name string, email string) (int64, error) {
	model := User{Name: name, Email: email}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectUser, errorCodeCreate, err)
	}
	return model.ID, nil
}

func (store *Store) ListUsers(ctx context.Context) ([]prost.User, error) {
	var models []User
	err := store.db.WithContext(ctx).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectUser, errorCodeList, err)
	}
	users := make([]prost.User, 0, len(models))
	for _, model := range models {
		users = append(users, mapUser(model))
	}
	return users, nil
}

func (store *Store) DrinkTypeByName(ctx context.Context, name string) (prost.DrinkType, error) {
	var model DrinkType
	err := store.db.WithContext(ctx).Where("name = ?", name).Order("id ASC").Take(&model).Error
	if err != nil {
		return prost.DrinkType{}, drinkLookupError(err)
	}
	return mapDrinkType(model), nil
}

func (store *Store) DrinkTypeByID(ctx context.Context, drinkTypeID int64) (prost.DrinkType, error) {
	var model DrinkType
	err := store.db.WithContext(ctx).Where("id = ?", drinkTypeID).Take(&model).Error
	if err != nil {
		return prost.DrinkType{}, drinkLookupError(err)
	}
	return mapDrinkType(model), nil
}

func (store *Store) CreateDrinkType(ctx context.Context, name string, brand string) (int64, error) {
	model := DrinkType{Name: name, Brand: brand}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectDrink, errorCodeCreate, err)
	}
	return model.ID, nil
}

func (store *Store) ListDrinkTypes(ctx context.Context) ([]prost.DrinkType, error) {
	var models []DrinkType
	err := store.db.WithContext(ctx).Order("id ASC").Find(&models).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectDrink, errorCodeList, err)
	}
	drinkTypes := make([]prost.DrinkType, 0, len(models))
	for _, model := range models {
		drinkTypes = append(drinkTypes, mapDrinkType(model))
	}
	return drinkTypes, nil
}

func (store *Store) CreateOrder(ctx context.Context, ordererID int64, totalCost float64, createdAt time.Time) (int64, error) {
	model := Order{OrdererID: ordererID, TotalCost: totalCost, CreatedAt: createdAt}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectOrder, errorCodeCreate, err)
	}
	return model.ID, nil
}

func (store *Store) OrderByID(ctx context.Context, orderID int64) (prost.Order, error) {
	var model Order
	err := store.db.WithContext(ctx).Where("id = ?", orderID).Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prost.Order{}, wrapStoreError(errorSubjectOrder, errorCodeGet, prost.ErrOrderNotFound)
		}
		return prost.Order{}, wrapStoreError(errorSubjectOrder, errorCodeGet, err)
	}
	return prost.Order{
		ID:        model.ID,
		OrdererID: model.OrdererID,
		TotalCost: model.TotalCost,
		CreatedAt: model.CreatedAt,
	}, nil
}

func (store *Store) CreateStockBatch(ctx context.Context, batch prost.StockBatch) (int64, error) {
	model := StockBatch{
		OrderID:      batch.OrderID,
		DrinkTypeID:  batch.DrinkTypeID,
		CostPerItem:  batch.CostPerItem,
		InitialQty:   batch.InitialQty,
		RemainingQty: batch.RemainingQty,
		DateAdded:    batch.DateAdded,
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectBatch, errorCodeCreate, err)
	}
	return model.ID, nil
}

// OldestOpenBatch selects the batch purchases draw from: the earliest
// date_added with remaining quantity, id as the tie-break.
func (store *Store) OldestOpenBatch(ctx context.Context, drinkTypeID int64) (prost.StockBatch, error) {
	var model StockBatch
	err := store.db.WithContext(ctx).
		Where("drink_type_id = ? AND remaining_qty > 0", drinkTypeID).
		Order("date_added ASC, id ASC").
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prost.StockBatch{}, wrapStoreError(errorSubjectBatch, errorCodeGet, prost.ErrOutOfStock)
		}
		return prost.StockBatch{}, wrapStoreError(errorSubjectBatch, errorCodeGet, err)
	}
	return prost.StockBatch{
		ID:           model.ID,
		OrderID:      model.OrderID,
		DrinkTypeID:  model.DrinkTypeID,
		CostPerItem:  model.CostPerItem,
		InitialQty:   model.InitialQty,
		RemainingQty: model.RemainingQty,
		DateAdded:    model.DateAdded,
	}, nil
}

// DecrementBatch takes exactly one unit off a batch. The remaining_qty guard
// keeps the quantity from ever going below zero.
func (store *Store) DecrementBatch(ctx context.Context, batchID int64) error {
	result := store.db.WithContext(ctx).
		Model(&StockBatch{}).
		Where("id = ? AND remaining_qty > 0", batchID).
		UpdateColumn("remaining_qty", gorm.Expr("remaining_qty - 1"))
	if result.Error != nil {
		return wrapStoreError(errorSubjectBatch, errorCodeDecrement, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectBatch, errorCodeDecrement, prost.ErrOutOfStock)
	}
	return nil
}

func (store *Store) AdjustBalance(ctx context.Context, userID int64, delta float64) error {
	result := store.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID).
		UpdateColumn("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return wrapStoreError(errorSubjectBalance, errorCodeUpdate, result.Error)
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectBalance, errorCodeUpdate, prost.ErrUserNotFound)
	}
	return nil
}

func (store *Store) CreatePurchase(ctx context.Context, purchase prost.Purchase) (int64, error) {
	model := Purchase{
		UserID:      purchase.UserID,
		BatchID:     purchase.BatchID,
		Cost:        purchase.Cost,
		ChargedToID: purchase.ChargedToID,
		CreatedAt:   purchase.CreatedAt,
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectPurchase, errorCodeCreate, err)
	}
	return model.ID, nil
}

func (store *Store) CreateRepayment(ctx context.Context, repayment prost.Repayment) (int64, error) {
	model := Repayment{
		PayerID:    repayment.PayerID,
		ReceiverID: repayment.ReceiverID,
		Amount:     repayment.Amount,
		CreatedAt:  repayment.CreatedAt,
	}
	if err := store.db.WithContext(ctx).Create(&model).Error; err != nil {
		return 0, wrapStoreError(errorSubjectPayment, errorCodeCreate, err)
	}
	return model.ID, nil
}

func (store *Store) RecentPurchases(ctx context.Context, limit int) ([]prost.PurchaseRecord, error) {
	var rows []purchaseRow
	err := store.db.WithContext(ctx).
		Table("drink_purchases").
		Select("buyers.name AS user_name, drink_types.name AS drink_name, drink_purchases.cost AS cost, drink_purchases.created_at AS purchased_at, orderers.name AS orderer_name").
		Joins("JOIN users AS buyers ON buyers.id = drink_purchases.user_id").
		Joins("JOIN stock_batches ON stock_batches.id = drink_purchases.batch_id").
		Joins("JOIN drink_types ON drink_types.id = stock_batches.drink_type_id").
		Joins("JOIN users AS orderers ON orderers.id = drink_purchases.charged_to_id").
		Order("drink_purchases.id DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReport, errorCodeList, err)
	}
	records := make([]prost.PurchaseRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, prost.PurchaseRecord{
			UserName:    row.UserName,
			DrinkName:   row.DrinkName,
			Cost:        row.Cost,
			Timestamp:   row.PurchasedAt,
			OrdererName: row.OrdererName,
		})
	}
	return records, nil
}

func (store *Store) StockStatus(ctx context.Context) ([]prost.StockLevel, error) {
	var rows []stockRow
	err := store.db.WithContext(ctx).
		Table("drink_types").
		Select("drink_types.name AS drink_name, drink_types.brand AS brand, COALESCE(SUM(stock_batches.remaining_qty), 0) AS total_remaining").
		Joins("LEFT JOIN stock_batches ON stock_batches.drink_type_id = drink_types.id").
		Group("drink_types.id, drink_types.name, drink_types.brand").
		Order("drink_types.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReport, errorCodeList, err)
	}
	levels := make([]prost.StockLevel, 0, len(rows))
	for _, row := range rows {
		levels = append(levels, prost.StockLevel{
			DrinkName:      row.DrinkName,
			Brand:          row.Brand,
			TotalRemaining: row.TotalRemaining,
		})
	}
	return levels, nil
}

// UserDebts sums purchase cost per directed (buyer, orderer) pair, then nets
// opposite directions so each unordered pair appears at most once, owed by the
// side with the larger gross sum. Self-pairs never contribute.
func (store *Store) UserDebts(ctx context.Context) ([]prost.DebtSummary, error) {
	var rows []debtRow
	err := store.db.WithContext(ctx).
		Table("drink_purchases").
		Select("drink_purchases.user_id AS debtor_id, debtors.name AS debtor_name, drink_purchases.charged_to_id AS creditor_id, creditors.name AS creditor_name, SUM(drink_purchases.cost) AS amount_owed").
		Joins("JOIN users AS debtors ON debtors.id = drink_purchases.user_id").
		Joins("JOIN users AS creditors ON creditors.id = drink_purchases.charged_to_id").
		Where("drink_purchases.user_id <> drink_purchases.charged_to_id").
		Group("drink_purchases.user_id, drink_purchases.charged_to_id").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReport, errorCodeList, err)
	}
	return netDebts(rows), nil
}

func wrapStoreError(subject string, code string, err error) error {
	return prost.WrapError(errorOperationStore, subject, code, err)
}

func userLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapStoreError(errorSubjectUser, errorCodeLookup, prost.ErrUserNotFound)
	}
	return wrapStoreError(errorSubjectUser, errorCodeLookup, err)
}

func drinkLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return wrapStoreError(errorSubjectDrink, errorCodeLookup, prost.ErrDrinkTypeNotFound)
	}
	return wrapStoreError(errorSubjectDrink, errorCodeLookup, err)
}

func mapUser(model User) prost.User {
	return prost.User{
		ID:      model.ID,
		Name:    model.Name,
		Email:   model.Email,
		Balance: model.Balance,
	}
}

func mapDrinkType(model DrinkType) prost.DrinkType {
	return prost.DrinkType{
		ID:    model.ID,
		Name:  model.Name,
		Brand: model.Brand,
	}
}

type purchaseRow struct {
	UserName    string
	DrinkName   string
	Cost        float64
	PurchasedAt time.Time
	OrdererName string
}

type stockRow struct {
	DrinkName      string
	Brand          string
	TotalRemaining int
}

type debtRow struct {
	DebtorID     int64
	DebtorName   string
	CreditorID   int64
	CreditorName string
	AmountOwed   float64
}
