package prost

import (
	"context"
	"sort"
	"time"
)

// stubStore is an in-memory Store used by the service tests. WithTx runs the
// callback against the same state without rollback, so error-path tests
// inject failures before any mutation they assert against.
type stubStore struct {
	users      map[int64]User
	drinkTypes map[int64]DrinkType
	orders     map[int64]Order
	batches    map[int64]*StockBatch
	purchases  []Purchase
	repayments []Repayment
	nextID     int64

	recentLimit int

	userLookupError      error
	drinkLookupError     error
	batchLookupError     error
	orderLookupError     error
	createOrderError     error
	createBatchError     error
	createPurchaseError  error
	createRepaymentError error
	decrementError       error
	adjustBalanceError   error
	adjustBalanceAtCall  int
	adjustBalanceCalls   int
}

func newStubStore() *stubStore {
	return &stubStore{
		users:      map[int64]User{},
		drinkTypes: map[int64]DrinkType{},
		orders:     map[int64]Order{},
		batches:    map[int64]*StockBatch{},
	}
}

func (store *stubStore) allocateID() int64 {
	store.nextID++
	return store.nextID
}

func (store *stubStore) addUser(name string, email string, balance float64) int64 {
	id := store.allocateID()
	store.users[id] = User{ID: id, Name: name, Email: email, Balance: balance}
	return id
}

func (store *stubStore) addDrinkType(name string, brand string) int64 {
	id := store.allocateID()
	store.drinkTypes[id] = DrinkType{ID: id, Name: name, Brand: brand}
	return id
}

func (store *stubStore) addBatch(ordererID int64, drinkTypeID int64, costPerItem float64, quantity int, dateAdded time.Time) int64 {
	orderID := store.allocateID()
	store.orders[orderID] = Order{ID: orderID, OrdererID: ordererID, TotalCost: costPerItem * float64(quantity), CreatedAt: dateAdded}
	batchID := store.allocateID()
	store.batches[batchID] = &StockBatch{
		ID:           batchID,
		OrderID:      orderID,
		DrinkTypeID:  drinkTypeID,
		CostPerItem:  costPerItem,
		InitialQty:   quantity,
		RemainingQty: quantity,
		DateAdded:    dateAdded,
	}
	return batchID
}

func (store *stubStore) balanceSum() float64 {
	var sum float64
	for _, user := range store.users {
		sum += user.Balance
	}
	return sum
}

func (store *stubStore) WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error {
	return fn(ctx, store)
}

func (store *stubStore) UserByEmail(_ context.Context, email string) (User, error) {
	if store.userLookupError != nil {
		return User{}, store.userLookupError
	}
	for _, user := range store.sortedUsers() {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (store *stubStore) UserByName(_ context.Context, name string) (User, error) {
	if store.userLookupError != nil {
		return User{}, store.userLookupError
	}
	for _, user := range store.sortedUsers() {
		if user.Name == name {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (store *stubStore) UserByID(_ context.Context, userID int64) (User, error) {
	if store.userLookupError != nil {
		return User{}, store.userLookupError
	}
	user, found := store.users[userID]
	if !found {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (store *stubStore) CreateUser(_ context.Context, name string, email string) (int64, error) {
	return store.addUser(name, email, 0), nil
}

func (store *stubStore) ListUsers(_ context.Context) ([]User, error) {
	return store.sortedUsers(), nil
}

func (store *stubStore) DrinkTypeByName(_ context.Context, name string) (DrinkType, error) {
	if store.drinkLookupError != nil {
		return DrinkType{}, store.drinkLookupError
	}
	for _, drinkType := range store.sortedDrinkTypes() {
		if drinkType.Name == name {
			return drinkType, nil
		}
	}
	return DrinkType{}, ErrDrinkTypeNotFound
}

func (store *stubStore) DrinkTypeByID(_ context.Context, drinkTypeID int64) (DrinkType, error) {
	if store.drinkLookupError != nil {
		return DrinkType{}, store.drinkLookupError
	}
	drinkType, found := store.drinkTypes[drinkTypeID]
	if !found {
		return DrinkType{}, ErrDrinkTypeNotFound
	}
	return drinkType, nil
}

func (store *stubStore) CreateDrinkType(_ context.Context, name string, brand string) (int64, error) {
	return store.addDrinkType(name, brand), nil
}

func (store *stubStore) ListDrinkTypes(_ context.Context) ([]DrinkType, error) {
	return store.sortedDrinkTypes(), nil
}

func (store *stubStore) CreateOrder(_ context.Context, ordererID int64, totalCost float64, createdAt time.Time) (int64, error) {
	if store.createOrderError != nil {
		return 0, store.createOrderError
	}
	id := store.allocateID()
	store.orders[id] = Order{ID: id, OrdererID: ordererID, TotalCost: totalCost, CreatedAt: createdAt}
	return id, nil
}

func (store *stubStore) OrderByID(_ context.Context, orderID int64) (Order, error) {
	if store.orderLookupError != nil {
		return Order{}, store.orderLookupError
	}
	order, found := store.orders[orderID]
	if !found {
		return Order{}, ErrOrderNotFound
	}
	return order, nil
}

func (store *stubStore) CreateStockBatch(_ context.Context, batch StockBatch) (int64, error) {
	if store.createBatchError != nil {
		return 0, store.createBatchError
	}
	id := store.allocateID()
	batch.ID = id
	store.batches[id] = &batch
	return id, nil
}

func (store *stubStore) OldestOpenBatch(_ context.Context, drinkTypeID int64) (StockBatch, error) {
	if store.batchLookupError != nil {
		return StockBatch{}, store.batchLookupError
	}
	var oldest *StockBatch
	for _, batch := range store.sortedBatches() {
		if batch.DrinkTypeID != drinkTypeID || batch.RemainingQty <= 0 {
			continue
		}
		if oldest == nil || batch.DateAdded.Before(oldest.DateAdded) {
			oldest = batch
		}
	}
	if oldest == nil {
		return StockBatch{}, ErrOutOfStock
	}
	return *oldest, nil
}

func (store *stubStore) DecrementBatch(_ context.Context, batchID int64) error {
	if store.decrementError != nil {
		return store.decrementError
	}
	batch, found := store.batches[batchID]
	if !found || batch.RemainingQty <= 0 {
		return ErrOutOfStock
	}
	batch.RemainingQty--
	return nil
}

func (store *stubStore) AdjustBalance(_ context.Context, userID int64, delta float64) error {
	store.adjustBalanceCalls++
	if store.adjustBalanceError != nil && (store.adjustBalanceAtCall == 0 || store.adjustBalanceAtCall == store.adjustBalanceCalls) {
		return store.adjustBalanceError
	}
	user, found := store.users[userID]
	if !found {
		return ErrUserNotFound
	}
	user.Balance += delta
	store.users[userID] = user
	return nil
}

func (store *stubStore) CreatePurchase(_ context.Context, purchase Purchase) (int64, error) {
	if store.createPurchaseError != nil {
		return 0, store.createPurchaseError
	}
	purchase.ID = store.allocateID()
	store.purchases = append(store.purchases, purchase)
	return purchase.ID, nil
}

func (store *stubStore) CreateRepayment(_ context.Context, repayment Repayment) (int64, error) {
	if store.createRepaymentError != nil {
		return 0, store.createRepaymentError
	}
	repayment.ID = store.allocateID()
	store.repayments = append(store.repayments, repayment)
	return repayment.ID, nil
}

func (store *stubStore) RecentPurchases(_ context.Context, limit int) ([]PurchaseRecord, error) {
	store.recentLimit = limit
	return nil, nil
}

func (store *stubStore) StockStatus(_ context.Context) ([]StockLevel, error) {
	return nil, nil
}

func (store *stubStore) UserDebts(_ context.Context) ([]DebtSummary, error) {
	return nil, nil
}

func (store *stubStore) sortedUsers() []User {
	users := make([]User, 0, len(store.users))
	for _, user := range store.users {
		users = append(users, user)
	}
	sort.Slice(users, func(left, right int) bool { return users[left].ID < users[right].ID })
	return users
}

func (store *stubStore) sortedDrinkTypes() []DrinkType {
	drinkTypes := make([]DrinkType, 0, len(store.drinkTypes))
	for _, drinkType := range store.drinkTypes {
		drinkTypes = append(drinkTypes, drinkType)
	}
	sort.Slice(drinkTypes, func(left, right int) bool { return drinkTypes[left].ID < drinkTypes[right].ID })
	return drinkTypes
}

func (store *stubStore) sortedBatches() []*StockBatch {
	batches := make([]*StockBatch, 0, len(store.batches))
	for _, batch := range store.batches {
		batches = append(batches, batch)
	}
	sort.Slice(batches, func(left, right int) bool { return batches[left].ID < batches[right].ID })
	return batches
}
