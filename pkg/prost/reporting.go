package prost

import "context"

// RecentPurchases returns the newest purchases first, joined with buyer, drink
// and orderer names. A non-positive limit falls back to DefaultRecentLimit.
func (service *Service) RecentPurchases(ctx context.Context, limit int) ([]PurchaseRecord, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return service.store.RecentPurchases(ctx, limit)
}

// StockStatus reports the summed remaining quantity per drink type, zero for
// types that were never stocked.
func (service *Service) StockStatus(ctx context.Context) ([]StockLevel, error) {
	return service.store.StockStatus(ctx)
}

// UserDebts sums purchase cost per (debtor, creditor) pair, largest debt
// first. Self-pairs and non-positive sums are excluded.
func (service *Service) UserDebts(ctx context.Context) ([]DebtSummary, error) {
	return service.store.UserDebts(ctx)
}
