package prost

const (
	operationStockOrder = "stock_order"
	operationPurchase   = "purchase"
	operationRepayment  = "repayment"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	// DefaultRecentLimit bounds the recent-purchases read model when the
	// caller does not supply a positive limit.
	DefaultRecentLimit = 50
)
