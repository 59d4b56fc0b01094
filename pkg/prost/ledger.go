package prost

import (
	"context"
	"errors"
	"fmt"
)

// StockNewDrinks records one bulk stocking event: one order row plus one stock
// batch per item, each starting with remaining quantity equal to its initial
// quantity. The total cost is recorded as supplied by the caller and is not
// cross-checked against the item sum. Nothing is written when any referenced
// drink type or the orderer is unknown.
func (service *Service) StockNewDrinks(ctx context.Context, ordererID int64, totalCost float64, items []StockItem) (int64, error) {
	var orderID int64
	operationError := func() error {
		if len(items) == 0 {
			return fmt.Errorf("%w: order has no items", ErrInvalidStockItem)
		}
		for index, item := range items {
			if item.Quantity <= 0 {
				return fmt.Errorf("%w: item %d quantity must be positive", ErrInvalidStockItem, index)
			}
			if item.CostPerItem < 0 {
				return fmt.Errorf("%w: item %d cost must not be negative", ErrInvalidStockItem, index)
			}
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.UserByID(ctx, ordererID); err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return fmt.Errorf("%w: orderer %d", ErrUserNotFound, ordererID)
				}
				return err
			}
			createdAt := service.nowFn()
			newOrderID, err := transactionStore.CreateOrder(ctx, ordererID, totalCost, createdAt)
			if err != nil {
				return err
			}
			for _, item := range items {
				if _, err := transactionStore.DrinkTypeByID(ctx, item.DrinkTypeID); err != nil {
					return err
				}
				batch := StockBatch{
					OrderID:      newOrderID,
					DrinkTypeID:  item.DrinkTypeID,
					CostPerItem:  item.CostPerItem,
					InitialQty:   item.Quantity,
					RemainingQty: item.Quantity,
					DateAdded:    createdAt,
				}
				if _, err := transactionStore.CreateStockBatch(ctx, batch); err != nil {
					return err
				}
			}
			orderID = newOrderID
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation: operationStockOrder,
		UserID:    ordererID,
		Amount:    totalCost,
		Error:     operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	return orderID, nil
}

// RecordPurchase consumes one item of the named drink for the named buyer.
// Stock is drawn from the oldest batch that still has remaining quantity. The
// purchase row snapshots the batch's per-item cost and its orderer, the batch
// quantity drops by one, the buyer is debited and the orderer credited, all in
// one transaction. A buyer purchasing from their own batch nets to zero.
func (service *Service) RecordPurchase(ctx context.Context, buyerName string, drinkName string) (int64, error) {
	var (
		purchaseID int64
		buyerID    int64
		ordererID  int64
		cost       float64
	)
	operationError := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		buyer, err := transactionStore.UserByName(ctx, buyerName)
		if err != nil {
			return err
		}
		drinkType, err := transactionStore.DrinkTypeByName(ctx, drinkName)
		if err != nil {
			return err
		}
		batch, err := transactionStore.OldestOpenBatch(ctx, drinkType.ID)
		if err != nil {
			return err
		}
		order, err := transactionStore.OrderByID(ctx, batch.OrderID)
		if err != nil {
			return err
		}
		buyerID = buyer.ID
		ordererID = order.OrdererID
		cost = batch.CostPerItem
		newPurchaseID, err := transactionStore.CreatePurchase(ctx, Purchase{
			UserID:      buyer.ID,
			BatchID:     batch.ID,
			Cost:        batch.CostPerItem,
			ChargedToID: order.OrdererID,
			CreatedAt:   service.nowFn(),
		})
		if err != nil {
			return err
		}
		if err := transactionStore.DecrementBatch(ctx, batch.ID); err != nil {
			return err
		}
		if err := transactionStore.AdjustBalance(ctx, buyer.ID, -batch.CostPerItem); err != nil {
			return err
		}
		if err := transactionStore.AdjustBalance(ctx, order.OrdererID, batch.CostPerItem); err != nil {
			return err
		}
		purchaseID = newPurchaseID
		return nil
	})
	service.logOperation(ctx, OperationLog{
		Operation:      operationPurchase,
		UserID:         buyerID,
		CounterpartyID: ordererID,
		DrinkName:      drinkName,
		Amount:         cost,
		Error:          operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	return purchaseID, nil
}

// RecordRepayment transfers amount from payer to receiver: the repayment row,
// the payer debit and the receiver credit commit together. There is no cap on
// the amount relative to the existing balance.
func (service *Service) RecordRepayment(ctx context.Context, payerID int64, receiverID int64, amount float64) (int64, error) {
	var repaymentID int64
	operationError := func() error {
		if amount <= 0 {
			return fmt.Errorf("%w: got %.2f", ErrInvalidAmount, amount)
		}
		if payerID == receiverID {
			return fmt.Errorf("%w: user %d", ErrSameParty, payerID)
		}
		return service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
			if _, err := transactionStore.UserByID(ctx, payerID); err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return fmt.Errorf("%w: payer %d", ErrUserNotFound, payerID)
				}
				return err
			}
			if _, err := transactionStore.UserByID(ctx, receiverID); err != nil {
				if errors.Is(err, ErrUserNotFound) {
					return fmt.Errorf("%w: receiver %d", ErrUserNotFound, receiverID)
				}
				return err
			}
			newRepaymentID, err := transactionStore.CreateRepayment(ctx, Repayment{
				PayerID:    payerID,
				ReceiverID: receiverID,
				Amount:     amount,
				CreatedAt:  service.nowFn(),
			})
			if err != nil {
				return err
			}
			if err := transactionStore.AdjustBalance(ctx, payerID, -amount); err != nil {
				return err
			}
			if err := transactionStore.AdjustBalance(ctx, receiverID, amount); err != nil {
				return err
			}
			repaymentID = newRepaymentID
			return nil
		})
	}()
	service.logOperation(ctx, OperationLog{
		Operation:      operationRepayment,
		UserID:         payerID,
		CounterpartyID: receiverID,
		Amount:         amount,
		Error:          operationError,
	})
	if operationError != nil {
		return 0, operationError
	}
	return repaymentID, nil
}
