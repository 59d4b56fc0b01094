package prost

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Service contains the domain logic over a Store.
type Service struct {
	store  Store
	nowFn  func() time.Time
	logger OperationLogger
}

// NewService wires a Service.
func NewService(store Store, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{store: store, nowFn: now}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// FindOrCreateUser returns the id of the user with the given email, creating
// the user when no such record exists. The check and the insert share one
// transaction, so repeated calls with the same email always return the same id.
func (service *Service) FindOrCreateUser(ctx context.Context, name string, email string) (int64, error) {
	var userID int64
	err := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		existing, err := transactionStore.UserByEmail(ctx, email)
		if err == nil {
			userID = existing.ID
			return nil
		}
		if !errors.Is(err, ErrUserNotFound) {
			return err
		}
		userID, err = transactionStore.CreateUser(ctx, name, email)
		return err
	})
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// FindOrCreateDrinkType returns the id of the drink type with the given name,
// creating it when absent. Uniqueness is an application-level check-then-insert
// guarded by the same transaction; a later call with a different brand still
// resolves to the original record.
func (service *Service) FindOrCreateDrinkType(ctx context.Context, name string, brand string) (int64, error) {
	var drinkTypeID int64
	err := service.store.WithTx(ctx, func(ctx context.Context, transactionStore Store) error {
		existing, err := transactionStore.DrinkTypeByName(ctx, name)
		if err == nil {
			drinkTypeID = existing.ID
			return nil
		}
		if !errors.Is(err, ErrDrinkTypeNotFound) {
			return err
		}
		drinkTypeID, err = transactionStore.CreateDrinkType(ctx, name, brand)
		return err
	})
	if err != nil {
		return 0, err
	}
	return drinkTypeID, nil
}

// UserByName resolves a user by display name. Names are not unique; an
// ambiguous name resolves to an arbitrary match.
func (service *Service) UserByName(ctx context.Context, name string) (User, error) {
	return service.store.UserByName(ctx, name)
}

// UserByID resolves a user by id.
func (service *Service) UserByID(ctx context.Context, userID int64) (User, error) {
	return service.store.UserByID(ctx, userID)
}

// DrinkTypeByName resolves a drink type by name.
func (service *Service) DrinkTypeByName(ctx context.Context, name string) (DrinkType, error) {
	return service.store.DrinkTypeByName(ctx, name)
}

// DrinkTypeByID resolves a drink type by id.
func (service *Service) DrinkTypeByID(ctx context.Context, drinkTypeID int64) (DrinkType, error) {
	return service.store.DrinkTypeByID(ctx, drinkTypeID)
}

// AllUsers lists every user with their current balance.
func (service *Service) AllUsers(ctx context.Context) ([]User, error) {
	return service.store.ListUsers(ctx)
}

// AllDrinkTypes lists the drink catalog.
func (service *Service) AllDrinkTypes(ctx context.Context) ([]DrinkType, error) {
	return service.store.ListDrinkTypes(ctx)
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}
