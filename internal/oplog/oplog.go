package oplog

import (
	"context"

	"github.com/MarkoPoloResearchLab/prost/pkg/prost"
	"go.uber.org/zap"
)

// Logger adapts a zap logger to the prost.OperationLogger contract, emitting
// one structured event per balance-affecting operation.
type Logger struct {
	base *zap.Logger
}

// New wires a Logger around the supplied zap logger.
func New(base *zap.Logger) *Logger {
	return &Logger{base: base}
}

// LogOperation writes the operation outcome at info or error level.
func (logger *Logger) LogOperation(_ context.Context, entry prost.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("status", entry.Status),
		zap.Int64("user_id", entry.UserID),
		zap.Float64("amount", entry.Amount),
	}
	if entry.CounterpartyID != 0 {
		fields = append(fields, zap.Int64("counterparty_id", entry.CounterpartyID))
	}
	if entry.DrinkName != "" {
		fields = append(fields, zap.String("drink", entry.DrinkName))
	}
	if entry.Error != nil {
		logger.base.Error("ledger operation failed", append(fields, zap.Error(entry.Error))...)
		return
	}
	logger.base.Info("ledger operation", fields...)
}
