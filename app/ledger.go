package app

import (
	"context"

	"housecast/ports"
)

// discardLedger stands in when a service is built without a ledger
type discardLedger struct{}

func (discardLedger) RecordPartition(context.Context, ports.PartitionRecord) error   { return nil }
func (discardLedger) RecordValidation(context.Context, ports.ValidationRecord) error { return nil }
func (discardLedger) Close() error                                                    { return nil }

func ledgerOrDiscard(l ports.RunLedger) ports.RunLedger {
	if l == nil {
		return discardLedger{}
	}
	return l
}
