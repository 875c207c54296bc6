package domain

type Stage string

const (
	StageStart              Stage = "start"
	StageValidateNotEmpty   Stage = "validate_not_empty"
	StageValidateNotExpired Stage = "validate_not_expired"
	StageComputeTotals      Stage = "compute_totals"
	StageValidateBalance    Stage = "validate_balance"
	StageEmitShipment       Stage = "emit_shipment"
	StageEmitReceipt        Stage = "emit_receipt"
	StageSettle             Stage = "settle"
	StageDone               Stage = "done"
)

// AbortError reports the validation stage a checkout stopped at.
type AbortError struct {
	Stage Stage
	Err   error
}

func (e *AbortError) Error() string { return e.Err.Error() }

func (e *AbortError) Unwrap() error { return e.Err }
