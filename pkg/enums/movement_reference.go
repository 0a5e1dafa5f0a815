package enums

// MovementReference names what triggered a stock movement.
type MovementReference string

const (
	MovementReferenceOrder  MovementReference = "order"
	MovementReferenceRefund MovementReference = "refund"
	MovementReferenceManual MovementReference = "manual"
)

// String implements fmt.Stringer.
func (r MovementReference) String() string {
	return string(r)
}
