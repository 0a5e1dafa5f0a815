package enums

// CustomerType distinguishes registered customers from walk-ins created
// inline during checkout.
type CustomerType string

const (
	CustomerTypeRegular CustomerType = "regular"
	CustomerTypeWalkIn  CustomerType = "walk-in"
)

// String implements fmt.Stringer.
func (c CustomerType) String() string {
	return string(c)
}
