package enums

// InventoryStatus is derived from a variant's quantity and its minimum
// stock threshold; it is recomputed on every stock mutation, never cached.
type InventoryStatus string

const (
	InventoryStatusOutOfStock InventoryStatus = "out_of_stock"
	InventoryStatusLowStock   InventoryStatus = "low_stock"
	InventoryStatusInStock    InventoryStatus = "in_stock"
)

// String implements fmt.Stringer.
func (s InventoryStatus) String() string {
	return string(s)
}

// DeriveInventoryStatus computes the status for a quantity against a
// minimum-stock threshold.
func DeriveInventoryStatus(quantity, minStockLevel int) InventoryStatus {
	switch {
	case quantity <= 0:
		return InventoryStatusOutOfStock
	case quantity <= minStockLevel:
		return InventoryStatusLowStock
	default:
		return InventoryStatusInStock
	}
}
