package models

// OrderSequence holds the monotonic per-month counter that order numbers
// are derived from. The counter is only ever advanced with an atomic
// upsert, never read-then-written.
type OrderSequence struct {
	Period  string `gorm:"column:period;primaryKey" json:"period"`
	Counter int64  `gorm:"column:counter;not null;default:0" json:"counter"`
}
