package orders

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	pkgerrors "github.com/rmehra-dev/techshop-backend/pkg/errors"
)

// NextOrderNumber allocates the next number in the month's sequence and
// formats it as ORD-{YYYYMM}-{counter}. The counter is advanced with a
// single atomic upsert so two concurrent checkouts can never mint the
// same number.
func NextOrderNumber(ctx context.Context, tx *gorm.DB, now time.Time, digits int) (string, error) {
	if digits <= 0 {
		digits = 4
	}
	period := now.UTC().Format("200601")

	var counter int64
	err := tx.WithContext(ctx).Raw(
		`INSERT INTO order_sequences (period, counter) VALUES (?, 1)
		 ON CONFLICT (period) DO UPDATE SET counter = counter + 1
		 RETURNING counter`,
		period,
	).Scan(&counter).Error
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "advance order sequence")
	}

	return fmt.Sprintf("ORD-%s-%0*d", period, digits, counter), nil
}
