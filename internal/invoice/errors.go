package invoice

import (
	"errors"
	"fmt"
)

// Error taxonomy. Callers branch with errors.Is; every one of these is
// recoverable at the request boundary.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrConflict   = errors.New("conflicting concurrent update")
	ErrStorage    = errors.New("storage error")
)

// ErrInvoiceClosed marks mutations against completed or cancelled invoices.
// It is a permission failure: nobody may touch a closed invoice's line items
// or total.
var ErrInvoiceClosed = fmt.Errorf("%w: invoice is closed", ErrPermission)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
