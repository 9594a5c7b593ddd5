package matching

import (
	"errors"
	"fmt"

	"github.com/spigell/company-matcher/internal/category"
)

var (
	// ErrInvalidVector signals a user vector that cannot be compared.
	ErrInvalidVector = errors.New("invalid user vector")
	// ErrNotInitialized signals a ranking request before Initialize.
	ErrNotInitialized = errors.New("matching engine is not initialized")
)

// InvalidVectorError reports the size of a rejected user vector.
type InvalidVectorError struct {
	Got int
	// NonFinite is set when the size matched but a component was NaN or Inf.
	NonFinite bool
}

func (e *InvalidVectorError) Error() string {
	if e.NonFinite {
		return fmt.Sprintf("%s: components must be finite numbers", ErrInvalidVector)
	}
	return fmt.Sprintf("%s: expected %d components, got %d", ErrInvalidVector, category.Count, e.Got)
}

func (e *InvalidVectorError) Unwrap() error { return ErrInvalidVector }
