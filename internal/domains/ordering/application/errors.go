package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/singgah-pos/internal/domains/ordering/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrIdentifierCollision is returned only after every id attempt hit an existing order.
	ErrIdentifierCollision = errors.New("could not allocate a unique order id")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrEmptyOrderID) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
