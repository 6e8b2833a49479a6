package carterrors

import (
	"errors"
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/pkg/apperror"
	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidQuantity = apperror.New(
		apperror.CodeInvalidInput,
		"Quantity must not be negative",
		http.StatusBadRequest,
	)

	ErrInvalidLine = apperror.New(
		apperror.CodeInvalidInput,
		"Cart item is missing a valid id",
		http.StatusBadRequest,
	)

	ErrLineNotFound = apperror.New(
		apperror.CodeNotFound,
		"Item not found in cart",
		http.StatusNotFound,
	)

	ErrOutOfStock = apperror.New(
		apperror.CodeConflict,
		"Item is out of stock",
		http.StatusConflict,
	)

	ErrInvalidWishlistItem = apperror.New(
		apperror.CodeInvalidInput,
		"Wishlist item is missing a product id",
		http.StatusBadRequest,
	)

	ErrSyncFailed = apperror.New(
		apperror.CodeUpstream,
		"Cart could not be synchronized, it will be retried",
		http.StatusBadGateway,
	)

	ErrCorruptSnapshot = apperror.New(
		apperror.CodeInvalidState,
		"Stored cart snapshot is malformed",
		http.StatusInternalServerError,
	)
)

// MapValidationError turns validator failures on a cart item into the cart
// error the caller reports.
func MapValidationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return ErrInvalidLine
	}
	switch ve[0].Field() {
	case "Quantity":
		return ErrInvalidQuantity
	default:
		return ErrInvalidLine
	}
}
