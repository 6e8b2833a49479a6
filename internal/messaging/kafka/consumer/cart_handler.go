package consumer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Keerthudarshu/petandco/internal/commerceapi"

	"go.uber.org/zap"
)

// CartClearer empties the carts of every live visitor signed in as a user.
type CartClearer interface {
	ClearUserCarts(userID string) int
}

// DeleteCartPayload is published by the order service once checkout
// completes.
type DeleteCartPayload struct {
	UserID commerceapi.ID `json:"userId"`
}

var errMalformedPayload = errors.New("malformed payload")

func handleDeleteCart(payload []byte, carts CartClearer, logger *zap.Logger) error {
	var data DeleteCartPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return fmt.Errorf("%w: %v", errMalformedPayload, err)
	}
	if data.UserID == "" {
		return fmt.Errorf("%w: missing userId", errMalformedPayload)
	}

	cleared := carts.ClearUserCarts(data.UserID.String())
	logger.Info("cleared carts after checkout",
		zap.String("user_id", data.UserID.String()),
		zap.Int("visitors", cleared),
	)
	return nil
}
