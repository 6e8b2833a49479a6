package account

import "github.com/shopspring/decimal"

type ProfileResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CheckoutResponse struct {
	Customer    ProfileResponse `json:"customer"`
	ItemCount   int             `json:"itemCount"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	PendingSync int             `json:"pendingSync"`
	// Ready is false while the cart is empty or still has unsent writes.
	Ready bool `json:"ready"`
}

type AccountResponse struct {
	Profile       ProfileResponse `json:"profile"`
	CartCount     int             `json:"cartCount"`
	WishlistCount int             `json:"wishlistCount"`
}
