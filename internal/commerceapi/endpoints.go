package commerceapi

import (
	"context"
	"net/http"
	"net/url"
)

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/products", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/categories", "", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetCart(ctx context.Context, token string) (Cart, error) {
	var out Cart
	if err := c.do(ctx, http.MethodGet, "/cart", token, nil, &out); err != nil {
		return Cart{}, err
	}
	return out, nil
}

func (c *Client) PutCartItem(ctx context.Context, token string, item CartItem) error {
	return c.do(ctx, http.MethodPut, "/cart/items/"+url.PathEscape(item.ID), token, item, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, token, lineID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/items/"+url.PathEscape(lineID), token, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/cart", token, nil, nil)
}

func (c *Client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return LoginResponse{}, err
	}
	return out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}
