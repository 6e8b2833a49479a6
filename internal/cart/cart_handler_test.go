package cart_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Keerthudarshu/petandco/internal/cart"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== HELPER FUNCTIONS ====================

func setupTestRouter(t *testing.T) (*gin.Engine, *cart.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s := newStore(t)
	h := cart.NewHandler(func(*gin.Context) (*cart.Store, bool) { return s, true })

	r := gin.New()
	cart.RegisterRoutes(r.Group("/api/v1"), h)
	return r, s
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) cart.CartResponse {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	var res cart.CartResponse
	require.NoError(t, json.Unmarshal(env.Data, &res))
	return res
}

// ==================== TEST CASES ====================

func TestCartHandler_AddItem(t *testing.T) {
	t.Run("success_add_item", func(t *testing.T) {
		r, s := setupTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/items", `{"productId":"p1","name":"Chew Toy","unitPrice":"100","quantity":2}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"p1-default"`)
		assert.Equal(t, 2, s.CartItemCount())
	})

	t.Run("quantity_defaults_to_one", func(t *testing.T) {
		r, s := setupTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/items", `{"id":"p1-default","unitPrice":10}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, 1, s.CartItemCount())
	})

	t.Run("negative_quantity", func(t *testing.T) {
		r, s := setupTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/items", `{"id":"p1-default","unitPrice":10,"quantity":-1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
		assert.Equal(t, 0, s.CartItemCount())
	})

	t.Run("bad_request_invalid_json", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/items", `{"quantity":"many"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartHandler_UpdateQty(t *testing.T) {
	t.Run("success_update_qty", func(t *testing.T) {
		r, s := setupTestRouter(t)
		_, _ = s.AddToCart(item("p1-default", 100), 1)

		w := doJSON(r, http.MethodPatch, "/api/v1/cart/items/p1-default", `{"quantity":4}`)

		require.Equal(t, http.StatusOK, w.Code)
		res := decodeCart(t, w)
		assert.Equal(t, 4, res.ItemCount)
		assert.Equal(t, "400", res.Subtotal.String())
		assert.True(t, res.Synced)
	})

	t.Run("zero_removes", func(t *testing.T) {
		r, s := setupTestRouter(t)
		_, _ = s.AddToCart(item("p1-default", 100), 1)

		w := doJSON(r, http.MethodPatch, "/api/v1/cart/items/p1-default", `{"quantity":0}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, s.Lines())
	})

	t.Run("missing_quantity", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := doJSON(r, http.MethodPatch, "/api/v1/cart/items/p1-default", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown_line", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := doJSON(r, http.MethodPatch, "/api/v1/cart/items/ghost", `{"quantity":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCartHandler_Delete(t *testing.T) {
	t.Run("success_delete_item_twice", func(t *testing.T) {
		r, s := setupTestRouter(t)
		_, _ = s.AddToCart(item("p1-default", 100), 1)

		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/api/v1/cart/items/p1-default", "").Code)
		assert.Equal(t, http.StatusOK, doJSON(r, http.MethodDelete, "/api/v1/cart/items/p1-default", "").Code)
		assert.Empty(t, s.Lines())
	})

	t.Run("success_clear", func(t *testing.T) {
		r, s := setupTestRouter(t)
		_, _ = s.AddToCart(item("a", 1), 1)
		_, _ = s.AddToCart(item("b", 1), 1)

		w := doJSON(r, http.MethodDelete, "/api/v1/cart", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, s.CartItemCount())
	})
}

func TestCartHandler_DetailAndCount(t *testing.T) {
	r, s := setupTestRouter(t)
	orig := item("p1-default", 80)
	price := decimal.NewFromInt(120)
	orig.OriginalPrice = &price
	_, _ = s.AddToCart(orig, 2)

	t.Run("detail_includes_savings", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/cart", "")

		require.Equal(t, http.StatusOK, w.Code)
		res := decodeCart(t, w)
		require.Len(t, res.Items, 1)
		assert.Equal(t, "160", res.Subtotal.String())
		assert.Equal(t, "80", res.Savings.String())
	})

	t.Run("count", func(t *testing.T) {
		w := doJSON(r, http.MethodGet, "/api/v1/cart/count", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":2`)
	})
}

func TestCartHandler_Sync(t *testing.T) {
	t.Run("anonymous_cart_is_already_synced", func(t *testing.T) {
		r, _ := setupTestRouter(t)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/sync", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("remote_down_reports_502", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		remote := newFakeRemote()
		s := newStore(t, cart.WithRemote(remote, staticTokens{token: "tok"}))
		require.NoError(t, s.Attach(context.Background()))
		remote.setFail(true)
		_, _ = s.AddToCart(item("p1-default", 1), 1)

		h := cart.NewHandler(func(*gin.Context) (*cart.Store, bool) { return s, true })
		r := gin.New()
		cart.RegisterRoutes(r.Group("/api/v1"), h)

		w := doJSON(r, http.MethodPost, "/api/v1/cart/sync", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "UPSTREAM_ERROR")
	})
}

func TestCartHandler_MissingVisitor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := cart.NewHandler(func(*gin.Context) (*cart.Store, bool) { return nil, false })
	r := gin.New()
	cart.RegisterRoutes(r.Group("/api/v1"), h)

	w := doJSON(r, http.MethodGet, "/api/v1/cart", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
