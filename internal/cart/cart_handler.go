package cart

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StoreResolver returns the cart of the visitor making the request.
type StoreResolver func(c *gin.Context) (*Store, bool)

type Handler struct {
	resolve StoreResolver
	logger  *zap.Logger
}

func NewHandler(resolve StoreResolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("cart.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("cart.handler")
	}
	return &Handler{resolve: resolve, logger: l}
}

func (h *Handler) store(c *gin.Context) (*Store, bool) {
	s, ok := h.resolve(c)
	if !ok || s == nil {
		h.logger.Error("no cart for request", zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "VISITOR_MISSING", "Visitor could not be resolved", nil)
		return nil, false
	}
	return s, true
}

func (h *Handler) render(c *gin.Context, status int, s *Store) {
	response.Success(c, status, toCartResponse(s.Snapshot(), s.PendingSync()), nil)
}

// GET /cart
func (h *Handler) Detail(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	h.render(c, http.StatusOK, s)
}

// GET /cart/count
func (h *Handler) Count(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, CartCountResponse{Count: s.CartItemCount()}, nil)
}

// POST /cart/items
func (h *Handler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid input", err.Error())
		return
	}

	s, ok := h.store(c)
	if !ok {
		return
	}

	line, err := s.AddToCart(req.item(), req.quantity())
	if err != nil {
		h.logger.Debug("add to cart rejected", zap.String("product_id", req.ProductID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"item": toCartLineResponse(line),
		"cart": toCartResponse(s.Snapshot(), s.PendingSync()),
	}, nil)
}

// PATCH /cart/items/:lineId
func (h *Handler) UpdateQty(c *gin.Context) {
	var req UpdateQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "BAD_REQUEST", "Invalid input", err.Error())
		return
	}

	s, ok := h.store(c)
	if !ok {
		return
	}

	if err := s.UpdateQuantity(c.Param("lineId"), *req.Quantity); err != nil {
		response.FromError(c, err)
		return
	}
	h.render(c, http.StatusOK, s)
}

// DELETE /cart/items/:lineId
func (h *Handler) DeleteItem(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	s.RemoveFromCart(c.Param("lineId"))
	h.render(c, http.StatusOK, s)
}

// DELETE /cart
func (h *Handler) Clear(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	s.ClearCart()
	h.render(c, http.StatusOK, s)
}

// POST /cart/sync pushes pending writes now and refreshes from the remote
// cart when nothing is left to push.
func (h *Handler) Sync(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := s.Flush(ctx); err != nil {
		h.logger.Warn("cart flush failed", zap.Error(err))
		response.FromError(c, err)
		return
	}
	if err := s.Reconcile(ctx); err != nil {
		h.logger.Warn("cart reconcile failed", zap.Error(err))
		response.FromError(c, err)
		return
	}
	h.render(c, http.StatusOK, s)
}
