package wishlist

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/cart"
	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	resolve cart.StoreResolver
	logger  *zap.Logger
}

func NewHandler(svc Service, resolve cart.StoreResolver, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("wishlist.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("wishlist.handler")
	}
	return &Handler{service: svc, resolve: resolve, logger: l}
}

func (h *Handler) store(c *gin.Context) (*cart.Store, bool) {
	s, ok := h.resolve(c)
	if !ok || s == nil {
		h.logger.Error("no store for request", zap.String("path", c.FullPath()))
		response.Error(c, http.StatusInternalServerError, "VISITOR_MISSING", "Visitor could not be resolved", nil)
		return nil, false
	}
	return s, true
}

// GET /wishlist
func (h *Handler) List(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, toWishlistResponse(s.Wishlist()), nil)
}

// POST /wishlist/items
func (h *Handler) Create(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", err.Error())
		return
	}

	s, ok := h.store(c)
	if !ok {
		return
	}

	item, err := h.service.Resolve(c.Request.Context(), req.ProductID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := s.AddToWishlist(item); err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, toWishlistResponse(s.Wishlist()), nil)
}

// GET /wishlist/items/:productId
func (h *Handler) Status(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	productID := c.Param("productId")
	response.Success(c, http.StatusOK, ToggleResponse{
		ProductID:  productID,
		InWishlist: s.IsInWishlist(productID),
	}, nil)
}

// DELETE /wishlist/items/:productId
func (h *Handler) Delete(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	s.RemoveFromWishlist(c.Param("productId"))
	response.Success(c, http.StatusOK, toWishlistResponse(s.Wishlist()), nil)
}

// POST /wishlist/items/:productId/toggle
func (h *Handler) Toggle(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	productID := c.Param("productId")
	var item cart.WishlistItem
	if s.IsInWishlist(productID) {
		item = cart.WishlistItem{ID: productID}
	} else {
		resolved, err := h.service.Resolve(c.Request.Context(), productID)
		if err != nil {
			response.FromError(c, err)
			return
		}
		item = resolved
	}

	added, err := s.ToggleWishlist(item)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, ToggleResponse{ProductID: productID, InWishlist: added}, nil)
}

// POST /wishlist/items/:productId/cart adds a wishlisted product to the cart.
// The wishlist entry stays.
func (h *Handler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", err.Error())
			return
		}
	}

	s, ok := h.store(c)
	if !ok {
		return
	}

	productID := c.Param("productId")
	if !s.IsInWishlist(productID) {
		response.FromError(c, ErrItemNotFound)
		return
	}

	item, err := h.service.CartItem(c.Request.Context(), productID, req.Variant)
	if err != nil {
		response.FromError(c, err)
		return
	}
	line, err := s.AddToCart(item, req.quantity())
	if err != nil {
		h.logger.Debug("wishlist add to cart rejected", zap.String("product_id", productID), zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"lineId":    line.ID,
		"quantity":  line.Quantity,
		"itemCount": s.CartItemCount(),
	}, nil)
}
