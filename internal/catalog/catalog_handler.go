package catalog

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("catalog.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("catalog.handler")
	}
	return &Handler{service: service, logger: l}
}

// GET /products
func (h *Handler) List(c *gin.Context) {
	var q ListProductsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_QUERY", "Invalid query", err.Error())
		return
	}

	query := q.query()
	res, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		h.logger.Error("list products failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, ListProductsResponse{
		Title:      res.Title,
		Products:   res.Products,
		Categories: res.Facets,
	}, ListMeta{Total: res.Total, Sort: query.Sort})
}

// GET /products/:id
func (h *Handler) GetByID(c *gin.Context) {
	p, err := h.service.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, nil)
}

// GET /categories
func (h *Handler) Categories(c *gin.Context) {
	facets, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories failed", zap.Error(err))
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, facets, nil)
}
