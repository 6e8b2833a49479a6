package catalog

import (
	"net/http"

	"github.com/Keerthudarshu/petandco/internal/pkg/apperror"
)

var (
	ErrProductNotFound = apperror.New(
		apperror.CodeNotFound,
		"Product not found",
		http.StatusNotFound,
	)

	ErrCatalogUnavailable = apperror.New(
		apperror.CodeUpstream,
		"Catalog is temporarily unavailable",
		http.StatusBadGateway,
	)
)
