package resource

import (
	"net/http"

	"github.com/Abraxas-365/gapflow/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("RESOURCE")

var (
	CodeInvalidMode   = ErrRegistry.Register("INVALID_MODE", errx.TypeValidation, http.StatusBadRequest, "Unsupported search mode")
	CodeSearchFailed  = ErrRegistry.Register("SEARCH_FAILED", errx.TypeUnavailable, http.StatusBadGateway, "All search backends failed")
	CodeCatalogError  = ErrRegistry.Register("CATALOG_ERROR", errx.TypeInternal, http.StatusInternalServerError, "Resource catalog query failed")
	CodeEmptyGapTitle = ErrRegistry.Register("EMPTY_GAP_TITLE", errx.TypeValidation, http.StatusBadRequest, "Gap title is required for resource search")
)
