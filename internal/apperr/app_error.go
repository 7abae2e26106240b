package apperr

import "github.com/tuanvumaihuynh/product-discount/pkg/zerror"

const (
	ValidationErrorCode      = "VALIDATION_FAILED"
	ProductNotFoundErrorCode = "PRODUCT_NOT_FOUND"
)

var (
	ValidationErr      = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
)

var DatabaseUnavailableErr = zerror.NewServiceUnavailable("DATABASE_UNAVAILABLE", "database is unavailable")
