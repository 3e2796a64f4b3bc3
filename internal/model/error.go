package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// ErrorKind classifies a domain error for transport mapping.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeInvalidID          = "INVALID_ID"
	ErrCodeInvalidQuantity    = "INVALID_QUANTITY"
	ErrCodeInvalidStatus      = "INVALID_STATUS"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeCartExpired        = "CART_EXPIRED"
	ErrCodeInsufficientStock  = "INSUFFICIENT_STOCK"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeStoreMismatch      = "STORE_MISMATCH"
	ErrCodeAlreadyClaimed     = "ALREADY_CLAIMED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeTransferInProgress = "TRANSFER_IN_PROGRESS"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
)

// Domain errors for business logic
type DomainError struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates a validation error with a caller supplied message.
func NewValidationError(code, message string) *DomainError {
	return NewDomainError(KindValidation, code, message)
}

// Common domain errors
var (
	ErrInvalidQuantity    = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrNegativeQuantity   = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity cannot be negative")
	ErrQuantityOutOfRange = NewDomainError(KindValidation, ErrCodeInvalidQuantity, "Quantity is out of range")
	ErrInvalidStatus      = NewDomainError(KindValidation, ErrCodeInvalidStatus, "Unknown or unsupported status")
	ErrEmptyCart          = NewDomainError(KindValidation, ErrCodeEmptyCart, "Cart has no items")
	ErrUnauthenticated    = NewDomainError(KindUnauthenticated, ErrCodeUnauthorised, "Authentication required")
	ErrForbidden          = NewDomainError(KindForbidden, ErrCodeForbidden, "Not allowed to act on this resource")
	ErrStaffOnly          = NewDomainError(KindForbidden, ErrCodeForbidden, "Staff role required")
	ErrStoreMismatch      = NewDomainError(KindForbidden, ErrCodeStoreMismatch, "Store context does not match")
	ErrCartAlreadyClaimed = NewDomainError(KindForbidden, ErrCodeAlreadyClaimed, "Cart belongs to another user")
	ErrStoreNotFound      = NewDomainError(KindNotFound, ErrCodeNotFound, "Store not found")
	ErrCartNotFound       = NewDomainError(KindNotFound, ErrCodeNotFound, "Cart not found")
	ErrCartItemNotFound   = NewDomainError(KindNotFound, ErrCodeNotFound, "Cart item not found")
	ErrFittingNotFound    = NewDomainError(KindNotFound, ErrCodeNotFound, "Fitting cart not found")
	ErrRequestNotFound    = NewDomainError(KindNotFound, ErrCodeNotFound, "Fitting room request not found")
	ErrOrderNotFound      = NewDomainError(KindNotFound, ErrCodeNotFound, "Order not found")
	ErrVariantNotFound    = NewDomainError(KindNotFound, ErrCodeNotFound, "Product variant not found")
	ErrProductNotFound    = NewDomainError(KindNotFound, ErrCodeNotFound, "Product not found")
	ErrInventoryNotFound  = NewDomainError(KindNotFound, ErrCodeNotFound, "Inventory record not found")
	ErrCartExpired        = NewDomainError(KindConflict, ErrCodeCartExpired, "Cart has expired")
	ErrInsufficientStock  = NewDomainError(KindConflict, ErrCodeInsufficientStock, "Insufficient stock")
	ErrInvalidTransition  = NewDomainError(KindConflict, ErrCodeInvalidTransition, "Status transition not allowed")
	ErrTransferInProgress = NewDomainError(KindConflict, ErrCodeTransferInProgress, "Transfer already in progress")
)
