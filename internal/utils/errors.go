package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Common application errors used across services. Each message is the API
// error code returned to clients.
var (
	ErrNoFileSelected       = errors.New("NO_FILE_SELECTED")
	ErrUnsupportedFileType  = errors.New("UNSUPPORTED_FILE_TYPE")
	ErrPredictionInProgress = errors.New("PREDICTION_IN_PROGRESS")
	ErrPredictionSuperseded = errors.New("PREDICTION_SUPERSEDED")
	ErrPredictionFailed     = errors.New("PREDICTION_FAILED")
	ErrInvalidStockValues   = errors.New("INVALID_STOCK_VALUES")
	ErrSlotNotFound         = errors.New("SLOT_NOT_FOUND")
	ErrSlotBusy             = errors.New("SLOT_BUSY")
	ErrProductNotFound      = errors.New("PRODUCT_NOT_FOUND")
	ErrDealerNotFound       = errors.New("DEALER_NOT_FOUND")
	ErrAccountNotFound      = errors.New("ACCOUNT_NOT_FOUND")
	ErrInvalidCredentials   = errors.New("INVALID_CREDENTIALS")
	ErrEmailTaken           = errors.New("EMAIL_TAKEN")
	ErrInvalidToken         = errors.New("INVALID_TOKEN")
	ErrInvalidRole          = errors.New("INVALID_ROLE")
	ErrInvalidRequest       = errors.New("INVALID_REQUEST")
	ErrCacheMiss            = errors.New("CACHE_MISS")
	ErrInvalidRange         = errors.New("INVALID_RANGE")
)

// UnsupportedFileTypeError is returned when an upload does not match the accept filter.
type UnsupportedFileTypeError struct {
	FileName string
	Accept   []string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("Please upload a file with the following extensions: %s", strings.Join(e.Accept, ", "))
}

func (e *UnsupportedFileTypeError) Unwrap() error { return ErrUnsupportedFileType }

// PredictionCallError wraps a predictor failure for a slot.
type PredictionCallError struct {
	SlotID string
	Err    error
}

func (e *PredictionCallError) Error() string {
	return fmt.Sprintf("prediction for slot %s failed: %v", e.SlotID, e.Err)
}

func (e *PredictionCallError) Unwrap() []error { return []error{ErrPredictionFailed, e.Err} }

// DerivationError reports an input that cannot produce a stock status.
type DerivationError struct {
	Field string
	Value string
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}

func (e *DerivationError) Unwrap() error { return ErrInvalidStockValues }

// ValidationError reports a request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }
