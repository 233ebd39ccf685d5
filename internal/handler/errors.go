package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/utils"
)

// handleError converts a service error into the API error envelope.
func handleError(c *gin.Context, err error) {
	var (
		unsupported *utils.UnsupportedFileTypeError
		callErr     *utils.PredictionCallError
		derivation  *utils.DerivationError
		validation  *utils.ValidationError
	)

	switch {
	case errors.As(err, &unsupported):
		utils.Error(c, 415, "UNSUPPORTED_FILE_TYPE", unsupported.Error())
	case errors.Is(err, utils.ErrNoFileSelected):
		utils.Error(c, 400, "NO_FILE_SELECTED", "No file selected")
	case errors.Is(err, utils.ErrPredictionInProgress):
		utils.Error(c, 409, "PREDICTION_IN_PROGRESS", "A prediction is already running for this slot")
	case errors.Is(err, utils.ErrPredictionSuperseded):
		utils.Error(c, 409, "PREDICTION_SUPERSEDED", "The file changed while the prediction was running")
	case errors.As(err, &callErr):
		utils.Error(c, 502, "PREDICTION_FAILED", "Error fetching predictions")
	case errors.As(err, &derivation):
		utils.Error(c, 422, "INVALID_STOCK_VALUES", derivation.Error())
	case errors.Is(err, utils.ErrInvalidStockValues):
		utils.Error(c, 422, "INVALID_STOCK_VALUES", "Stock and predicted demand must be non-negative numbers")
	case errors.As(err, &validation):
		utils.Error(c, 400, "INVALID_REQUEST", validation.Error())
	case errors.Is(err, utils.ErrSlotNotFound):
		utils.Error(c, 404, "SLOT_NOT_FOUND", "Slot not found")
	case errors.Is(err, utils.ErrSlotBusy):
		utils.Error(c, 409, "SLOT_BUSY", "Slot has a prediction in progress")
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found")
	case errors.Is(err, utils.ErrDealerNotFound):
		utils.Error(c, 404, "DEALER_NOT_FOUND", "Dealer not found")
	case errors.Is(err, utils.ErrAccountNotFound):
		utils.Error(c, 404, "ACCOUNT_NOT_FOUND", "Account not found")
	case errors.Is(err, utils.ErrInvalidCredentials):
		utils.Error(c, 401, "INVALID_CREDENTIALS", "Invalid email or password")
	case errors.Is(err, utils.ErrEmailTaken):
		utils.Error(c, 409, "EMAIL_TAKEN", "An account with this email already exists")
	case errors.Is(err, utils.ErrInvalidToken):
		utils.Error(c, 401, "LOGIN_REQUIRED", "Please log in to continue")
	case errors.Is(err, utils.ErrInvalidRole):
		utils.Error(c, 404, "INVALID_ROLE", "Unknown account type")
	case errors.Is(err, utils.ErrInvalidRange):
		utils.Error(c, 400, "INVALID_RANGE", "Range must be one of week, month or year")
	case errors.Is(err, utils.ErrInvalidRequest):
		utils.Error(c, 400, "INVALID_REQUEST", "Invalid request")
	default:
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Str("path", c.Request.URL.Path).Msg("unhandled error")
		utils.Error(c, 500, "INTERNAL_ERROR", "Internal server error")
	}
}
