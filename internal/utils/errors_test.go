package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionCallError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("request: %w", &PredictionCallError{SlotID: "shop-1", Err: cause})

	assert.ErrorIs(t, err, ErrPredictionFailed)
	assert.ErrorIs(t, err, cause)

	var callErr *PredictionCallError
	assert.ErrorAs(t, err, &callErr)
	assert.Equal(t, "shop-1", callErr.SlotID)
}

func TestUnsupportedFileTypeError_Message(t *testing.T) {
	err := &UnsupportedFileTypeError{FileName: "notes.txt", Accept: []string{".csv"}}

	assert.ErrorIs(t, err, ErrUnsupportedFileType)
	assert.Equal(t, "Please upload a file with the following extensions: .csv", err.Error())
}

func TestDerivationError_Unwrap(t *testing.T) {
	err := &DerivationError{Field: "stock", Value: "-1"}
	assert.ErrorIs(t, err, ErrInvalidStockValues)
	assert.Equal(t, "invalid stock: -1", err.Error())
}
