package service

import (
	"fmt"
	"math"
	"strconv"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// ChartDatasetLabel is the legend of the per-slot demand comparison.
const ChartDatasetLabel = "Average Predicted Demand"

// AverageDemand returns the arithmetic mean of the predicted demands, or 0
// for an empty list.
func AverageDemand(predictions []models.Prediction) float64 {
	if len(predictions) == 0 {
		return 0
	}
	var sum float64
	for _, p := range predictions {
		sum += p.PredictedDemand
	}
	return sum / float64(len(predictions))
}

// BuildChartSeries derives one average per slot, in slot order. The series is
// rebuilt from the given slots on every call.
func BuildChartSeries(slots []models.Slot) models.ChartSeries {
	series := models.ChartSeries{
		Label:  ChartDatasetLabel,
		Labels: make([]string, len(slots)),
		Data:   make([]float64, len(slots)),
	}
	for i := range slots {
		series.Labels[i] = slots[i].Label
		series.Data[i] = AverageDemand(slots[i].Predictions)
	}
	return series
}

// ValidateStockInputs rejects values DeriveStockStatus is not defined for.
func ValidateStockInputs(stock int, predictedDemand float64) error {
	if stock < 0 {
		return &utils.DerivationError{Field: "stock", Value: strconv.Itoa(stock)}
	}
	if math.IsNaN(predictedDemand) || math.IsInf(predictedDemand, 0) || predictedDemand < 0 {
		return &utils.DerivationError{Field: "predictedDemand", Value: fmt.Sprint(predictedDemand)}
	}
	return nil
}

// DeriveStockStatus validates the inputs and classifies them.
func DeriveStockStatus(stock int, predictedDemand float64) (models.StockStatus, error) {
	if err := ValidateStockInputs(stock, predictedDemand); err != nil {
		return "", err
	}
	return models.DeriveStockStatus(stock, predictedDemand), nil
}
