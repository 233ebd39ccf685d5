package forecast

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Prediction is a single product forecast as returned by the service.
type Prediction struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	PredictedDemand float64 `json:"predicted_demand"`
}

// PredictResponse accepts either a bare JSON array of predictions or an
// object with a "predictions" field.
type PredictResponse struct {
	Predictions []Prediction
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *PredictResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &r.Predictions)
	}

	var wrapper struct {
		Predictions *[]Prediction `json:"predictions"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return err
	}
	if wrapper.Predictions == nil {
		return fmt.Errorf("response has no predictions")
	}
	r.Predictions = *wrapper.Predictions
	return nil
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("forecast service returned %d: %s", e.StatusCode, e.Body)
}
