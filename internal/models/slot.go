package models

import "time"

// UploadedFile is a sales file accepted into a workbench slot.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
	SHA256      string
}

// IsEmpty reports whether the selection carries no file at all.
func (f *UploadedFile) IsEmpty() bool {
	return f == nil || (f.Name == "" && len(f.Data) == 0)
}

// Prediction is one product-level demand forecast returned by a predictor.
type Prediction struct {
	ProductID       string  `json:"product_id"`
	ProductName     string  `json:"product_name"`
	PredictedDemand float64 `json:"predicted_demand"`
}

// Slot is one upload/prediction lane of a shopkeeper workbench.
type Slot struct {
	ID          string        `json:"id"`
	Label       string        `json:"label"`
	FileName    string        `json:"fileName"`
	File        *UploadedFile `json:"-"`
	Predictions []Prediction  `json:"predictions"`
	Loading     bool          `json:"isLoading"`
	Generation  uint64        `json:"-"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// FileSelected reports whether a file has been accepted into the slot.
func (s *Slot) FileSelected() bool {
	return s.File != nil
}

// Clone returns a copy that shares no mutable state with s.
// The uploaded file is immutable after intake and is shared.
func (s *Slot) Clone() Slot {
	cp := *s
	cp.Predictions = make([]Prediction, len(s.Predictions))
	copy(cp.Predictions, s.Predictions)
	return cp
}

// ChartSeries is the per-slot average demand comparison.
type ChartSeries struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// Workbench is the serialized view of a shopkeeper's slots.
type Workbench struct {
	Slots []Slot      `json:"slots"`
	Chart ChartSeries `json:"chart"`
}
