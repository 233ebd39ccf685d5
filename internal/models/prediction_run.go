package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PredictionRun is a persisted record of a completed slot prediction.
type PredictionRun struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ShopkeeperID  uuid.UUID      `db:"shopkeeper_id" json:"shopkeeperId"`
	SlotID        string         `db:"slot_id" json:"slotId"`
	FileName      string         `db:"file_name" json:"fileName"`
	FileSHA256    string         `db:"file_sha256" json:"fileSha256"`
	Predictor     string         `db:"predictor" json:"predictor"`
	Predictions   PredictionList `db:"predictions" json:"predictions"`
	AverageDemand float64        `db:"average_demand" json:"averageDemand"`
	CreatedAt     time.Time      `db:"created_at" json:"createdAt"`
}

// PredictionList is stored as a JSONB column.
type PredictionList []Prediction

// Value implements driver.Valuer.
func (l PredictionList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner.
func (l *PredictionList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = PredictionList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for PredictionList")
	}
	return json.Unmarshal(raw, l)
}
