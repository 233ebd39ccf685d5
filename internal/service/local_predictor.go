package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// SalesRecord is one row of an uploaded sales file.
type SalesRecord struct {
	ProductID   string
	ProductName string
	Date        string
	Quantity    float64
}

// Header aliases accepted in sales files.
var salesColumns = map[string][]string{
	"product_id":   {"product_id", "productid", "sku", "sku_code", "item_id", "id"},
	"product_name": {"product_name", "productname", "name", "product", "item_name"},
	"quantity":     {"quantity", "qty", "sales", "units_sold", "sold"},
	"date":         {"date", "sale_date", "day"},
}

// ParseSalesCSV reads a sales file. UTF-8 (with or without BOM) and UTF-16
// with BOM are accepted. product_id and quantity columns are required.
func ParseSalesCSV(r io.Reader) ([]SalesRecord, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	cr := csv.NewReader(transform.NewReader(r, decoder))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("sales file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := resolveSalesColumns(header)
	if cols["product_id"] < 0 {
		return nil, errors.New("sales file has no product_id column")
	}
	if cols["quantity"] < 0 {
		return nil, errors.New("sales file has no quantity column")
	}

	var records []SalesRecord
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlankRow(row) {
			continue
		}

		id := field(row, cols["product_id"])
		if id == "" {
			return nil, fmt.Errorf("line %d: missing product_id", line)
		}
		qty, err := strconv.ParseFloat(field(row, cols["quantity"]), 64)
		if err != nil || qty < 0 {
			return nil, fmt.Errorf("line %d: invalid quantity %q", line, field(row, cols["quantity"]))
		}

		rec := SalesRecord{
			ProductID:   id,
			ProductName: field(row, cols["product_name"]),
			Date:        field(row, cols["date"]),
			Quantity:    qty,
		}
		if rec.ProductName == "" {
			rec.ProductName = id
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.New("sales file has no data rows")
	}
	return records, nil
}

func resolveSalesColumns(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		key = strings.ReplaceAll(key, " ", "_")
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}

	cols := make(map[string]int, len(salesColumns))
	for name, aliases := range salesColumns {
		cols[name] = -1
		for _, a := range aliases {
			if i, ok := idx[a]; ok {
				cols[name] = i
				break
			}
		}
	}
	return cols
}

func field(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// ForecastDemand predicts each product's demand as its mean quantity per
// sales row and returns the topN products by demand.
func ForecastDemand(records []SalesRecord, topN int) []models.Prediction {
	type agg struct {
		name  string
		sum   float64
		count int
	}
	byID := make(map[string]*agg)
	var order []string
	for _, r := range records {
		a, ok := byID[r.ProductID]
		if !ok {
			a = &agg{name: r.ProductName}
			byID[r.ProductID] = a
			order = append(order, r.ProductID)
		}
		a.sum += r.Quantity
		a.count++
	}

	out := make([]models.Prediction, 0, len(order))
	for _, id := range order {
		a := byID[id]
		out = append(out, models.Prediction{
			ProductID:       id,
			ProductName:     a.name,
			PredictedDemand: a.sum / float64(a.count),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedDemand > out[j].PredictedDemand
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// LocalPredictor forecasts demand in-process from the uploaded sales file.
type LocalPredictor struct {
	topN int
}

// NewLocalPredictor constructs a LocalPredictor returning at most topN predictions.
func NewLocalPredictor(topN int) *LocalPredictor {
	return &LocalPredictor{topN: topN}
}

func (p *LocalPredictor) Name() string { return "local" }

func (p *LocalPredictor) Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	records, err := ParseSalesCSV(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Name, err)
	}
	return ForecastDemand(records, p.topN), nil
}
