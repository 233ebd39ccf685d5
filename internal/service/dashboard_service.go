package service

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// topProductCount is how many products the dashboard names before grouping
// the rest under "Others".
const topProductCount = 4

// saleDateLayouts are the date formats accepted in the date column.
var saleDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

var weekdayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// SalesStore keeps dated sales rows per uploaded file.
type SalesStore interface {
	// ReplaceFileSales swaps every row stored for the file hash with records.
	ReplaceFileSales(ctx context.Context, shopkeeperID uuid.UUID, sha256 string, records []models.SaleRecord) error
	// ListSales returns rows with from <= sale_date < to.
	ListSales(ctx context.Context, shopkeeperID uuid.UUID, from, to time.Time) ([]models.SaleRecord, error)
}

// RunCounter counts recorded prediction runs.
type RunCounter interface {
	CountByOwnerBetween(ctx context.Context, shopkeeperID uuid.UUID, from, to time.Time) (int, error)
}

// DashboardService builds the shopkeeper sales overview from uploaded sales
// files and the prediction history.
type DashboardService struct {
	sales SalesStore
	runs  RunCounter
	now   func() time.Time
}

// NewDashboardService creates a new DashboardService. runs may be nil.
func NewDashboardService(sales SalesStore, runs RunCounter) *DashboardService {
	return &DashboardService{sales: sales, runs: runs, now: time.Now}
}

// IngestUpload stores the dated rows of an uploaded sales file. Rows without a
// readable date are skipped. Uploading the same file again replaces its rows.
// It returns the number of rows stored.
func (s *DashboardService) IngestUpload(ctx context.Context, shopkeeperID uuid.UUID, file *models.UploadedFile) (int, error) {
	if file.IsEmpty() || file.SHA256 == "" {
		return 0, nil
	}
	parsed, err := ParseSalesCSV(bytes.NewReader(file.Data))
	if err != nil {
		return 0, err
	}

	records := make([]models.SaleRecord, 0, len(parsed))
	skipped := 0
	for _, r := range parsed {
		day, ok := parseSaleDate(r.Date)
		if !ok {
			skipped++
			continue
		}
		records = append(records, models.SaleRecord{
			ShopkeeperID: shopkeeperID,
			FileSHA256:   file.SHA256,
			ProductID:    r.ProductID,
			ProductName:  r.ProductName,
			SaleDate:     day,
			Quantity:     r.Quantity,
		})
	}
	if len(records) == 0 {
		return 0, nil
	}

	if err := s.sales.ReplaceFileSales(ctx, shopkeeperID, file.SHA256, records); err != nil {
		return 0, err
	}
	log.Info().
		Str("shopkeeper_id", shopkeeperID.String()).
		Str("file", file.Name).
		Int("rows", len(records)).
		Int("skipped", skipped).
		Msg("sales rows ingested")
	return len(records), nil
}

func parseSaleDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range saleDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return startOfDay(t), true
		}
	}
	return time.Time{}, false
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDashboardRange validates a range query value. An empty value means a week.
func ParseDashboardRange(v string) (models.DashboardRange, error) {
	switch r := models.DashboardRange(strings.ToLower(strings.TrimSpace(v))); r {
	case "":
		return models.DashboardRangeWeek, nil
	case models.DashboardRangeWeek, models.DashboardRangeMonth, models.DashboardRangeYear:
		return r, nil
	default:
		return "", utils.ErrInvalidRange
	}
}

// bucket is one chart point of a window.
type bucket struct {
	label string
	from  time.Time
	to    time.Time
}

// window returns the buckets of the range ending today and the start of the
// equally long window before it.
func window(r models.DashboardRange, now time.Time) (buckets []bucket, prevFrom time.Time) {
	today := startOfDay(now)
	switch r {
	case models.DashboardRangeYear:
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)
		for i := 0; i < 12; i++ {
			from := first.AddDate(0, i, 0)
			buckets = append(buckets, bucket{label: from.Format("Jan"), from: from, to: from.AddDate(0, 1, 0)})
		}
		return buckets, first.AddDate(0, -12, 0)
	case models.DashboardRangeMonth:
		first := today.AddDate(0, 0, -29)
		for i := 0; i < 30; i++ {
			from := first.AddDate(0, 0, i)
			buckets = append(buckets, bucket{label: from.Format("Jan 2"), from: from, to: from.AddDate(0, 0, 1)})
		}
		return buckets, first.AddDate(0, 0, -30)
	default:
		first := today.AddDate(0, 0, -6)
		for i := 0; i < 7; i++ {
			from := first.AddDate(0, 0, i)
			buckets = append(buckets, bucket{label: from.Format("Mon"), from: from, to: from.AddDate(0, 0, 1)})
		}
		return buckets, first.AddDate(0, 0, -7)
	}
}

// totals summarises sales rows of one window.
type totals struct {
	units    float64
	orders   int
	products int
}

func summarise(records []models.SaleRecord) totals {
	seen := map[string]bool{}
	t := totals{orders: len(records)}
	for _, r := range records {
		t.units += r.Quantity
		seen[r.ProductID] = true
	}
	t.products = len(seen)
	return t
}

func (t totals) averageOrder() float64 {
	if t.orders == 0 {
		return 0
	}
	return t.units / float64(t.orders)
}

// Dashboard builds the overview for the range ending today. An unknown range
// returns utils.ErrInvalidRange.
func (s *DashboardService) Dashboard(ctx context.Context, shopkeeperID uuid.UUID, rangeName string) (*models.Dashboard, error) {
	r, err := ParseDashboardRange(rangeName)
	if err != nil {
		return nil, err
	}

	buckets, prevFrom := window(r, s.now().UTC())
	from, to := buckets[0].from, buckets[len(buckets)-1].to

	rows, err := s.sales.ListSales(ctx, shopkeeperID, prevFrom, to)
	if err != nil {
		return nil, err
	}
	var current, previous []models.SaleRecord
	for _, row := range rows {
		if row.SaleDate.Before(from) {
			previous = append(previous, row)
		} else {
			current = append(current, row)
		}
	}

	cur, prev := summarise(current), summarise(previous)
	stats := models.DashboardStats{
		TotalSales:         round1(cur.units),
		SalesGrowth:        growth(cur.units, prev.units),
		TotalOrders:        cur.orders,
		OrdersGrowth:       growth(float64(cur.orders), float64(prev.orders)),
		TotalProducts:      cur.products,
		ProductsGrowth:     growth(float64(cur.products), float64(prev.products)),
		AverageOrderSize:   round1(cur.averageOrder()),
		AverageOrderGrowth: growth(cur.averageOrder(), prev.averageOrder()),
	}

	if s.runs != nil {
		curRuns, err := s.runs.CountByOwnerBetween(ctx, shopkeeperID, from, to)
		if err != nil {
			return nil, err
		}
		prevRuns, err := s.runs.CountByOwnerBetween(ctx, shopkeeperID, prevFrom, from)
		if err != nil {
			return nil, err
		}
		stats.PredictionRuns = curRuns
		stats.PredictionRunsGrowth = growth(float64(curRuns), float64(prevRuns))
	}

	return &models.Dashboard{
		Range:       r,
		From:        from,
		To:          to,
		Stats:       stats,
		Sales:       salesSeries(buckets, current),
		TopProducts: topProducts(current),
		OrdersByDay: ordersByDay(current),
	}, nil
}

func salesSeries(buckets []bucket, records []models.SaleRecord) models.Series {
	series := models.Series{Labels: make([]string, len(buckets)), Data: make([]float64, len(buckets))}
	for i, b := range buckets {
		series.Labels[i] = b.label
	}
	for _, r := range records {
		i := sort.Search(len(buckets), func(i int) bool { return r.SaleDate.Before(buckets[i].to) })
		if i < len(buckets) && !r.SaleDate.Before(buckets[i].from) {
			series.Data[i] += r.Quantity
		}
	}
	for i := range series.Data {
		series.Data[i] = round1(series.Data[i])
	}
	return series
}

// topProducts ranks products by units sold. Products beyond the first
// topProductCount are grouped as "Others".
func topProducts(records []models.SaleRecord) []models.ProductShare {
	byProduct := map[string]*models.ProductShare{}
	var total float64
	for _, r := range records {
		share, ok := byProduct[r.ProductID]
		if !ok {
			share = &models.ProductShare{Name: r.ProductName}
			byProduct[r.ProductID] = share
		}
		share.Quantity += r.Quantity
		total += r.Quantity
	}

	ranked := make([]models.ProductShare, 0, len(byProduct))
	for _, share := range byProduct {
		ranked = append(ranked, *share)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].Name < ranked[j].Name
	})

	if len(ranked) > topProductCount {
		others := models.ProductShare{Name: "Others"}
		for _, share := range ranked[topProductCount:] {
			others.Quantity += share.Quantity
		}
		ranked = append(ranked[:topProductCount], others)
	}
	for i := range ranked {
		if total > 0 {
			ranked[i].Percentage = round1(ranked[i].Quantity / total * 100)
		}
		ranked[i].Quantity = round1(ranked[i].Quantity)
	}
	return ranked
}

// ordersByDay counts rows per weekday, Monday first.
func ordersByDay(records []models.SaleRecord) models.Series {
	series := models.Series{Labels: weekdayLabels, Data: make([]float64, 7)}
	for _, r := range records {
		series.Data[(int(r.SaleDate.Weekday())+6)%7]++
	}
	return series
}

// growth is the percentage change from prev to cur. Growth from nothing is
// reported as 100 and no change from nothing as 0.
func growth(cur, prev float64) float64 {
	if prev == 0 {
		if cur == 0 {
			return 0
		}
		return 100
	}
	return round1((cur - prev) / prev * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

