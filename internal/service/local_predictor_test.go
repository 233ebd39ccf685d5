package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/GTDGit/supplyconnect/internal/models"
)

const salesCSV = `date,product_id,product_name,quantity
2024-01-01,P1,Rice 5kg,10
2024-01-02,P1,Rice 5kg,20
2024-01-01,P2,Cooking Oil,40
2024-01-01,P3,Sugar,5

2024-01-02,P3,Sugar,7
`

func TestParseSalesCSV(t *testing.T) {
	records, err := ParseSalesCSV(strings.NewReader(salesCSV))
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, SalesRecord{ProductID: "P1", ProductName: "Rice 5kg", Date: "2024-01-01", Quantity: 10}, records[0])
}

func TestParseSalesCSV_BOMAndAliases(t *testing.T) {
	data := "\ufeffSKU,Name,Qty\nA-1,Soap,3\n"
	records, err := ParseSalesCSV(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A-1", records[0].ProductID)
	assert.Equal(t, "Soap", records[0].ProductName)
}

func TestParseSalesCSV_UTF16(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, _, err := transform.Bytes(enc, []byte("product_id,quantity\nP9,4\n"))
	require.NoError(t, err)

	records, err := ParseSalesCSV(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P9", records[0].ProductID)
	assert.Equal(t, "P9", records[0].ProductName)
	assert.Equal(t, 4.0, records[0].Quantity)
}

func TestParseSalesCSV_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":            "",
		"no product id":    "name,quantity\nRice,1\n",
		"no quantity":      "product_id,name\nP1,Rice\n",
		"bad quantity":     "product_id,quantity\nP1,many\n",
		"negative":         "product_id,quantity\nP1,-2\n",
		"header only":      "product_id,quantity\n",
		"missing id value": "product_id,quantity\n,3\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSalesCSV(strings.NewReader(data))
			assert.Error(t, err)
		})
	}
}

func TestForecastDemand_RanksAndTrims(t *testing.T) {
	records, err := ParseSalesCSV(strings.NewReader(salesCSV))
	require.NoError(t, err)

	got := ForecastDemand(records, 2)
	require.Len(t, got, 2)
	assert.Equal(t, "P2", got[0].ProductID)
	assert.Equal(t, 40.0, got[0].PredictedDemand)
	assert.Equal(t, "P1", got[1].ProductID)
	assert.Equal(t, 15.0, got[1].PredictedDemand)
}

func TestLocalPredictor_Predict(t *testing.T) {
	p := NewLocalPredictor(5)
	got, err := p.Predict(context.Background(), &models.UploadedFile{Name: "sales.csv", Data: []byte(salesCSV)})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Sugar", got[2].ProductName)
	assert.Equal(t, 6.0, got[2].PredictedDemand)
}
