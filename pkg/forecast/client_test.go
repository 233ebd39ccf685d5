package forecast

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PredictArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PredictPath, r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "sales.csv", header.Filename)
		assert.Equal(t, "product_id,quantity\nP1,3\n", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"product_id":"P1","product_name":"Rice","predicted_demand":12.5}]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "key", time.Second)
	got, err := c.Predict(context.Background(), "sales.csv", []byte("product_id,quantity\nP1,3\n"))
	require.NoError(t, err)
	assert.Equal(t, []Prediction{{ProductID: "P1", ProductName: "Rice", PredictedDemand: 12.5}}, got)
}

func TestClient_PredictWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"predictions":[{"product_id":"P2","product_name":"Oil","predicted_demand":4}]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL, "", time.Second).Predict(context.Background(), "a.csv", []byte("x"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "P2", got[0].ProductID)
}

func TestClient_PredictNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Predict(context.Background(), "a.csv", []byte("x"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "model not loaded")
}

func TestClient_PredictMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", time.Second).Predict(context.Background(), "a.csv", []byte("x"))
	require.Error(t, err)
}

func TestClient_Health(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, HealthPath, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, NewClient(srv.URL, "", time.Second).Health(context.Background()))
}
