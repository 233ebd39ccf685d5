package service

import (
	"context"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/pkg/forecast"
)

// RemotePredictor delegates to the forecasting service over HTTP.
type RemotePredictor struct {
	client *forecast.Client
}

// NewRemotePredictor constructs a RemotePredictor.
func NewRemotePredictor(client *forecast.Client) *RemotePredictor {
	return &RemotePredictor{client: client}
}

func (p *RemotePredictor) Name() string { return "remote" }

func (p *RemotePredictor) Predict(ctx context.Context, file *models.UploadedFile) ([]models.Prediction, error) {
	resp, err := p.client.Predict(ctx, file.Name, file.Data)
	if err != nil {
		return nil, err
	}
	out := make([]models.Prediction, len(resp))
	for i, r := range resp {
		out[i] = models.Prediction{
			ProductID:       r.ProductID,
			ProductName:     r.ProductName,
			PredictedDemand: r.PredictedDemand,
		}
	}
	return out, nil
}
