package sse

import (
	"time"

	"github.com/google/uuid"

	"github.com/GTDGit/supplyconnect/internal/models"
)

// SlotNotifier is the interface the workbench uses to emit live updates.
type SlotNotifier interface {
	NotifyPredictionStarted(ownerID uuid.UUID, slot models.Slot)
	NotifyPredictionCompleted(ownerID uuid.UUID, slot models.Slot)
	NotifyPredictionFailed(ownerID uuid.UUID, slot models.Slot, err error)
	NotifyChartUpdated(ownerID uuid.UUID, chart models.ChartSeries)
}

// HubNotifier implements SlotNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyPredictionStarted(ownerID uuid.UUID, slot models.Slot) {
	n.publish(ownerID, slotToEvent(EventPredictionStarted, slot))
}

func (n *HubNotifier) NotifyPredictionCompleted(ownerID uuid.UUID, slot models.Slot) {
	n.publish(ownerID, slotToEvent(EventPredictionCompleted, slot))
}

func (n *HubNotifier) NotifyPredictionFailed(ownerID uuid.UUID, slot models.Slot, err error) {
	event := slotToEvent(EventPredictionFailed, slot)
	if err != nil {
		event.Error = err.Error()
	}
	n.publish(ownerID, event)
}

func (n *HubNotifier) NotifyChartUpdated(ownerID uuid.UUID, chart models.ChartSeries) {
	n.publish(ownerID, &WorkbenchEvent{
		Event:     EventChartUpdated,
		Chart:     &chart,
		Timestamp: time.Now(),
	})
}

func (n *HubNotifier) publish(ownerID uuid.UUID, event *WorkbenchEvent) {
	if !n.hub.HasOwner(ownerID) {
		return
	}
	n.hub.Publish(ownerID, event)
}

func slotToEvent(eventType EventType, slot models.Slot) *WorkbenchEvent {
	return &WorkbenchEvent{
		Event:       eventType,
		SlotID:      slot.ID,
		FileName:    slot.FileName,
		Loading:     slot.Loading,
		Predictions: slot.Predictions,
		Timestamp:   time.Now(),
	}
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyPredictionStarted(uuid.UUID, models.Slot)       {}
func (NopNotifier) NotifyPredictionCompleted(uuid.UUID, models.Slot)     {}
func (NopNotifier) NotifyPredictionFailed(uuid.UUID, models.Slot, error) {}
func (NopNotifier) NotifyChartUpdated(uuid.UUID, models.ChartSeries)     {}
