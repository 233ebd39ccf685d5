package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/supplyconnect/internal/models"
	"github.com/GTDGit/supplyconnect/internal/sse"
	"github.com/GTDGit/supplyconnect/internal/utils"
)

// PredictionRecorder persists completed prediction runs.
type PredictionRecorder interface {
	Record(ctx context.Context, run *models.PredictionRun) error
}

// WorkbenchService owns the upload slots of every shopkeeper and runs
// predictions for them. Slots of one shopkeeper share a lock; a slot admits
// at most one prediction in flight.
type WorkbenchService struct {
	mu      sync.Mutex
	benches map[uuid.UUID]*workbench

	filter       *FileFilter
	predictor    Predictor
	recorder     PredictionRecorder
	notifier     sse.SlotNotifier
	defaultSlots int
	timeout      time.Duration
	now          func() time.Time
}

type workbench struct {
	mu         sync.Mutex
	order      []string
	slots      map[string]*models.Slot
	nextIndex  int
	lastActive time.Time
}

// NewWorkbenchService constructs a WorkbenchService. Each new workbench starts
// with defaultSlots slots; timeout bounds a single predictor call.
func NewWorkbenchService(filter *FileFilter, predictor Predictor, recorder PredictionRecorder, defaultSlots int, timeout time.Duration) *WorkbenchService {
	return &WorkbenchService{
		benches:      make(map[uuid.UUID]*workbench),
		filter:       filter,
		predictor:    predictor,
		recorder:     recorder,
		notifier:     sse.NopNotifier{},
		defaultSlots: defaultSlots,
		timeout:      timeout,
		now:          time.Now,
	}
}

// SetNotifier sets the SSE notifier for live workbench updates.
func (s *WorkbenchService) SetNotifier(notifier sse.SlotNotifier) {
	s.notifier = notifier
}

func slotID(n int) string    { return "shop-" + strconv.Itoa(n) }
func slotLabel(n int) string { return "Shop " + strconv.Itoa(n) }

// acquire returns the owner's workbench, creating it on first use, with wb.mu
// held and lastActive refreshed. wb.mu is taken before s.mu is released so a
// concurrent Sweep cannot evict a workbench a caller is about to use.
func (s *WorkbenchService) acquire(owner uuid.UUID) *workbench {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	wb, ok := s.benches[owner]
	if !ok {
		wb = &workbench{slots: make(map[string]*models.Slot)}
		for i := 0; i < s.defaultSlots; i++ {
			wb.add(now)
		}
		s.benches[owner] = wb
	}
	wb.mu.Lock()
	wb.lastActive = now
	return wb
}

// add appends a new empty slot. Caller holds wb.mu or owns wb exclusively.
func (wb *workbench) add(now time.Time) *models.Slot {
	wb.nextIndex++
	slot := &models.Slot{
		ID:          slotID(wb.nextIndex),
		Label:       slotLabel(wb.nextIndex),
		Predictions: []models.Prediction{},
		UpdatedAt:   now,
	}
	wb.slots[slot.ID] = slot
	wb.order = append(wb.order, slot.ID)
	return slot
}

// snapshot copies the slots in display order. Caller holds wb.mu.
func (wb *workbench) snapshot() []models.Slot {
	out := make([]models.Slot, 0, len(wb.order))
	for _, id := range wb.order {
		out = append(out, wb.slots[id].Clone())
	}
	return out
}

func (wb *workbench) busy() bool {
	for _, slot := range wb.slots {
		if slot.Loading {
			return true
		}
	}
	return false
}

// Workbench returns the owner's slots and the chart derived from them.
func (s *WorkbenchService) Workbench(owner uuid.UUID) models.Workbench {
	wb := s.acquire(owner)
	defer wb.mu.Unlock()

	slots := wb.snapshot()
	return models.Workbench{Slots: slots, Chart: BuildChartSeries(slots)}
}

// Slot returns a copy of one slot.
func (s *WorkbenchService) Slot(owner uuid.UUID, id string) (models.Slot, error) {
	wb := s.acquire(owner)
	defer wb.mu.Unlock()

	slot, ok := wb.slots[id]
	if !ok {
		return models.Slot{}, utils.ErrSlotNotFound
	}
	return slot.Clone(), nil
}

// Chart returns the per-slot average demand series.
func (s *WorkbenchService) Chart(owner uuid.UUID) models.ChartSeries {
	return s.Workbench(owner).Chart
}

// AddSlot appends an empty slot to the owner's workbench.
func (s *WorkbenchService) AddSlot(owner uuid.UUID) models.Slot {
	wb := s.acquire(owner)
	defer wb.mu.Unlock()

	now := s.now()
	wb.lastActive = now
	slot := wb.add(now)
	log.Info().Str("owner", owner.String()).Str("slot_id", slot.ID).Msg("workbench slot added")
	return slot.Clone()
}

// RemoveSlot deletes a slot. A slot with a prediction in flight cannot be removed.
func (s *WorkbenchService) RemoveSlot(owner uuid.UUID, id string) error {
	wb := s.acquire(owner)
	defer wb.mu.Unlock()

	slot, ok := wb.slots[id]
	if !ok {
		return utils.ErrSlotNotFound
	}
	if slot.Loading {
		return utils.ErrSlotBusy
	}

	delete(wb.slots, id)
	for i, sid := range wb.order {
		if sid == id {
			wb.order = append(wb.order[:i], wb.order[i+1:]...)
			break
		}
	}
	wb.lastActive = s.now()
	log.Info().Str("owner", owner.String()).Str("slot_id", id).Msg("workbench slot removed")
	return nil
}

// SelectFile offers a file to a slot. An empty selection leaves the slot
// untouched. A file rejected by the filter returns
// *utils.UnsupportedFileTypeError and leaves the slot untouched. An accepted
// file replaces the slot's file, clears its predictions and makes any
// in-flight prediction for the previous file stale.
func (s *WorkbenchService) SelectFile(owner uuid.UUID, id string, file *models.UploadedFile) (models.Slot, error) {
	wb := s.acquire(owner)
	defer wb.mu.Unlock()

	slot, ok := wb.slots[id]
	if !ok {
		return models.Slot{}, utils.ErrSlotNotFound
	}
	if file.IsEmpty() {
		return slot.Clone(), nil
	}
	if err := s.filter.Check(file.Name, file.ContentType); err != nil {
		log.Debug().Str("slot_id", id).Str("file", file.Name).Msg("upload rejected by file filter")
		return slot.Clone(), err
	}

	if file.SHA256 == "" {
		sum := sha256.Sum256(file.Data)
		file.SHA256 = hex.EncodeToString(sum[:])
	}
	if file.Size == 0 {
		file.Size = int64(len(file.Data))
	}

	now := s.now()
	slot.File = file
	slot.FileName = file.Name
	slot.Predictions = []models.Prediction{}
	slot.Generation++
	slot.UpdatedAt = now
	wb.lastActive = now

	log.Info().
		Str("owner", owner.String()).
		Str("slot_id", id).
		Str("file", file.Name).
		Int64("size", file.Size).
		Msg("file selected")
	return slot.Clone(), nil
}

// RequestPrediction runs the predictor on the slot's selected file.
//
// It fails with utils.ErrNoFileSelected when no file is selected and with
// utils.ErrPredictionInProgress when the slot is already loading; neither
// calls the predictor. A predictor failure leaves the prior predictions in
// place and returns *utils.PredictionCallError. A result for a file that was
// replaced while the call was running is discarded with
// utils.ErrPredictionSuperseded. The returned slot reflects the state after
// the call.
func (s *WorkbenchService) RequestPrediction(ctx context.Context, owner uuid.UUID, id string) (models.Slot, error) {
	wb := s.acquire(owner)
	slot, ok := wb.slots[id]
	if !ok {
		wb.mu.Unlock()
		return models.Slot{}, utils.ErrSlotNotFound
	}
	if !slot.FileSelected() {
		snapshot := slot.Clone()
		wb.mu.Unlock()
		return snapshot, utils.ErrNoFileSelected
	}
	if slot.Loading {
		snapshot := slot.Clone()
		wb.mu.Unlock()
		return snapshot, utils.ErrPredictionInProgress
	}
	now := s.now()
	slot.Loading = true
	slot.UpdatedAt = now
	wb.lastActive = now
	generation := slot.Generation
	file := slot.File
	started := slot.Clone()
	wb.mu.Unlock()

	s.notifier.NotifyPredictionStarted(owner, started)
	log.Info().Str("owner", owner.String()).Str("slot_id", id).Str("file", file.Name).Str("predictor", s.predictor.Name()).Msg("prediction requested")

	// The call outlives a client disconnect so the loading flag is always
	// cleared by this goroutine.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	start := time.Now()
	predictions, err := s.predictor.Predict(callCtx, file)
	cancel()
	if err == nil {
		err = validatePredictions(predictions)
	}

	wb.mu.Lock()
	slot, ok = wb.slots[id]
	if !ok {
		wb.mu.Unlock()
		return models.Slot{}, utils.ErrSlotNotFound
	}
	now = s.now()
	slot.Loading = false
	slot.UpdatedAt = now
	wb.lastActive = now

	if err != nil {
		snapshot := slot.Clone()
		wb.mu.Unlock()

		callErr := &utils.PredictionCallError{SlotID: id, Err: err}
		log.Warn().Err(err).Str("owner", owner.String()).Str("slot_id", id).Dur("latency", time.Since(start)).Msg("prediction failed")
		s.notifier.NotifyPredictionFailed(owner, snapshot, err)
		return snapshot, callErr
	}

	if slot.Generation != generation {
		snapshot := slot.Clone()
		wb.mu.Unlock()

		log.Info().Str("owner", owner.String()).Str("slot_id", id).Msg("prediction discarded, file changed during call")
		return snapshot, utils.ErrPredictionSuperseded
	}

	slot.Predictions = make([]models.Prediction, len(predictions))
	copy(slot.Predictions, predictions)
	snapshot := slot.Clone()
	chart := BuildChartSeries(wb.snapshot())
	wb.mu.Unlock()

	log.Info().
		Str("owner", owner.String()).
		Str("slot_id", id).
		Int("predictions", len(predictions)).
		Float64("average_demand", AverageDemand(predictions)).
		Dur("latency", time.Since(start)).
		Msg("prediction completed")

	s.notifier.NotifyPredictionCompleted(owner, snapshot)
	s.notifier.NotifyChartUpdated(owner, chart)
	s.record(ctx, owner, snapshot, file)
	return snapshot, nil
}

func validatePredictions(predictions []models.Prediction) error {
	for _, p := range predictions {
		if math.IsNaN(p.PredictedDemand) || math.IsInf(p.PredictedDemand, 0) || p.PredictedDemand < 0 {
			return fmt.Errorf("invalid predicted demand %v for product %s", p.PredictedDemand, p.ProductID)
		}
	}
	return nil
}

func (s *WorkbenchService) record(ctx context.Context, owner uuid.UUID, slot models.Slot, file *models.UploadedFile) {
	if s.recorder == nil {
		return
	}
	run := &models.PredictionRun{
		ID:            uuid.New(),
		ShopkeeperID:  owner,
		SlotID:        slot.ID,
		FileName:      file.Name,
		FileSHA256:    file.SHA256,
		Predictor:     s.predictor.Name(),
		Predictions:   models.PredictionList(slot.Predictions),
		AverageDemand: AverageDemand(slot.Predictions),
		CreatedAt:     s.now(),
	}

	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.recorder.Record(recCtx, run); err != nil {
		log.Error().Err(err).Str("owner", owner.String()).Str("slot_id", slot.ID).Msg("failed to record prediction run")
	}
}

// Sweep evicts workbenches idle for longer than idle. Workbenches with a
// prediction in flight are kept. It returns the number evicted. Lock order is
// s.mu then wb.mu, as in acquire.
func (s *WorkbenchService) Sweep(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	evicted := 0
	for owner, wb := range s.benches {
		wb.mu.Lock()
		stale := wb.lastActive.Before(cutoff) && !wb.busy()
		wb.mu.Unlock()
		if stale {
			delete(s.benches, owner)
			evicted++
		}
	}
	return evicted
}

// ActiveWorkbenches returns the number of workbenches held in memory.
func (s *WorkbenchService) ActiveWorkbenches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.benches)
}
