package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"pricing-service/internal/dataset"
	"pricing-service/internal/metrics"
	"pricing-service/internal/models"
	"pricing-service/internal/storage"
)

// joinSuffix renames sales-side columns that collide with inventory-side
// names in the joined dataset.
const joinSuffix = "_sales"

// RunRecorder persists run-history metadata. It is optional; a nil recorder
// disables history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.PricingRun) error
}

// EventPublisher announces completed runs. Optional, best-effort.
type EventPublisher interface {
	PublishRunCompleted(ctx context.Context, runID string, skuCount int, costPriceFactor float64) error
}

// RecommendationService runs the pricing pipeline: load both reports from
// blob storage, normalize and inner-join them on sku, derive metrics and
// classify each row, and write every recommendation to the durable store.
// The pipeline is strictly sequential; the first fatal error aborts the run
// and earlier writes are not rolled back.
type RecommendationService struct {
	objects   storage.ObjectStore
	store     storage.RecommendationStore
	runs      RunRecorder
	publisher EventPublisher
	bucket    string
	logger    *logrus.Logger
}

func NewRecommendationService(objects storage.ObjectStore, store storage.RecommendationStore, bucket string, logger *logrus.Logger) *RecommendationService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RecommendationService{
		objects: objects,
		store:   store,
		bucket:  bucket,
		logger:  logger,
	}
}

// WithRunRecorder enables run-history persistence.
func (s *RecommendationService) WithRunRecorder(runs RunRecorder) *RecommendationService {
	s.runs = runs
	return s
}

// WithEventPublisher enables run-completed events.
func (s *RecommendationService) WithEventPublisher(publisher EventPublisher) *RecommendationService {
	s.publisher = publisher
	return s
}

// Run executes one pricing run. This is the direct-invocation entrypoint;
// the HTTP handler is a thin wrapper around it.
func (s *RecommendationService) Run(ctx context.Context, req models.RunRequest) (*models.RunResponse, error) {
	if req.InventoryKey == "" {
		return nil, fmt.Errorf("inventory_s3_key is required")
	}
	if req.SalesKey == "" {
		return nil, fmt.Errorf("sales_s3_key is required")
	}

	costPriceFactor := req.Factor()
	runID := time.Now().UTC().Format(time.RFC3339Nano)
	started := time.Now()

	log := s.logger.WithFields(logrus.Fields{
		"runId":           runID,
		"inventoryKey":    req.InventoryKey,
		"salesKey":        req.SalesKey,
		"costPriceFactor": costPriceFactor,
	})
	log.Info("Starting pricing run")

	resp, err := s.run(ctx, req, costPriceFactor, runID)
	if err != nil {
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		s.recordRun(ctx, req, costPriceFactor, runID, 0, err)
		log.WithError(err).Error("Pricing run failed")
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues("completed").Inc()
	metrics.RunDuration.Observe(time.Since(started).Seconds())
	s.recordRun(ctx, req, costPriceFactor, runID, resp.SKUCount, nil)

	if s.publisher != nil {
		if err := s.publisher.PublishRunCompleted(ctx, runID, resp.SKUCount, costPriceFactor); err != nil {
			log.WithError(err).Warn("Failed to publish run-completed event")
		}
	}

	log.WithField("skuCount", resp.SKUCount).Info("Pricing run completed")
	return resp, nil
}

func (s *RecommendationService) run(ctx context.Context, req models.RunRequest, costPriceFactor float64, runID string) (*models.RunResponse, error) {
	invRaw, err := s.objects.Get(ctx, s.bucket, req.InventoryKey)
	if err != nil {
		return nil, fmt.Errorf("load inventory report: %w", err)
	}
	salesRaw, err := s.objects.Get(ctx, s.bucket, req.SalesKey)
	if err != nil {
		return nil, fmt.Errorf("load sales report: %w", err)
	}

	inventory, err := dataset.Parse(invRaw, req.InventoryKey)
	if err != nil {
		return nil, fmt.Errorf("parse inventory report: %w", err)
	}
	sales, err := dataset.Parse(salesRaw, req.SalesKey)
	if err != nil {
		return nil, fmt.Errorf("parse sales report: %w", err)
	}

	joined, err := inventory.InnerJoin(sales, ColSKU, joinSuffix)
	if err != nil {
		return nil, err
	}

	recommendations := make([]models.Recommendation, 0, len(joined.Rows))
	for _, row := range joined.Rows {
		rec, err := BuildRecommendation(row, costPriceFactor, runID, time.Now())
		if err != nil {
			return nil, err
		}
		if err := s.store.Put(ctx, rec); err != nil {
			return nil, err
		}
		metrics.RecommendationsTotal.WithLabelValues(string(rec.Strategy)).Inc()
		recommendations = append(recommendations, rec)
	}

	return &models.RunResponse{
		RunID:           runID,
		SKUCount:        len(recommendations),
		Recommendations: recommendations,
	}, nil
}

// recordRun writes run-history metadata. History is observability only, so
// failures are logged and never surface to the caller.
func (s *RecommendationService) recordRun(ctx context.Context, req models.RunRequest, costPriceFactor float64, runID string, skuCount int, runErr error) {
	if s.runs == nil {
		return
	}

	run := &models.PricingRun{
		RunID:           runID,
		InventoryKey:    req.InventoryKey,
		SalesKey:        req.SalesKey,
		CostPriceFactor: costPriceFactor,
		SKUCount:        skuCount,
		Status:          models.PricingRunStatusCompleted,
	}
	if runErr != nil {
		msg := runErr.Error()
		run.Status = models.PricingRunStatusFailed
		run.Error = &msg
	}

	if err := s.runs.RecordRun(ctx, run); err != nil {
		s.logger.WithField("runId", runID).WithError(err).Warn("Failed to record run history")
	}
}
