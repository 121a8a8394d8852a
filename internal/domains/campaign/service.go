package campaign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liftsign/controlplane/internal/gateway"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// Common errors
var (
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrEmptyStrategy    = errors.New("strategy must contain at least one ad")
)

// ScheduleDispatcher pushes a schedule document to one device through the
// gateway.
type ScheduleDispatcher interface {
	Send(ctx context.Context, deviceID, command string, data json.RawMessage, cmdID string) (gateway.Ack, error)
}

// CampaignService defines the interface for campaign business logic
type CampaignService interface {
	CreateStrategy(ctx context.Context, req StrategyRequest) (*Campaign, error)
	Get(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context, offset, limit int) ([]Campaign, int64, error)
	Publish(ctx context.Context, campaignID string) ([]PublishResult, error)
}

type campaignService struct {
	repository CampaignRepository
	dispatcher ScheduleDispatcher
	logger     *Logger.Logger
}

func NewService(repository CampaignRepository, dispatcher ScheduleDispatcher, logger *Logger.Logger) CampaignService {
	return &campaignService{
		repository: repository,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// CreateStrategy implements CampaignService. Validation is atomic: a request
// with any malformed slot is rejected without persisting anything.
func (s *campaignService) CreateStrategy(ctx context.Context, req StrategyRequest) (*Campaign, error) {
	if len(req.AdsList) == 0 {
		return nil, ErrEmptyStrategy
	}

	doc, err := BuildSchedule(req, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	c := &Campaign{
		ID:            "cmp_" + shortID(),
		ScheduleID:    "sch_" + shortID(),
		Schedule:      *doc,
		TargetDevices: req.DevicesList,
		TimeRules:     req.TimeRules,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repository.Create(c); err != nil {
		s.logger.Errorf("error persisting campaign: %v", err)
		return nil, fmt.Errorf("failed to create campaign: %w", err)
	}

	s.logger.Infof("campaign %s created with schedule %s (%d ads, %d devices)",
		c.ID, c.ScheduleID, len(doc.Playlist), len(c.TargetDevices))
	return c, nil
}

// Get implements CampaignService
func (s *campaignService) Get(ctx context.Context, id string) (*Campaign, error) {
	c, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrCampaignNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

// List implements CampaignService
func (s *campaignService) List(ctx context.Context, offset, limit int) ([]Campaign, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repository.List(offset, limit)
}

// Publish implements CampaignService. The stored schedule is pushed to every
// target device; one device failing does not stop the fanout.
func (s *campaignService) Publish(ctx context.Context, campaignID string) ([]PublishResult, error) {
	c, err := s.Get(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(c.Schedule)
	if err != nil {
		return nil, fmt.Errorf("failed to encode schedule: %w", err)
	}

	results := make([]PublishResult, 0, len(c.TargetDevices))
	for _, deviceID := range c.TargetDevices {
		r := PublishResult{DeviceID: deviceID, OK: true}
		if _, err := s.dispatcher.Send(ctx, deviceID, "UPDATE_SCHEDULE", payload, ""); err != nil {
			s.logger.Warnf("schedule push to %s failed: %v", deviceID, err)
			r.OK = false
			r.Error = err.Error()
		}
		results = append(results, r)
	}

	s.logger.Infof("campaign %s published to %d devices", campaignID, len(results))
	return results, nil
}

func shortID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
