package device

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// Common errors
var (
	ErrDeviceNotFound = errors.New("device not found")
)

// Stats is the online-fleet summary for the dashboard.
type Stats struct {
	OnlineCount int      `json:"online_count"`
	Devices     []string `json:"devices"`
	ServerTime  string   `json:"server_time"`
}

// DeviceService defines the interface for device business logic
type DeviceService interface {
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
	Get(ctx context.Context, id string) (*Device, error)
	List(ctx context.Context, offset, limit int, query string) ([]Device, int64, error)
	Stats(ctx context.Context) (*Stats, error)
	VerifyToken(ctx context.Context, deviceID, token string) (bool, error)
}

type deviceService struct {
	repository DeviceRepository
	tokens     TokenStore
	logger     *Logger.Logger
}

func NewService(repository DeviceRepository, tokens TokenStore, logger *Logger.Logger) DeviceService {
	return &deviceService{
		repository: repository,
		tokens:     tokens,
		logger:     logger,
	}
}

// Register implements DeviceService. The opaque token lands in the KV store
// so the gateway can authenticate the device's websocket handshake; the row
// is persisted best effort afterwards.
func (s *deviceService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	deviceID := "dev_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	token := "devtok_" + strings.ReplaceAll(uuid.New().String(), "-", "")

	if err := s.tokens.SaveToken(deviceID, token); err != nil {
		return nil, fmt.Errorf("failed to store device token: %w", err)
	}

	now := time.Now()
	d := &Device{
		ID:              deviceID,
		Name:            req.Name,
		City:            req.City,
		Building:        req.Building,
		Lon:             req.Lon,
		Lat:             req.Lat,
		FirmwareVersion: req.FirmwareVersion,
		Tags:            req.Tags,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	if err := s.repository.Create(d); err != nil {
		// The token is already live; registration still succeeds so the
		// device can connect, but the row is missing until re-registration.
		s.logger.Errorf("device row for %s not persisted: %v", deviceID, err)
	}

	s.logger.Infof("device %s registered (%s)", deviceID, req.Name)
	return &RegisterResponse{DeviceID: deviceID, Token: token}, nil
}

// Get implements DeviceService
func (s *deviceService) Get(ctx context.Context, id string) (*Device, error) {
	d, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrDeviceNotFound) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}
	return d, nil
}

// List implements DeviceService
func (s *deviceService) List(ctx context.Context, offset, limit int, query string) ([]Device, int64, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.repository.List(offset, limit, query)
}

// Stats implements DeviceService
func (s *deviceService) Stats(ctx context.Context) (*Stats, error) {
	online, err := s.tokens.OnlineDevices()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence flags: %w", err)
	}
	return &Stats{
		OnlineCount: len(online),
		Devices:     online,
		ServerTime:  time.Now().Format("15:04:05"),
	}, nil
}

// VerifyToken implements DeviceService
func (s *deviceService) VerifyToken(ctx context.Context, deviceID, token string) (bool, error) {
	return s.tokens.CheckToken(deviceID, token)
}
