package material

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/liftsign/controlplane/pkg/Logger"
)

// Common errors
var (
	ErrMaterialNotFound  = errors.New("material not found")
	ErrInvalidUpload     = errors.New("invalid upload request")
	ErrNonTerminalStatus = errors.New("transcode callback status must be done or failed")
	ErrUnknownStatus     = errors.New("unknown material status")
)

// UploadRequest carries the multipart upload fields.
type UploadRequest struct {
	FileName   string
	Content    []byte
	Advertiser string
	UploaderID string
	Tags       []string
}

// TranscodeCallbackRequest is what the external transcoder posts back when a
// job finishes.
type TranscodeCallbackRequest struct {
	Status     MaterialStatus `json:"status" binding:"required"`
	Duration   int            `json:"duration,omitempty"`
	Type       string         `json:"type,omitempty"`
	OutputPath string         `json:"output_path,omitempty"`
	Message    string         `json:"message,omitempty"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// MaterialService defines the interface for material business logic
type MaterialService interface {
	Upload(ctx context.Context, req UploadRequest) (*Material, error)
	Get(ctx context.Context, id string) (*Material, error)
	List(ctx context.Context, offset, limit int) ([]Material, int64, error)
	UpdateStatus(ctx context.Context, id string, newStatus MaterialStatus) (*Material, error)
	ApplyTranscodeCallback(ctx context.Context, id string, req TranscodeCallbackRequest) (*Material, error)
	Delete(ctx context.Context, id string) error
}

type materialService struct {
	repository MaterialRepository
	storageDir string
	logger     *Logger.Logger

	// transitionMu serializes every read-check-write status transition. The
	// repository mutex only covers single calls; without this two writers
	// reading the same stale status could both pass the edge check and one
	// of them overwrite a terminal state.
	transitionMu sync.Mutex
}

func NewService(repository MaterialRepository, storageDir string, logger *Logger.Logger) MaterialService {
	return &materialService{
		repository: repository,
		storageDir: storageDir,
		logger:     logger,
	}
}

// Upload implements MaterialService. The file is written under the storage
// dir and the record starts life in the uploaded state.
func (s *materialService) Upload(ctx context.Context, req UploadRequest) (*Material, error) {
	if req.FileName == "" || len(req.Content) == 0 {
		return nil, ErrInvalidUpload
	}

	sum := md5.Sum(req.Content)
	id := "mat_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]

	if err := os.MkdirAll(s.storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to prepare storage dir: %w", err)
	}
	path := filepath.Join(s.storageDir, id+"_"+filepath.Base(req.FileName))
	if err := os.WriteFile(path, req.Content, 0o644); err != nil {
		return nil, fmt.Errorf("failed to store material file: %w", err)
	}

	now := time.Now()
	m := &Material{
		ID:          id,
		FileName:    req.FileName,
		MD5:         hex.EncodeToString(sum[:]),
		SizeBytes:   int64(len(req.Content)),
		Advertiser:  req.Advertiser,
		UploaderID:  req.UploaderID,
		Status:      StatusUploaded,
		StoragePath: path,
		Tags:        req.Tags,
		Extra:       map[string]any{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.Create(m); err != nil {
		s.logger.Errorf("error persisting material %s: %v", id, err)
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Infof("material %s uploaded (%d bytes, md5 %s)", id, m.SizeBytes, m.MD5)
	return m, nil
}

// Get implements MaterialService
func (s *materialService) Get(ctx context.Context, id string) (*Material, error) {
	m, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return m, nil
}

// List implements MaterialService
func (s *materialService) List(ctx context.Context, offset, limit int) ([]Material, int64, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repository.List(offset, limit)
}

// UpdateStatus implements MaterialService. Only edges of the status machine
// may be taken; a self-transition is a persisted no-op.
func (s *materialService) UpdateStatus(ctx context.Context, id string, newStatus MaterialStatus) (*Material, error) {
	if !newStatus.IsValid() {
		return nil, ErrUnknownStatus
	}

	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	m, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material for status update: %w", err)
	}

	if err := CanTransition(m.Status, newStatus); err != nil {
		return nil, err
	}

	m.Status = newStatus
	m.UpdatedAt = time.Now()
	if err := s.repository.Update(m); err != nil {
		return nil, fmt.Errorf("failed to persist status update: %w", err)
	}

	s.logger.Infof("material %s status -> %s", id, newStatus)
	return m, nil
}

// ApplyTranscodeCallback implements MaterialService. Enrichment merge order:
// existing extra < payload extra map < explicit payload fields.
func (s *materialService) ApplyTranscodeCallback(ctx context.Context, id string, req TranscodeCallbackRequest) (*Material, error) {
	if req.Status != StatusDone && req.Status != StatusFailed {
		return nil, ErrNonTerminalStatus
	}

	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	m, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return nil, ErrMaterialNotFound
		}
		return nil, fmt.Errorf("failed to get material for transcode callback: %w", err)
	}

	if err := CanTransition(m.Status, req.Status); err != nil {
		return nil, err
	}

	if m.Extra == nil {
		m.Extra = map[string]any{}
	}
	for k, v := range req.Extra {
		m.Extra[k] = v
	}
	if req.Duration > 0 {
		m.DurationSec = req.Duration
		m.Extra["duration"] = req.Duration
	}
	if req.Type != "" {
		m.Type = req.Type
		m.Extra["type"] = req.Type
	}
	if req.OutputPath != "" {
		m.Extra["output_path"] = req.OutputPath
	}
	if req.Message != "" {
		m.Extra["message"] = req.Message
	}

	m.Status = req.Status
	m.UpdatedAt = time.Now()
	if err := s.repository.Update(m); err != nil {
		return nil, fmt.Errorf("failed to persist transcode result: %w", err)
	}

	s.logger.Infof("transcode callback applied to %s: %s", id, req.Status)
	return m, nil
}

// Delete implements MaterialService. The backing file is removed with the
// record.
func (s *materialService) Delete(ctx context.Context, id string) error {
	m, err := s.repository.GetByID(id)
	if err != nil {
		if errors.Is(err, ErrMaterialNotFound) {
			return ErrMaterialNotFound
		}
		return fmt.Errorf("failed to get material for delete: %w", err)
	}

	if m.StoragePath != "" {
		if err := os.Remove(m.StoragePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warnf("could not remove backing file %s: %v", m.StoragePath, err)
		}
	}

	if err := s.repository.Delete(id); err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}
	s.logger.Infof("material %s deleted", id)
	return nil
}
