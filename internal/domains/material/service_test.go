package material

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/liftsign/controlplane/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memRepo is a map-backed MaterialRepository for service tests.
type memRepo struct {
	items map[string]Material
	order []string
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string]Material{}}
}

func (r *memRepo) Create(m *Material) error {
	r.items[m.ID] = *m
	r.order = append([]string{m.ID}, r.order...)
	return nil
}

func (r *memRepo) GetByID(id string) (*Material, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, ErrMaterialNotFound
	}
	return &m, nil
}

func (r *memRepo) List(offset, limit int) ([]Material, int64, error) {
	out := []Material{}
	for i := offset; i < len(r.order) && len(out) < limit; i++ {
		out = append(out, r.items[r.order[i]])
	}
	return out, int64(len(r.order)), nil
}

func (r *memRepo) Update(m *Material) error {
	if _, ok := r.items[m.ID]; !ok {
		return ErrMaterialNotFound
	}
	r.items[m.ID] = *m
	return nil
}

func (r *memRepo) Delete(id string) error {
	if _, ok := r.items[id]; !ok {
		return ErrMaterialNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func newTestService(t *testing.T) (MaterialService, *memRepo, string) {
	t.Helper()
	repo := newMemRepo()
	dir := t.TempDir()
	return NewService(repo, dir, Logger.New(true)), repo, dir
}

func TestUploadWritesFileAndRecord(t *testing.T) {
	svc, _, dir := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{
		FileName:   "spring_sale.mp4",
		Content:    []byte("fake video bytes"),
		Advertiser: "acme",
		UploaderID: "u1",
		Tags:       []string{"spring"},
	})
	require.NoError(t, err)

	assert.True(t, len(m.ID) > 4 && m.ID[:4] == "mat_", "id %q should carry the mat_ prefix", m.ID)
	assert.Equal(t, StatusUploaded, m.Status)
	assert.Equal(t, int64(16), m.SizeBytes)
	assert.Len(t, m.MD5, 32)

	raw, err := os.ReadFile(m.StoragePath)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake video bytes"), raw)
	assert.Equal(t, dir, filepath.Dir(m.StoragePath))
}

func TestUploadRejectsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4"})
	assert.ErrorIs(t, err, ErrInvalidUpload)

	_, err = svc.Upload(context.Background(), UploadRequest{Content: []byte("x")})
	assert.ErrorIs(t, err, ErrInvalidUpload)
}

func TestUpdateStatusHonorsMachine(t *testing.T) {
	svc, _, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)

	m, err = svc.UpdateStatus(context.Background(), m.ID, StatusTranscoding)
	require.NoError(t, err)
	assert.Equal(t, StatusTranscoding, m.Status)

	_, err = svc.UpdateStatus(context.Background(), m.ID, StatusUploaded)
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.UpdateStatus(context.Background(), m.ID, MaterialStatus("archived"))
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = svc.UpdateStatus(context.Background(), "mat_missing", StatusTranscoding)
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestTranscodeCallbackLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)

	// Callback before the job ever started must be rejected.
	_, err = svc.ApplyTranscodeCallback(context.Background(), m.ID, TranscodeCallbackRequest{Status: StatusDone})
	var invalid *InvalidTransitionError
	assert.ErrorAs(t, err, &invalid)

	_, err = svc.UpdateStatus(context.Background(), m.ID, StatusTranscoding)
	require.NoError(t, err)

	m, err = svc.ApplyTranscodeCallback(context.Background(), m.ID, TranscodeCallbackRequest{
		Status:     StatusDone,
		Duration:   15,
		Type:       "video",
		OutputPath: "/out/a_720p.mp4",
		Extra:      map[string]any{"codec": "h264"},
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDone, m.Status)
	assert.Equal(t, 15, m.DurationSec)
	assert.Equal(t, "video", m.Type)
	assert.Equal(t, 15, m.Extra["duration"])
	assert.Equal(t, "video", m.Extra["type"])
	assert.Equal(t, "/out/a_720p.mp4", m.Extra["output_path"])
	assert.Equal(t, "h264", m.Extra["codec"])

	// done is terminal: a second callback cannot move it.
	_, err = svc.ApplyTranscodeCallback(context.Background(), m.ID, TranscodeCallbackRequest{Status: StatusFailed})
	assert.ErrorAs(t, err, &invalid)
}

func TestTranscodeCallbackRejectsNonTerminal(t *testing.T) {
	svc, _, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)

	_, err = svc.ApplyTranscodeCallback(context.Background(), m.ID, TranscodeCallbackRequest{Status: StatusTranscoding})
	assert.ErrorIs(t, err, ErrNonTerminalStatus)
}

func TestFailedRetriesThroughTranscoding(t *testing.T) {
	svc, _, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), m.ID, StatusTranscoding)
	require.NoError(t, err)
	m, err = svc.ApplyTranscodeCallback(context.Background(), m.ID, TranscodeCallbackRequest{Status: StatusFailed, Message: "codec unsupported"})
	require.NoError(t, err)
	assert.Equal(t, "codec unsupported", m.Extra["message"])

	// A failed job may be resubmitted.
	m, err = svc.UpdateStatus(context.Background(), m.ID, StatusTranscoding)
	require.NoError(t, err)
	assert.Equal(t, StatusTranscoding, m.Status)
}

func TestConcurrentTerminalTransitionsOneWinner(t *testing.T) {
	svc, _, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), m.ID, StatusTranscoding)
	require.NoError(t, err)

	// Two racing writers fight over the terminal edge; the loser must see
	// the already-terminal state instead of overwriting it.
	targets := []MaterialStatus{StatusDone, StatusFailed}
	errs := make([]error, len(targets))
	var wg sync.WaitGroup
	for i := range targets {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.UpdateStatus(context.Background(), m.ID, targets[i])
		}(i)
	}
	wg.Wait()

	failures := 0
	winner := MaterialStatus("")
	for i, err := range errs {
		if err != nil {
			failures++
			var invalid *InvalidTransitionError
			assert.ErrorAs(t, err, &invalid)
			continue
		}
		winner = targets[i]
	}
	require.Equal(t, 1, failures, "exactly one transition may win")

	got, err := svc.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, got.Status)
}

func TestDeleteRemovesBackingFile(t *testing.T) {
	svc, repo, _ := newTestService(t)

	m, err := svc.Upload(context.Background(), UploadRequest{FileName: "a.mp4", Content: []byte("x")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), m.ID))

	_, err = os.Stat(m.StoragePath)
	assert.True(t, os.IsNotExist(err))
	_, err = repo.GetByID(m.ID)
	assert.ErrorIs(t, err, ErrMaterialNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), m.ID), ErrMaterialNotFound)
}
