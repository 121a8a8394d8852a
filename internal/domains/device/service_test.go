package device

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/liftsign/controlplane/pkg/Logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memDeviceRepo struct {
	items     map[string]Device
	createErr error
}

func (r *memDeviceRepo) Create(d *Device) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.items[d.ID] = *d
	return nil
}

func (r *memDeviceRepo) GetByID(id string) (*Device, error) {
	d, ok := r.items[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return &d, nil
}

func (r *memDeviceRepo) List(offset, limit int, query string) ([]Device, int64, error) {
	out := []Device{}
	for _, d := range r.items {
		if query == "" || strings.Contains(d.Name, query) {
			out = append(out, d)
		}
	}
	return out, int64(len(out)), nil
}

type memTokenStore struct {
	tokens map[string]string
	online map[string]bool
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]string{}, online: map[string]bool{}}
}

func (s *memTokenStore) SaveToken(deviceID, token string) error {
	s.tokens[deviceID] = token
	return nil
}

func (s *memTokenStore) CheckToken(deviceID, token string) (bool, error) {
	return s.tokens[deviceID] == token && token != "", nil
}

func (s *memTokenStore) SetOnline(deviceID string, ttl time.Duration) error {
	s.online[deviceID] = true
	return nil
}

func (s *memTokenStore) IsOnline(deviceID string) (bool, error) {
	return s.online[deviceID], nil
}

func (s *memTokenStore) OnlineDevices() ([]string, error) {
	out := []string{}
	for id := range s.online {
		out = append(out, id)
	}
	return out, nil
}

func TestRegisterIssuesCredentials(t *testing.T) {
	repo := &memDeviceRepo{items: map[string]Device{}}
	tokens := newMemTokenStore()
	svc := NewService(repo, tokens, Logger.New(true))

	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "lobby-east", City: "Shenzhen"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(resp.DeviceID, "dev_"))
	assert.True(t, strings.HasPrefix(resp.Token, "devtok_"))

	// Token is live for the gateway handshake.
	ok, err := svc.VerifyToken(context.Background(), resp.DeviceID, resp.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	d, err := svc.Get(context.Background(), resp.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, "lobby-east", d.Name)
	assert.NotNil(t, d.Tags)
}

func TestRegisterSurvivesStoreFailure(t *testing.T) {
	repo := &memDeviceRepo{items: map[string]Device{}, createErr: errors.New("db down")}
	tokens := newMemTokenStore()
	svc := NewService(repo, tokens, Logger.New(true))

	// The row write is best effort; the device must still get its token.
	resp, err := svc.Register(context.Background(), RegisterRequest{Name: "lobby-east"})
	require.NoError(t, err)

	ok, err := svc.VerifyToken(context.Background(), resp.DeviceID, resp.Token)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.Get(context.Background(), resp.DeviceID)
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestStats(t *testing.T) {
	repo := &memDeviceRepo{items: map[string]Device{}}
	tokens := newMemTokenStore()
	svc := NewService(repo, tokens, Logger.New(true))

	require.NoError(t, tokens.SetOnline("dev_1", time.Minute))
	require.NoError(t, tokens.SetOnline("dev_2", time.Minute))

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.OnlineCount)
	assert.ElementsMatch(t, []string{"dev_1", "dev_2"}, stats.Devices)
	assert.Regexp(t, `^\d{2}:\d{2}:\d{2}$`, stats.ServerTime)
}
