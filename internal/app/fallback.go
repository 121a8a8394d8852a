package app

import (
	"errors"

	"github.com/liftsign/controlplane/internal/domains/campaign"
	"github.com/liftsign/controlplane/internal/domains/device"
)

// errStoreUnavailable surfaces on every operation of the placeholder repos
// used when the database is down. List handlers degrade to empty results,
// mutations fail loudly.
var errStoreUnavailable = errors.New("relational store unavailable")

type unavailableDeviceRepo struct{}

func (unavailableDeviceRepo) Create(*device.Device) error { return errStoreUnavailable }
func (unavailableDeviceRepo) GetByID(string) (*device.Device, error) {
	return nil, errStoreUnavailable
}
func (unavailableDeviceRepo) List(int, int, string) ([]device.Device, int64, error) {
	return nil, 0, errStoreUnavailable
}

type unavailableCampaignRepo struct{}

func (unavailableCampaignRepo) Create(*campaign.Campaign) error { return errStoreUnavailable }
func (unavailableCampaignRepo) GetByID(string) (*campaign.Campaign, error) {
	return nil, errStoreUnavailable
}
func (unavailableCampaignRepo) List(int, int) ([]campaign.Campaign, int64, error) {
	return nil, 0, errStoreUnavailable
}
