// Package eth1 defines the Eth1 data provider spec.md §1 names as an
// external collaborator ("the Eth1 data voting/deposit-follow
// subsystem... only its read interface, eth1_data(), is relevant").
// Grounded on the beacon-chain/powchain package naming observed across the
// teacher's retrieved tree (powchain.Service, powchain.Client) — no
// implementation file for it was retrieved, only its name and role, so
// this package supplies the narrow read interface plus a fixed-value
// reference implementation suitable for driving the orchestrator in tests.
package eth1

import (
	"context"

	"github.com/prysmaticlabs/beaconcore/types"
)

// DataProvider is the external Eth1 follow-distance voting interface.
type DataProvider interface {
	// Eth1Data returns the Eth1Data this node would currently vote for.
	Eth1Data(ctx context.Context) (*types.Eth1Data, error)
}

// CachedProvider is a reference DataProvider that always returns the last
// value it was given, standing in for the teacher's eth1 deposit-follow
// cache without reimplementing the deposit-contract log following itself.
type CachedProvider struct {
	current *types.Eth1Data
}

// NewCachedProvider returns a CachedProvider seeded with genesis.
func NewCachedProvider(genesis *types.Eth1Data) *CachedProvider {
	return &CachedProvider{current: genesis}
}

// Eth1Data returns the cached value.
func (p *CachedProvider) Eth1Data(ctx context.Context) (*types.Eth1Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.current, nil
}

// Update replaces the cached Eth1Data, simulating a new deposit-contract
// log follow tick.
func (p *CachedProvider) Update(data *types.Eth1Data) {
	p.current = data
}

var _ DataProvider = (*CachedProvider)(nil)
