package light

import "github.com/coinexchain/tm-light-client/types"

// Instance packages a Client together with the peer identity the
// Supervisor associates it with, grounded on
// original_source/light-client/src/supervisor.rs's
// `Instance<LB>{ light_client, state }`. In this port Client already owns
// its State (see light/client.go), so Instance only needs to add the peer
// identity PeerList keys on.
type Instance struct {
	ID     types.PeerId
	Client *Client
}

func NewInstance(id types.PeerId, client *Client) *Instance {
	return &Instance{ID: id, Client: client}
}

func (i *Instance) LatestTrusted() (*types.LightBlock, bool) {
	return i.Client.LatestTrusted()
}

func (i *Instance) TrustBlock(lb *types.LightBlock) error {
	return i.Client.TrustBlock(lb)
}
