package agent

import (
	"context"

	v1 "github.com/lapla-cogito/kago/pkg/apis/v1"
	"github.com/lapla-cogito/kago/pkg/masterclient"
)

// Register announces this node to the master, retrying indefinitely
// until it succeeds (spec.md §4.4). address/port are this agent's own
// listen address, as advertised to the master for the master's pod
// create/delete RPCs.
func (s *State) Register(ctx context.Context, client *masterclient.Client, address string, port int) error {
	req := v1.RegisterNodeRequest{
		Name:     s.NodeName,
		Address:  address,
		Port:     port,
		Capacity: s.Capacity,
	}
	s.log.Info("registering with master", "address", address, "port", port)
	if err := client.Register(ctx, req); err != nil {
		return err
	}
	s.log.Info("registered with master")
	return nil
}
