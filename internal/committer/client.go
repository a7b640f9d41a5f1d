package committer

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/bls-tss-network/randcast-node/internal/committer/rpc"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// Client pushes a local partial signature to one peer committer. It
// holds only the sender's address and the peer's endpoint and dials a
// fresh connection on every call, so it is safe for concurrent reuse
// across tasks sent to that peer; see DESIGN.md for this design
// decision.
type Client struct {
	idAddress        types.Address
	committerEndpoint string
}

// NewClient builds a Client for one peer. idAddress is the sending
// node's own address, carried as the request's IDAddress so the peer
// records the partial under its signer; committerEndpoint is the
// peer's endpoint, dialed as http://<peer.node_rpc_endpoint>.
func NewClient(idAddress types.Address, committerEndpoint string) *Client {
	return &Client{idAddress: idAddress, committerEndpoint: committerEndpoint}
}

func (c *Client) GetIDAddress() types.Address { return c.idAddress }

func (c *Client) GetCommitterEndpoint() string { return c.committerEndpoint }

// CommitPartialSignature dials the peer and pushes one partial
// signature. A single attempt; retry (3x, 2s fixed interval) is the
// caller's responsibility, applied independently per peer so one
// unreachable committer never blocks the others.
func (c *Client) CommitPartialSignature(
	ctx context.Context,
	chainID uint64,
	taskType types.TaskType,
	message []byte,
	signatureIndex uint64,
	partialSignature []byte,
) (bool, error) {
	conn, err := grpc.DialContext(
		ctx,
		"http://"+c.committerEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	if err != nil {
		return false, fmt.Errorf("committer client: dial %s: %w", c.committerEndpoint, err)
	}
	defer conn.Close()

	client := rpc.NewCommitterClient(conn)
	reply, err := client.CommitPartialSignature(ctx, &rpc.CommitPartialSignatureRequest{
		IDAddress:        c.idAddress.Hex(),
		ChainID:          uint32(chainID),
		SignatureIndex:   uint32(signatureIndex),
		PartialSignature: partialSignature,
		TaskType:         int32(taskType),
		Message:          message,
	})
	if err != nil {
		return false, err
	}
	return reply.Result, nil
}
