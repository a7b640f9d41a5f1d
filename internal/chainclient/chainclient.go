// Package chainclient defines the ChainClient surface the node
// consumes but does not implement: an opaque collaborator for emitting
// signature tasks, reading block height, and submitting fulfillments.
// Only a local stand-in is provided here — the real on-chain bindings
// are explicitly out of scope.
package chainclient

import (
	"context"

	"github.com/bls-tss-network/randcast-node/internal/types"
)

// TxReceipt is the opaque confirmation a submission returns.
type TxReceipt struct {
	TxHash  string
	Success bool
}

// Client is the chain-facing surface every listener and fulfillment
// handler depends on.
type Client interface {
	EmitSignatureTask(ctx context.Context) (types.RandomnessTask, error)
	GetBlockHeight(ctx context.Context) (uint64, error)
	FulfillRandomness(
		ctx context.Context,
		groupIndex uint32,
		taskIndex uint64,
		aggregatedSig []byte,
		partialsWithIndex map[int][]byte,
	) (TxReceipt, error)

	EmitGroupRelayTask(ctx context.Context) (types.GroupRelayTask, error)
	EmitGroupRelayConfirmationTask(ctx context.Context) (types.GroupRelayConfirmationTask, error)
	FulfillGroupRelay(ctx context.Context, task types.GroupRelayTask, aggregatedSig []byte) (TxReceipt, error)
	FulfillGroupRelayConfirmation(ctx context.Context, task types.GroupRelayConfirmationTask, aggregatedSig []byte) (TxReceipt, error)
}

// Mock is a local stand-in for the real chain bindings, named the way
// a reference implementation's own placeholder client
// (MockAdapterClient) is: on-chain bindings are an external
// collaborator this package does not define.
type Mock struct {
	Endpoint  string
	IDAddress string
}

func NewMock(endpoint, idAddress string) *Mock {
	return &Mock{Endpoint: endpoint, IDAddress: idAddress}
}

func (m *Mock) EmitSignatureTask(_ context.Context) (types.RandomnessTask, error) {
	return types.RandomnessTask{}, errNotImplemented
}

func (m *Mock) GetBlockHeight(_ context.Context) (uint64, error) {
	return 0, errNotImplemented
}

func (m *Mock) FulfillRandomness(
	_ context.Context,
	_ uint32,
	_ uint64,
	_ []byte,
	_ map[int][]byte,
) (TxReceipt, error) {
	return TxReceipt{}, errNotImplemented
}

func (m *Mock) EmitGroupRelayTask(_ context.Context) (types.GroupRelayTask, error) {
	return types.GroupRelayTask{}, errNotImplemented
}

func (m *Mock) EmitGroupRelayConfirmationTask(_ context.Context) (types.GroupRelayConfirmationTask, error) {
	return types.GroupRelayConfirmationTask{}, errNotImplemented
}

func (m *Mock) FulfillGroupRelay(_ context.Context, _ types.GroupRelayTask, _ []byte) (TxReceipt, error) {
	return TxReceipt{}, errNotImplemented
}

func (m *Mock) FulfillGroupRelayConfirmation(_ context.Context, _ types.GroupRelayConfirmationTask, _ []byte) (TxReceipt, error) {
	return TxReceipt{}, errNotImplemented
}

var errNotImplemented = &notImplementedError{}

type notImplementedError struct{}

func (*notImplementedError) Error() string {
	return "chainclient: no chain bindings configured for this mock endpoint"
}

var _ Client = (*Mock)(nil)
