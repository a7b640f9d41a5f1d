// Package event defines the closed, tagged set of events that flow
// through the node's in-process event queue. Each topic carries
// exactly one payload type; subscribers recover the concrete payload
// with a type switch instead of an unchecked pointer cast, a hazard
// that cannot arise here because Event is a sum type, not an abstract
// one.
package event

import "github.com/bls-tss-network/randcast-node/internal/types"

// TopicKind enumerates the closed set of topic tags.
type TopicKind int

const (
	TopicNewBlock TopicKind = iota
	TopicNewRandomnessTask
	TopicReadyToHandleRandomnessTask
	TopicReadyToFulfillRandomnessTask
	TopicRunDkg
	TopicDkgSuccess
	TopicDkgPostProcess
	TopicReadyToHandleGroupRelayTask
	TopicReadyToHandleGroupRelayConfirmationTask
	TopicReadyToFulfillGroupRelayTask
	TopicReadyToFulfillGroupRelayConfirmationTask
)

func (k TopicKind) String() string {
	switch k {
	case TopicNewBlock:
		return "NewBlock"
	case TopicNewRandomnessTask:
		return "NewRandomnessTask"
	case TopicReadyToHandleRandomnessTask:
		return "ReadyToHandleRandomnessTask"
	case TopicReadyToFulfillRandomnessTask:
		return "ReadyToFulfillRandomnessTask"
	case TopicRunDkg:
		return "RunDkg"
	case TopicDkgSuccess:
		return "DkgSuccess"
	case TopicDkgPostProcess:
		return "DkgPostProcess"
	case TopicReadyToHandleGroupRelayTask:
		return "ReadyToHandleGroupRelayTask"
	case TopicReadyToHandleGroupRelayConfirmationTask:
		return "ReadyToHandleGroupRelayConfirmationTask"
	case TopicReadyToFulfillGroupRelayTask:
		return "ReadyToFulfillGroupRelayTask"
	case TopicReadyToFulfillGroupRelayConfirmationTask:
		return "ReadyToFulfillGroupRelayConfirmationTask"
	default:
		return "Unknown"
	}
}

// Topic identifies a subscription slot: a kind scoped to one chain.
// Grouping topics (RunDkg, DkgSuccess, DkgPostProcess) are scoped to
// the main chain and always carry ChainID 0 by convention.
type Topic struct {
	Kind    TopicKind
	ChainID uint64
}

// Event is satisfied by every concrete payload type below.
type Event interface {
	Topic() Topic
}

type NewBlock struct {
	ChainID     uint64
	BlockHeight uint64
}

func (e NewBlock) Topic() Topic { return Topic{TopicNewBlock, e.ChainID} }

type NewRandomnessTask struct {
	ChainID uint64
	Task    types.RandomnessTask
}

func (e NewRandomnessTask) Topic() Topic { return Topic{TopicNewRandomnessTask, e.ChainID} }

type ReadyToHandleRandomnessTask struct {
	ChainID uint64
	Tasks   []types.RandomnessTask
}

func (e ReadyToHandleRandomnessTask) Topic() Topic {
	return Topic{TopicReadyToHandleRandomnessTask, e.ChainID}
}

type ReadyToFulfillRandomnessTask struct {
	ChainID uint64
	Tasks   []uint64 // task indices with ready signature-cache entries
}

func (e ReadyToFulfillRandomnessTask) Topic() Topic {
	return Topic{TopicReadyToFulfillRandomnessTask, e.ChainID}
}

type RunDkg struct {
	Epoch uint32
}

func (e RunDkg) Topic() Topic { return Topic{TopicRunDkg, 0} }

type DkgSuccess struct {
	GroupIndex uint32
	Epoch      uint32
}

func (e DkgSuccess) Topic() Topic { return Topic{TopicDkgSuccess, 0} }

type DkgPostProcess struct {
	GroupIndex uint32
}

func (e DkgPostProcess) Topic() Topic { return Topic{TopicDkgPostProcess, 0} }

type ReadyToHandleGroupRelayTask struct {
	ChainID uint64
	Tasks   []types.GroupRelayTask
}

func (e ReadyToHandleGroupRelayTask) Topic() Topic {
	return Topic{TopicReadyToHandleGroupRelayTask, e.ChainID}
}

type ReadyToHandleGroupRelayConfirmationTask struct {
	ChainID uint64
	Tasks   []types.GroupRelayConfirmationTask
}

func (e ReadyToHandleGroupRelayConfirmationTask) Topic() Topic {
	return Topic{TopicReadyToHandleGroupRelayConfirmationTask, e.ChainID}
}

type ReadyToFulfillGroupRelayTask struct {
	ChainID uint64
	Tasks   []uint64
}

func (e ReadyToFulfillGroupRelayTask) Topic() Topic {
	return Topic{TopicReadyToFulfillGroupRelayTask, e.ChainID}
}

type ReadyToFulfillGroupRelayConfirmationTask struct {
	ChainID uint64
	Tasks   []uint64
}

func (e ReadyToFulfillGroupRelayConfirmationTask) Topic() Topic {
	return Topic{TopicReadyToFulfillGroupRelayConfirmationTask, e.ChainID}
}
