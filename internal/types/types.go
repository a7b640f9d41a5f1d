// Package types holds the node's core data model: identities, group
// state, chain identities and the task shapes that flow through the
// event pipeline.
package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// Address is the 20-byte account address identifying a node or group
// member, reusing go-ethereum's representation rather than rolling a
// bespoke byte array.
type Address = common.Address

// NodeIdentity is this node's own identity, immutable once the node
// has booted.
type NodeIdentity struct {
	IDAddress     Address
	RPCEndpoint   string
	DKGPrivateKey []byte // marshalled kyber.Scalar
	DKGPublicKey  []byte // marshalled kyber.Point
}

// Member is one entry in a GroupInfo's membership table.
type Member struct {
	Index            int
	IDAddress        Address
	RPCEndpoint      string // where the committer RPC dials this member
	PartialPublicKey []byte // marshalled kyber.Point, this member's share of the public polynomial
}

// GroupInfo describes one DKG-formed group. It is mutated only by the
// grouping subsystem (out of scope here) and is otherwise read-only
// from the coordination fabric's point of view.
type GroupInfo struct {
	Index      uint32
	Epoch      uint32
	Size       int
	Threshold  int
	State      bool // true once DKG has completed
	PublicKey  []byte
	Commits    [][]byte // marshalled kyber.Point, the public polynomial's coefficient commitments from DKG
	Members    map[Address]Member
	Committers map[Address]struct{}
	Share      []byte // this node's secret share, nil if not a member
}

// IsCommitter reports whether addr is a designated committer of this
// group. It answers the same query as GroupCache.IsCommitter on a
// plain GroupInfo value, without taking a lock.
func (g *GroupInfo) IsCommitter(addr Address) bool {
	if g == nil {
		return false
	}
	_, ok := g.Committers[addr]
	return ok
}

// ChainIdentity describes one chain this node serves, main or adapter.
type ChainIdentity struct {
	ChainID            uint64
	ProviderRPCEndpoint string
	ControllerAddress  Address
	Signer             Address
}

// TaskType distinguishes the three kinds of signing task the wire
// protocol and caches need to keep separate.
type TaskType int32

const (
	TaskTypeRandomness TaskType = iota
	TaskTypeGroupRelay
	TaskTypeGroupRelayConfirmation
)

func (t TaskType) String() string {
	switch t {
	case TaskTypeRandomness:
		return "randomness"
	case TaskTypeGroupRelay:
		return "group_relay"
	case TaskTypeGroupRelayConfirmation:
		return "group_relay_confirmation"
	default:
		return "unknown"
	}
}

// Task is satisfied by every task shape kept in a generic task cache.
type Task interface {
	GetIndex() uint64
}

// RandomnessTask is a chain-unique randomness request.
type RandomnessTask struct {
	Index                 uint64
	Message               []byte
	GroupIndex            uint32
	AssignmentBlockHeight uint64
}

func (t RandomnessTask) GetIndex() uint64 { return t.Index }

// GroupRelayTask asks the node to relay the current group's public
// key to an adapter chain (the "grouping analog" of RandomnessTask).
type GroupRelayTask struct {
	Index                 uint64
	GroupIndex            uint32
	AssignmentBlockHeight uint64
}

func (t GroupRelayTask) GetIndex() uint64 { return t.Index }

// GroupRelayConfirmationTask asks the node to confirm, on the main
// chain, that an adapter chain has received a relayed group.
type GroupRelayConfirmationTask struct {
	Index                 uint64
	RelayedGroupIndex     uint32
	GroupRelayConfirmationIndex uint64
	AssignmentBlockHeight uint64
}

func (t GroupRelayConfirmationTask) GetIndex() uint64 { return t.Index }

// Signable is satisfied by any task that carries its own signing
// payload, letting the signing handler stay generic over task type.
type Signable interface {
	Task
	SignMessage() []byte
}

// SignMessage returns the payload that gets partially signed for a
// randomness task: the request's own message bytes.
func (t RandomnessTask) SignMessage() []byte { return t.Message }

// SignMessage for a group relay task is the relayed group's index,
// big-endian encoded. The committer server verifies a partial against
// the message carried in the request; it does not compare that message
// with the group cache.
func (t GroupRelayTask) SignMessage() []byte {
	return encodeUint32(t.GroupIndex)
}

// SignMessage for a group relay confirmation task is the relayed
// group's index being confirmed.
func (t GroupRelayConfirmationTask) SignMessage() []byte {
	return encodeUint32(t.RelayedGroupIndex)
}

func encodeUint32(v uint32) []byte {
	return []byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}
