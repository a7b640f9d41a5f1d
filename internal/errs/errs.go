// Package errs collects the sentinel errors shared across the node,
// following the flat style of drand's chain/errors package.
package errs

import "errors"

var (
	// ErrRepeatedChainID is returned by Context.AddAdapterChain when a
	// chain id has already been registered. Fatal at deploy.
	ErrRepeatedChainID = errors.New("randcast: chain id already registered")

	// ErrUnknownChain is returned when a chain id has no registered
	// adapter chain.
	ErrUnknownChain = errors.New("randcast: unknown chain id")

	// ErrNotCommitter is returned by the committer server when the
	// local node is not a committer for the requesting group.
	ErrNotCommitter = errors.New("randcast: local node is not a committer for this group")

	// ErrGroupNotReady is returned when a group's DKG has not yet
	// completed (GroupInfo.State == false).
	ErrGroupNotReady = errors.New("randcast: group DKG not complete")

	// ErrUnknownMember is returned when a partial signature arrives
	// from an address that is not a current group member.
	ErrUnknownMember = errors.New("randcast: address is not a current group member")

	// ErrTaskNotFound is returned when an operation references a task
	// index absent from the relevant cache.
	ErrTaskNotFound = errors.New("randcast: task not found")

	// ErrAlreadyCommitted names a fulfillment attempted against a
	// signature cache entry already marked committed.
	// SignatureResultCache.MarkCommitted reports that case as
	// ok == false and does not return this error.
	ErrAlreadyCommitted = errors.New("randcast: signature entry already committed")

	// ErrInvalidPartialSignature is returned when a partial signature
	// fails verification against the signer's partial public key.
	ErrInvalidPartialSignature = errors.New("randcast: partial signature verification failed")

	// ErrAggregateVerifyFailed names an aggregated signature that fails
	// verification against the group public key. The fulfillment
	// handlers log that case and skip the entry without returning this
	// error.
	ErrAggregateVerifyFailed = errors.New("randcast: aggregated signature verification failed")

	// ErrWrongTopic is a construction-time error: a subscriber was
	// registered under a topic whose payload it cannot handle.
	// SigCacheRegistry.For also returns it at runtime for a task type
	// that has no signature cache.
	ErrWrongTopic = errors.New("randcast: subscriber registered under mismatched topic")
)
