// Package committer implements the peer-to-peer committer RPC: a
// server that receives partial signatures from group members, and a
// client handlers use to push local partials to peers, grounded on
// net/client_grpc.go's grpc.Dial/grpc.NewServer pattern.
package committer

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"google.golang.org/grpc"

	"github.com/ethereum/go-ethereum/common"

	"github.com/bls-tss-network/randcast-node/internal/bls"
	"github.com/bls-tss-network/randcast-node/internal/committer/rpc"
	"github.com/bls-tss-network/randcast-node/internal/dal"
	"github.com/bls-tss-network/randcast-node/internal/errs"
	"github.com/bls-tss-network/randcast-node/internal/log"
	"github.com/bls-tss-network/randcast-node/internal/metrics"
	"github.com/bls-tss-network/randcast-node/internal/types"
)

// GroupView is the read-only surface the committer server needs from
// a chain's group cache. Passing this narrow view instead of the
// whole Context breaks an owning cycle between Context and its
// background committer-server task: the server holds only the handles
// it actually uses (group cache, signature caches), not a
// back-reference to Context itself.
type GroupView interface {
	dal.GroupInfoFetcher
}

// SignatureCaches resolves the right signature cache for an incoming
// request's (chain, task type) pair, so one server instance can serve
// every chain and task type this node handles from a single RPC
// endpoint.
type SignatureCaches interface {
	For(chainID uint64, taskType types.TaskType) (dal.SignatureResultCacheUpdater, error)
}

// Server implements rpc.CommitterServer.
type Server struct {
	rpc.CommitterServer

	selfAddress types.Address
	group       GroupView
	caches      SignatureCaches
	bls         bls.Core
	pubPoly     func() (*bls.PubPoly, error)
	metrics     *metrics.Metrics
	l           log.Logger
}

// NewServer builds the node's committer server for its group; caches
// routes each request to the signature cache of its chain and task
// type.
// pubPoly lazily reads the group's public polynomial (GroupInfo's DKG
// coefficient commitments) so the server never caches a stale
// polynomial across a resharing.
func NewServer(
	selfAddress types.Address,
	group GroupView,
	caches SignatureCaches,
	core bls.Core,
	pubPoly func() (*bls.PubPoly, error),
	m *metrics.Metrics,
	l log.Logger,
) *Server {
	return &Server{
		selfAddress: selfAddress,
		group:       group,
		caches:      caches,
		bls:         core,
		pubPoly:     pubPoly,
		metrics:     m,
		l:           l,
	}
}

// CommitPartialSignature implements five steps.
func (s *Server) CommitPartialSignature(
	_ context.Context,
	req *rpc.CommitPartialSignatureRequest,
) (*rpc.CommitPartialSignatureReply, error) {
	addr := common.HexToAddress(req.IDAddress)

	// 1. Validate: member, DKG-complete, local node is committer.
	member, isMember := s.group.GetMember(addr)
	if !isMember {
		s.l.Warn("committer rpc: rejected, unknown member", "addr", req.IDAddress)
		return nil, errs.ErrUnknownMember
	}
	if !s.group.GetState() {
		s.l.Warn("committer rpc: rejected, group not ready")
		return nil, errs.ErrGroupNotReady
	}
	if !s.group.IsCommitter(s.selfAddress) {
		s.l.Warn("committer rpc: rejected, local node is not committer")
		return nil, errs.ErrNotCommitter
	}

	groupIndex, err := s.group.GetIndex()
	if err != nil {
		return nil, err
	}
	threshold, err := s.group.GetThreshold()
	if err != nil {
		return nil, err
	}

	taskIndex := uint64(req.SignatureIndex)
	cache, err := s.caches.For(uint64(req.ChainID), types.TaskType(req.TaskType))
	if err != nil {
		return nil, err
	}

	// 2. Locate or create the per-task entry.
	if err := cache.Add(taskIndex, groupIndex, req.Message, threshold); err != nil {
		return nil, err
	}

	// 3. Verify the partial signature against the signer's share of
	// the public polynomial.
	pubPoly, err := s.pubPoly()
	if err != nil {
		return nil, err
	}
	if err := s.bls.PartialVerify(pubPoly, req.Message, req.PartialSignature); err != nil {
		s.l.Warn("committer rpc: partial verify failed", "addr", req.IDAddress, "task_index", taskIndex, "err", err)
		return nil, errs.ErrInvalidPartialSignature
	}

	// 4. Insert, idempotently.
	isMemberFn := func(a types.Address) bool {
		_, ok := s.group.GetMember(a)
		return ok
	}
	if err := cache.AddPartialSignature(taskIndex, addr, req.PartialSignature, isMemberFn); err != nil {
		return nil, err
	}

	s.l.Info("committer rpc: accepted partial", "from", req.IDAddress, "member_index", member.Index, "task_index", taskIndex)
	s.metrics.PartialsReceived.WithLabelValues(strconv.FormatUint(uint64(req.ChainID), 10), types.TaskType(req.TaskType).String()).Inc()

	// 5. Reply.
	return &rpc.CommitPartialSignatureReply{Result: true}, nil
}

// StartServer binds a TCP listener at endpoint and serves the
// committer RPC, returning once the listener is closed or ctx is
// cancelled. Intended to be launched on the FixedScheduler.
func StartServer(ctx context.Context, endpoint string, srv *Server) error {
	lis, err := net.Listen("tcp", endpoint)
	if err != nil {
		return fmt.Errorf("committer: listen %s: %w", endpoint, err)
	}

	grpcServer := grpc.NewServer()
	rpc.RegisterCommitterServer(grpcServer, srv)

	errCh := make(chan error, 1)
	go func() { errCh <- grpcServer.Serve(lis) }()

	select {
	case <-ctx.Done():
		grpcServer.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}
