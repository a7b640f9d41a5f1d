// Package rpc defines the wire types and gRPC service descriptor for
// the committer RPC of: one unary method,
// CommitPartialSignature, carried as length-prefixed binary frames
// over a plain TCP gRPC channel (target URL http://<endpoint>,
// exactly as net/client_grpc.go dials drand's own protocol service).
//
// drand generates its wire types with protoc from .proto files
// (protobuf/drand); regenerating real protoc output isn't available
// in this environment (see DESIGN.md), so this package hand-codes a
// gob-based grpc.Codec instead of vendoring a fake protoc output.
// gRPC's codec is a pluggable seam designed for exactly this: encode
// Go values to bytes, carried inside the same HTTP/2, length-prefixed
// framing real protobuf payloads use.
package rpc

import (
	"bytes"
	"context"
	"encoding/gob"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CommitPartialSignatureRequest mirrors wire message.
type CommitPartialSignatureRequest struct {
	IDAddress        string
	ChainID          uint32
	SignatureIndex   uint32
	PartialSignature []byte
	TaskType         int32
	Message          []byte
}

// CommitPartialSignatureReply mirrors wire message.
type CommitPartialSignatureReply struct {
	Result bool
}

const codecName = "gob"

type gobCodec struct{}

func (gobCodec) Marshal(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (gobCodec) Unmarshal(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

func (gobCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(gobCodec{})
}

// ServiceName is the gRPC service name the committer endpoint exposes.
const ServiceName = "randcast.Committer"

// CommitterServer is implemented by the committer RPC handler.
type CommitterServer interface {
	CommitPartialSignature(ctx context.Context, req *CommitPartialSignatureRequest) (*CommitPartialSignatureReply, error)
}

func commitPartialSignatureHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CommitPartialSignatureRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CommitterServer).CommitPartialSignature(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ServiceName + "/CommitPartialSignature",
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CommitterServer).CommitPartialSignature(ctx, req.(*CommitPartialSignatureRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ServiceDesc is registered against a *grpc.Server by RegisterCommitterServer.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CommitterServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CommitPartialSignature",
			Handler:    commitPartialSignatureHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "committer.proto",
}

// RegisterCommitterServer wires srv into s, the way protoc-generated
// RegisterXServer functions do.
func RegisterCommitterServer(s grpc.ServiceRegistrar, srv CommitterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// CommitterClient is the typed stub a committer.Client calls through.
type CommitterClient interface {
	CommitPartialSignature(ctx context.Context, req *CommitPartialSignatureRequest, opts ...grpc.CallOption) (*CommitPartialSignatureReply, error)
}

type committerClient struct {
	cc grpc.ClientConnInterface
}

// NewCommitterClient wraps a dialed connection in the typed stub.
func NewCommitterClient(cc grpc.ClientConnInterface) CommitterClient {
	return &committerClient{cc}
}

func (c *committerClient) CommitPartialSignature(
	ctx context.Context,
	req *CommitPartialSignatureRequest,
	opts ...grpc.CallOption,
) (*CommitPartialSignatureReply, error) {
	opts = append(opts, grpc.CallContentSubtype(codecName))
	reply := new(CommitPartialSignatureReply)
	if err := c.cc.Invoke(ctx, ServiceName+"/CommitPartialSignature", req, reply, opts...); err != nil {
		return nil, err
	}
	return reply, nil
}
