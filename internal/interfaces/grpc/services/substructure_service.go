// Package services holds the gRPC services of the substructure API.
package services

import (
	"context"

	"google.golang.org/grpc"

	appmol "github.com/turtacn/KeyIP-Substructure/internal/application/molecule"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	mtypes "github.com/turtacn/KeyIP-Substructure/pkg/types/molecule"
)

// SubstructureServiceName is the fully qualified gRPC service name.
const SubstructureServiceName = "keyip.substructure.v1.SubstructureService"

// Full method names.
const (
	MatchMethod   = "/" + SubstructureServiceName + "/Match"
	ScreenMethod  = "/" + SubstructureServiceName + "/Screen"
	AnchorsMethod = "/" + SubstructureServiceName + "/Anchors"
)

// SubstructureServiceServer is the server API of the substructure service.
type SubstructureServiceServer interface {
	Match(context.Context, *mtypes.MatchRequestDTO) (*mtypes.MatchResultDTO, error)
	Screen(context.Context, *mtypes.ScreenRequestDTO) (*mtypes.ScreenResultDTO, error)
	Anchors(context.Context, *mtypes.AnchorRequestDTO) (*mtypes.AnchorResultDTO, error)
}

// SubstructureService serves the substructure operations over gRPC.  Errors
// are returned as *errors.AppError; the server's interceptor chain turns them
// into gRPC statuses.
type SubstructureService struct {
	svc    appmol.Service
	logger logging.Logger
}

// NewSubstructureService creates a SubstructureService over svc.
func NewSubstructureService(svc appmol.Service, logger logging.Logger) *SubstructureService {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SubstructureService{svc: svc, logger: logger}
}

// Match tests a query against one target.
func (s *SubstructureService) Match(ctx context.Context, req *mtypes.MatchRequestDTO) (*mtypes.MatchResultDTO, error) {
	s.logger.Debug("Match called", logging.Int("target_atoms", len(req.Target.Atoms)))
	return s.svc.Match(ctx, req)
}

// Screen runs a query over a library.
func (s *SubstructureService) Screen(ctx context.Context, req *mtypes.ScreenRequestDTO) (*mtypes.ScreenResultDTO, error) {
	s.logger.Debug("Screen called", logging.Int("library_size", len(req.Library)))
	return s.svc.Screen(ctx, req)
}

// Anchors lists the target atoms the query root can map to.
func (s *SubstructureService) Anchors(ctx context.Context, req *mtypes.AnchorRequestDTO) (*mtypes.AnchorResultDTO, error) {
	s.logger.Debug("Anchors called", logging.Int("target_atoms", len(req.Target.Atoms)))
	return s.svc.Anchors(ctx, req)
}

// Register adds the service to r.
func (s *SubstructureService) Register(r grpc.ServiceRegistrar) {
	r.RegisterService(&SubstructureServiceDesc, s)
}

// SubstructureServiceDesc describes the service for grpc.Server.RegisterService.
var SubstructureServiceDesc = grpc.ServiceDesc{
	ServiceName: SubstructureServiceName,
	HandlerType: (*SubstructureServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Match", Handler: matchHandler},
		{MethodName: "Screen", Handler: screenHandler},
		{MethodName: "Anchors", Handler: anchorsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "keyip/substructure/v1/substructure.proto",
}

func matchHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(mtypes.MatchRequestDTO)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubstructureServiceServer).Match(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: MatchMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubstructureServiceServer).Match(ctx, req.(*mtypes.MatchRequestDTO))
	}
	return interceptor(ctx, in, info, handler)
}

func screenHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(mtypes.ScreenRequestDTO)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubstructureServiceServer).Screen(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ScreenMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubstructureServiceServer).Screen(ctx, req.(*mtypes.ScreenRequestDTO))
	}
	return interceptor(ctx, in, info, handler)
}

func anchorsHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(mtypes.AnchorRequestDTO)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SubstructureServiceServer).Anchors(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: AnchorsMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SubstructureServiceServer).Anchors(ctx, req.(*mtypes.AnchorRequestDTO))
	}
	return interceptor(ctx, in, info, handler)
}

// SubstructureClient calls a remote SubstructureService.
type SubstructureClient struct {
	cc grpc.ClientConnInterface
}

// NewSubstructureClient wraps cc.
func NewSubstructureClient(cc grpc.ClientConnInterface) *SubstructureClient {
	return &SubstructureClient{cc: cc}
}

func (c *SubstructureClient) invoke(ctx context.Context, method string, in, out interface{}, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, method, in, out, opts...)
}

// Match calls SubstructureService.Match.
func (c *SubstructureClient) Match(ctx context.Context, in *mtypes.MatchRequestDTO, opts ...grpc.CallOption) (*mtypes.MatchResultDTO, error) {
	out := new(mtypes.MatchResultDTO)
	if err := c.invoke(ctx, MatchMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Screen calls SubstructureService.Screen.
func (c *SubstructureClient) Screen(ctx context.Context, in *mtypes.ScreenRequestDTO, opts ...grpc.CallOption) (*mtypes.ScreenResultDTO, error) {
	out := new(mtypes.ScreenResultDTO)
	if err := c.invoke(ctx, ScreenMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

// Anchors calls SubstructureService.Anchors.
func (c *SubstructureClient) Anchors(ctx context.Context, in *mtypes.AnchorRequestDTO, opts ...grpc.CallOption) (*mtypes.AnchorResultDTO, error) {
	out := new(mtypes.AnchorResultDTO)
	if err := c.invoke(ctx, AnchorsMethod, in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

var _ SubstructureServiceServer = (*SubstructureService)(nil)
