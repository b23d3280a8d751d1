// Package grpc serves the substructure API over gRPC next to the HTTP server.
package grpc

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/turtacn/KeyIP-Substructure/internal/config"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/auth"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Substructure/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

const (
	defaultMaxMsgSize      = 16 * 1024 * 1024
	defaultGracefulTimeout = 10 * time.Second

	// ErrorCodeKey is the trailer carrying the application error code.
	ErrorCodeKey = "x-error-code"
	// RequestIDKey is the metadata key read for log correlation.
	RequestIDKey = "x-request-id"
	// APIKeyKey is the metadata alternative to an authorization bearer token.
	APIKeyKey = "x-api-key"
)

var defaultKeepaliveParams = keepalive.ServerParameters{
	MaxConnectionIdle:     15 * time.Minute,
	MaxConnectionAge:      30 * time.Minute,
	MaxConnectionAgeGrace: 5 * time.Second,
	Time:                  5 * time.Minute,
	Timeout:               1 * time.Second,
}

var defaultKeepalivePolicy = keepalive.EnforcementPolicy{
	MinTime:             5 * time.Second,
	PermitWithoutStream: true,
}

// Validator is implemented by requests that can check themselves.
type Validator interface {
	Validate() error
}

// Option configures the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger          logging.Logger
	metrics         *prometheus.AppMetrics
	keys            *auth.KeySet
	listener        net.Listener
	gracefulTimeout time.Duration
}

// WithLogger sets the server logger.
func WithLogger(l logging.Logger) Option {
	return func(o *serverOptions) { o.logger = l }
}

// WithMetrics records every unary call in m.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(o *serverOptions) { o.metrics = m }
}

// WithAPIKeys requires one of keys on every call except health and
// reflection.  An empty set leaves the server open.
func WithAPIKeys(keys *auth.KeySet) Option {
	return func(o *serverOptions) { o.keys = keys }
}

// WithListener serves on lis instead of listening on the configured address.
func WithListener(lis net.Listener) Option {
	return func(o *serverOptions) { o.listener = lis }
}

// WithGracefulTimeout bounds GracefulStop before Stop forces the close.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *serverOptions) {
		if d > 0 {
			o.gracefulTimeout = d
		}
	}
}

// Server wraps a grpc.Server with health checking, the interceptor chain and
// graceful shutdown.
type Server struct {
	grpcServer   *grpc.Server
	listener     net.Listener
	opts         *serverOptions
	healthServer *health.Server

	mu      sync.Mutex
	started bool
}

// NewServer binds the listener and assembles the server.  Services are added
// with RegisterService before Start.
func NewServer(cfg config.GRPCConfig, opts ...Option) (*Server, error) {
	sopts := &serverOptions{gracefulTimeout: defaultGracefulTimeout}
	if cfg.ShutdownTimeout > 0 {
		sopts.gracefulTimeout = cfg.ShutdownTimeout
	}
	for _, o := range opts {
		o(sopts)
	}
	if sopts.logger == nil {
		sopts.logger = logging.NewNopLogger()
	}

	lis := sopts.listener
	if lis == nil {
		var err error
		if lis, err = net.Listen("tcp", cfg.Addr()); err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Addr(), err)
		}
	}

	unary := []grpc.UnaryServerInterceptor{
		recoveryUnaryInterceptor(sopts.logger),
		loggingUnaryInterceptor(sopts.logger),
		metricsUnaryInterceptor(sopts.metrics),
		statusUnaryInterceptor(sopts.metrics),
	}
	if sopts.keys.Enabled() {
		unary = append(unary, authUnaryInterceptor(sopts.keys, sopts.logger))
	}
	unary = append(unary, validationUnaryInterceptor())

	gs := grpc.NewServer(
		grpc.MaxRecvMsgSize(sizeOr(cfg.MaxRecvMsgSize, defaultMaxMsgSize)),
		grpc.MaxSendMsgSize(sizeOr(cfg.MaxSendMsgSize, defaultMaxMsgSize)),
		grpc.KeepaliveParams(defaultKeepaliveParams),
		grpc.KeepaliveEnforcementPolicy(defaultKeepalivePolicy),
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(recoveryStreamInterceptor(sopts.logger)),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	if cfg.EnableReflection {
		reflection.Register(gs)
		sopts.logger.Info("grpc reflection service registered")
	}

	return &Server{
		grpcServer:   gs,
		listener:     lis,
		opts:         sopts,
		healthServer: hs,
	}, nil
}

func sizeOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

// RegisterService registers impl and marks it SERVING.
func (s *Server) RegisterService(desc *grpc.ServiceDesc, impl interface{}) {
	s.grpcServer.RegisterService(desc, impl)
	s.healthServer.SetServingStatus(desc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	s.opts.logger.Info("grpc service registered", logging.String("service", desc.ServiceName))
}

// Start serves until Stop.  It returns nil after a clean stop.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("grpc server already started")
	}
	s.started = true
	s.mu.Unlock()

	s.opts.logger.Info("gRPC server listening", logging.String("addr", s.listener.Addr().String()))
	if err := s.grpcServer.Serve(s.listener); err != nil && !stderrors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// Stop drains in-flight calls and forces the close once ctx or the graceful
// timeout expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		// A later Start returns at once.
		s.grpcServer.Stop()
		return s.listener.Close()
	}

	s.opts.logger.Info("Shutting down gRPC server")
	s.healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(ctx, s.opts.gracefulTimeout)
	defer cancel()

	stopped := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.opts.logger.Info("grpc server stopped gracefully")
	case <-ctx.Done():
		s.opts.logger.Warn("grpc graceful stop timed out, forcing stop")
		s.grpcServer.Stop()
	}
	return nil
}

// Addr is the bound address, useful with port 0.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// ---------------------------------------------------------------------------
// Interceptors
// ---------------------------------------------------------------------------

func recoveryUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc panic recovered",
					logging.String("method", info.FullMethod),
					logging.String("panic", fmt.Sprintf("%v", r)),
					logging.String("stack", string(debug.Stack())),
				)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func recoveryStreamInterceptor(logger logging.Logger) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("grpc stream panic recovered",
					logging.String("method", info.FullMethod),
					logging.String("panic", fmt.Sprintf("%v", r)),
					logging.String("stack", string(debug.Stack())),
				)
				err = status.Error(codes.Internal, "internal server error")
			}
		}()
		return handler(srv, ss)
	}
}

func isHealthCheck(method string) bool {
	return strings.HasPrefix(method, "/grpc.health.v1.Health/")
}

func isReflection(method string) bool {
	return strings.HasPrefix(method, "/grpc.reflection.")
}

func loggingUnaryInterceptor(logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if isHealthCheck(info.FullMethod) {
			return handler(ctx, req)
		}

		start := time.Now()
		resp, err := handler(ctx, req)
		code := status.Code(err)

		fields := []logging.Field{
			logging.String("method", info.FullMethod),
			logging.String("code", code.String()),
			logging.Int64("duration_ms", time.Since(start).Milliseconds()),
		}
		if id := metadataValue(ctx, RequestIDKey); id != "" {
			fields = append(fields, logging.String("request_id", id))
		}
		switch code {
		case codes.OK:
			logger.Info("grpc request", fields...)
		case codes.Internal, codes.Unknown, codes.DataLoss, codes.Unavailable:
			logger.Error("grpc request failed", append(fields, logging.Err(err))...)
		default:
			logger.Warn("grpc request rejected", append(fields, logging.String("error", status.Convert(err).Message()))...)
		}
		return resp, err
	}
}

func metricsUnaryInterceptor(m *prometheus.AppMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if m == nil || isHealthCheck(info.FullMethod) {
			return handler(ctx, req)
		}
		start := time.Now()
		resp, err := handler(ctx, req)
		service, method := splitMethodName(info.FullMethod)
		m.RecordGRPCRequest(service, method, status.Code(err).String(), time.Since(start))
		return resp, err
	}
}

// statusUnaryInterceptor converts application errors into gRPC statuses and
// sends the application code in the x-error-code trailer.
func statusUnaryInterceptor(m *prometheus.AppMetrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return nil, err
		}
		code := appCode(err)
		if m != nil {
			prometheus.RecordError(m, "grpc", code.String())
		}
		_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeKey, code.String()))
		return nil, ToStatus(err).Err()
	}
}

// ToStatus maps an error onto a gRPC status.  Application errors keep their
// code in the message; server-side failures hide their detail.
func ToStatus(err error) *status.Status {
	switch {
	case err == nil:
		return status.New(codes.OK, "")
	case stderrors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case stderrors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	}
	if s, ok := status.FromError(err); ok {
		return s
	}

	code := appCode(err)
	httpStatus := errors.HTTPStatusForCode(code)
	grpcCode := grpcCodeForHTTP(httpStatus)
	if httpStatus >= http.StatusInternalServerError {
		return status.New(grpcCode, fmt.Sprintf("%s: %s", code, errors.DefaultMessageForCode(code)))
	}
	msg := errors.DefaultMessageForCode(code)
	var ae *errors.AppError
	if stderrors.As(err, &ae) {
		msg = ae.Message
		if ae.Detail != "" {
			msg += " (" + ae.Detail + ")"
		}
	}
	return status.New(grpcCode, fmt.Sprintf("%s: %s", code, msg))
}

// appCode is the application code of err.  Errors from outside the
// application count as internal.
func appCode(err error) errors.ErrorCode {
	if code := errors.GetCode(err); code != errors.CodeUnknown {
		return code
	}
	return errors.ErrCodeInternal
}

func grpcCodeForHTTP(s int) codes.Code {
	switch s {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return codes.InvalidArgument
	case http.StatusUnauthorized:
		return codes.Unauthenticated
	case http.StatusNotFound:
		return codes.NotFound
	case http.StatusConflict:
		return codes.AlreadyExists
	case http.StatusRequestEntityTooLarge, http.StatusTooManyRequests:
		return codes.ResourceExhausted
	case http.StatusNotImplemented:
		return codes.Unimplemented
	case http.StatusServiceUnavailable:
		return codes.Unavailable
	case http.StatusGatewayTimeout:
		return codes.DeadlineExceeded
	}
	return codes.Internal
}

func authUnaryInterceptor(validator auth.APIKeyValidator, logger logging.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if isHealthCheck(info.FullMethod) || isReflection(info.FullMethod) {
			return handler(ctx, req)
		}
		key := auth.BearerToken(metadataValue(ctx, "authorization"))
		if key == "" {
			key = strings.TrimSpace(metadataValue(ctx, APIKeyKey))
		}
		if _, err := validator.ValidateAPIKey(key); err != nil {
			logger.Warn("API key rejected",
				logging.String("method", info.FullMethod),
				logging.Bool("key_present", key != ""),
			)
			return nil, err
		}
		return handler(ctx, req)
	}
}

func validationUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if v, ok := req.(Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, err
			}
		}
		return handler(ctx, req)
	}
}

func metadataValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}

// splitMethodName splits "/package.Service/Method" into its two halves.
func splitMethodName(fullMethod string) (string, string) {
	fullMethod = strings.TrimPrefix(fullMethod, "/")
	idx := strings.LastIndex(fullMethod, "/")
	if idx < 0 {
		return "unknown", fullMethod
	}
	return fullMethod[:idx], fullMethod[idx+1:]
}
