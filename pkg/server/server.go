package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/sambigeara/permcalc/pkg/rpc"
)

var ErrSocketInUse = errors.New("health socket is owned by a running server")

// HealthServer exposes the standard gRPC health service on a unix socket.
type HealthServer struct {
	log    *zap.Logger
	path   string
	mode   fs.FileMode
	health *health.Server
}

func NewHealthServer(log *zap.Logger, path string, mode fs.FileMode) *HealthServer {
	s := &HealthServer{
		log:    log.Named("health"),
		path:   path,
		mode:   mode,
		health: health.NewServer(),
	}
	s.SetServing(false)
	return s
}

// SetServing flips both the overall status and the permission service status.
func (s *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(rpc.ServiceName, status)
}

// Start blocks until ctx is cancelled or the listener fails.
func (s *HealthServer) Start(ctx context.Context) error {
	if err := claimSocket(ctx, s.path); err != nil {
		return err
	}

	l, err := (&net.ListenConfig{}).Listen(ctx, "unix", s.path)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.path, err)
	}
	defer os.Remove(s.path)

	if err := setSocketPermissions(s.path, s.mode); err != nil {
		_ = l.Close()
		return err
	}

	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)
	s.log.Info("health socket listening", zap.String("path", s.path), zap.Stringer("mode", s.mode))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(l)
	})
	g.Go(func() error {
		<-ctx.Done()
		s.health.Shutdown()
		srv.GracefulStop()
		return nil
	})
	return g.Wait()
}

// claimSocket removes a stale socket file, or fails if something answers on it.
func claimSocket(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(dialCtx, "unix", path)
	if err == nil {
		_ = conn.Close()
		return fmt.Errorf("%w: %s", ErrSocketInUse, path)
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	return nil
}
