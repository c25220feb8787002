package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/metrics"
	"github.com/thog92/go-lwjall/streaming"
)

// meteredStream counts the decoded bytes while keeping the manager methods
// visible to the player.
type meteredStream struct {
	*streaming.Manager
}

func (s meteredStream) PullChunk(target int) ([]byte, error) {
	chunk, err := s.Manager.PullChunk(target)
	if err != nil {
		metrics.StreamErrorsTotal.Inc()
	}
	metrics.DecodedBytesTotal.Add(float64(len(chunk)))
	return chunk, err
}

type metricsServer struct {
	server *http.Server
	addr   net.Addr
}

func startMetricsServer(log lwjall.Logger, address string) (*metricsServer, error) {
	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed starting metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	s := &metricsServer{
		server: &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		addr:   lis.Addr(),
	}

	go func() {
		if err := s.server.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Errorf("metrics server failed")
		}
	}()

	log.Infof("serving metrics on http://%s/metrics", s.addr)
	return s, nil
}

func (s *metricsServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
