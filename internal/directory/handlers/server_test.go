package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	testGRPCPort = 50151
	testHTTPPort = 18181
)

func TestServer_RegisterHTTPHandlers(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(testGRPCPort, testHTTPPort, logger)

	err := s.RegisterHTTPHandlers(NewEmployeeHandler(&mockEmployeeController{}, nil, logger), "secret")
	require.NoError(t, err)

	assert.NotNil(t, s.httpServer.Handler)
	assert.Equal(t, s.httpEndpoint, s.httpServer.Addr)
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(testGRPCPort, testHTTPPort, logger, grpc.Creds(insecure.NewCredentials()))
	require.NoError(t, s.RegisterHTTPHandlers(NewEmployeeHandler(&mockEmployeeController{}, nil, logger), ""))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	healthURL := fmt.Sprintf("http://localhost:%d/healthz", testHTTPPort)
	require.Eventually(t, func() bool {
		resp, err := http.Get(healthURL)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 3*time.Second, 50*time.Millisecond)

	conn, err := grpc.NewClient(
		fmt.Sprintf("localhost:%d", testGRPCPort),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	conn.Close()

	s.Stop()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}

	lis, err := net.Listen("tcp", s.grpcEndpoint)
	if assert.NoError(t, err) {
		lis.Close()
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", testGRPCPort+1))
	require.NoError(t, err)
	defer lis.Close()

	s := NewServer(testGRPCPort+1, testHTTPPort+1, zaptest.NewLogger(t))
	assert.Error(t, s.Start())
}
