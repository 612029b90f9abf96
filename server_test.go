package lineecho

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"strconv"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()

	opts = append([]Option{LoggerOption(DiscardLogger())}, opts...)
	server, err := Listen(context.Background(), Config{Host: "127.0.0.1", Service: "0"}, opts...)
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	t.Cleanup(func() { server.Close() })
	return server
}

func portString(addr net.Addr) string {
	return strconv.Itoa(addr.(*net.TCPAddr).Port)
}

// roundTrip serves one exchange on server while a client sends msg to it.
func roundTrip(t *testing.T, server *Server, msg []byte) (reply, echoed []byte) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		echoed, err = server.ServeOne(ctx)
		return err
	})
	group.Go(func() error {
		conn, err := Dial(ctx, Config{Host: "127.0.0.1", Service: portString(server.Addr())}, LoggerOption(DiscardLogger()))
		if err != nil {
			return err
		}
		defer conn.Close()

		reply, err = conn.Exchange(msg)
		return err
	})

	if err := group.Wait(); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	return reply, echoed
}

func TestListen(t *testing.T) {
	server := newTestServer(t)

	addr, ok := server.Addr().(*net.TCPAddr)
	if !ok {
		t.Fatalf("Addr = %T, want *net.TCPAddr", server.Addr())
	}

	if addr.Port == 0 {
		t.Error("listener should be on an ephemeral port")
	}

	if Describe(addr) != "127.0.0.1" {
		t.Errorf("Describe(Addr) = %q, want 127.0.0.1", Describe(addr))
	}
}

func TestListen_LogsCandidates(t *testing.T) {
	logger := &mockLogger{}
	server, err := Listen(context.Background(), Config{Host: "127.0.0.1", Service: "0"}, LoggerOption(logger))
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	defer server.Close()

	if logger.count("available address") != 1 {
		t.Errorf("available address logged %d times, want 1", logger.count("available address"))
	}

	if logger.count("server listening") != 1 {
		t.Error("server listening not logged")
	}
}

func TestServer_ServeOnePing(t *testing.T) {
	server := newTestServer(t)

	reply, echoed := roundTrip(t, server, []byte("ping\n"))

	if string(reply) != "ping\n" {
		t.Errorf("reply = %q, want %q", reply, "ping\n")
	}
	if string(echoed) != "ping\n" {
		t.Errorf("echoed = %q, want %q", echoed, "ping\n")
	}
}

func TestServer_ServeOneHelloWorld(t *testing.T) {
	server := newTestServer(t)
	msg := []byte("The message to be read: hello world!\n")

	reply, _ := roundTrip(t, server, msg)

	if len(reply) != 37 || string(reply) != string(msg) {
		t.Errorf("reply = %q, want %q", reply, msg)
	}
}

func TestServer_ListenerSurvivesServeOne(t *testing.T) {
	server := newTestServer(t)

	roundTrip(t, server, []byte("first\n"))
	reply, _ := roundTrip(t, server, []byte("second\n"))

	if string(reply) != "second\n" {
		t.Errorf("reply = %q, want %q", reply, "second\n")
	}
}

func TestServer_ServeOneCanceled(t *testing.T) {
	server := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := server.ServeOne(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ServeOne did not return after cancel")
	}
}

func TestServer_ServeOneCanceledDuringReceive(t *testing.T) {
	server := newTestServer(t)

	conn, err := net.Dial("tcp", server.Addr().String())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := server.ServeOne(ctx)
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ServeOne did not return after cancel")
	}
}

func TestServer_AcceptAfterClose(t *testing.T) {
	server := newTestServer(t)

	if err := server.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	_, err := server.Accept()
	if !errors.Is(err, ErrAccept) {
		t.Errorf("expected ErrAccept, got %v", err)
	}
	if !IsFatal(err) {
		t.Error("accept failure should be fatal")
	}
}

func TestListen_PortInUse(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	defer occupied.Close()

	_, err = Listen(context.Background(),
		Config{Host: "127.0.0.1", Service: portString(occupied.Addr())},
		LoggerOption(DiscardLogger()),
	)
	if !errors.Is(err, ErrNoBindableEndpoint) {
		t.Errorf("expected ErrNoBindableEndpoint, got %v", err)
	}
}

func TestListen_InvalidConfig(t *testing.T) {
	_, err := Listen(context.Background(), Config{Host: "127.0.0.1"}, LoggerOption(DiscardLogger()))
	if !errors.Is(err, ErrResolution) {
		t.Errorf("expected ErrResolution, got %v", err)
	}
}

// closedPort returns a loopback port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestDial_Refused(t *testing.T) {
	port := closedPort(t)

	_, err := Dial(context.Background(),
		Config{Host: "127.0.0.1", Service: strconv.Itoa(port)},
		LoggerOption(DiscardLogger()),
	)
	if !errors.Is(err, ErrNoReachableEndpoint) {
		t.Errorf("expected ErrNoReachableEndpoint, got %v", err)
	}
}

func TestDial_FallsBackToReachableCandidate(t *testing.T) {
	server := newTestServer(t)
	serverPort := server.Addr().(*net.TCPAddr).Port

	loopback := netip.MustParseAddr("127.0.0.1")
	dead, _ := NewCandidate(loopback, closedPort(t))
	live, _ := NewCandidate(loopback, serverPort)

	logger := &mockLogger{}
	conn, err := Dial(context.Background(), Config{Service: "ignored"},
		ResolverOption(StaticResolver{dead, live}),
		LoggerOption(logger),
	)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	if conn.Addr().(*net.TCPAddr).Port != serverPort {
		t.Errorf("connected to %v, want port %d", conn.Addr(), serverPort)
	}

	if logger.count("failed to connect") != 1 {
		t.Errorf("failed to connect logged %d times, want 1", logger.count("failed to connect"))
	}
}

func TestServer_IPv6Loopback(t *testing.T) {
	server, err := Listen(context.Background(), Config{Host: "::1", Service: "0"}, LoggerOption(DiscardLogger()))
	if err != nil {
		t.Skipf("IPv6 loopback unavailable: %v", err)
	}
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		_, err := server.ServeOne(ctx)
		return err
	})

	var reply []byte
	group.Go(func() error {
		conn, err := Dial(ctx, Config{Host: "::1", Service: portString(server.Addr())}, LoggerOption(DiscardLogger()))
		if err != nil {
			return err
		}
		defer conn.Close()

		reply, err = conn.Exchange([]byte("v6\n"))
		return err
	})

	if err := group.Wait(); err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if string(reply) != "v6\n" {
		t.Errorf("reply = %q, want %q", reply, "v6\n")
	}
}
