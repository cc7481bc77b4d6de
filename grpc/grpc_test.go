package statusgrpc_test

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/blockberries/ledgerstatus"
	statusgrpc "github.com/blockberries/ledgerstatus/grpc"
	"github.com/blockberries/ledgerstatus/server"
	ledgertest "github.com/blockberries/ledgerstatus/testing"
	"github.com/blockberries/ledgerstatus/types"
)

func newGRPCServer(t *testing.T, ledger ledgerstatus.Ledger) *statusgrpc.GRPCServer {
	t.Helper()
	srv, err := server.New(ledger)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return statusgrpc.NewGRPCServer(srv, nil)
}

// startServer starts a gRPC server on a random port and returns
// the listener address and a cleanup function.
func startServer(t *testing.T, gs *statusgrpc.GRPCServer, reg prometheus.Registerer) (string, func()) {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s, err := gs.NewServer(reg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}

	go func() {
		_ = s.Serve(lis)
	}()

	return lis.Addr().String(), func() {
		s.GracefulStop()
	}
}

func dial(t *testing.T, addr string) *statusgrpc.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := statusgrpc.Dial(ctx, addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	return client
}

func mockLedger() *ledgertest.MockLedger {
	return ledgertest.NewMockLedger(
		map[string]types.Status{"abc123": types.StatusValid, "tx2": types.StatusUndecided},
		map[string]types.Status{"b1": types.StatusValid},
	)
}

func TestGRPC_Status_Transaction(t *testing.T) {
	addr, cleanup := startServer(t, newGRPCServer(t, mockLedger()), prometheus.NewRegistry())
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	outcome, err := client.Status(context.Background(), types.TxQuery("abc123"))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !outcome.Found || outcome.Status != types.StatusValid {
		t.Fatalf("expected valid, got %+v", outcome)
	}
	links := outcome.LinkMap()
	if len(links) != 1 || links["tx"] != "/transactions/abc123" {
		t.Fatalf("unexpected links: %v", links)
	}
}

func TestGRPC_Status_Block(t *testing.T) {
	addr, cleanup := startServer(t, newGRPCServer(t, mockLedger()), prometheus.NewRegistry())
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	outcome, err := client.Status(context.Background(), types.BlockQuery("b1"))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if outcome.Status != types.StatusValid || len(outcome.Links) != 0 {
		t.Fatalf("expected valid block without links, got %+v", outcome)
	}

	outcome, err = client.Status(context.Background(), types.BlockQuery("missing"))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if outcome.Found {
		t.Fatalf("expected not found, got %+v", outcome)
	}
}

func TestGRPC_Status_Rejection(t *testing.T) {
	ledger := mockLedger()
	addr, cleanup := startServer(t, newGRPCServer(t, ledger), prometheus.NewRegistry())
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	_, err := client.Status(context.Background(), types.StatusQuery{TxID: "abc", BlockID: "def"})
	rej, ok := ledgerstatus.IsRejection(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Reason != ledgerstatus.ReasonExactlyOneRequired {
		t.Fatalf("unexpected reason %s", rej.Reason)
	}
	if ledger.AcquireCalls.Load() != 0 {
		t.Fatal("rejected query reached the ledger")
	}
}

func TestGRPC_Status_BackendError(t *testing.T) {
	ledger := mockLedger()
	ledger.TransactionStatusFn = func(context.Context, string) (types.Status, error) {
		return types.StatusUnknown, errors.New("disk on fire")
	}
	addr, cleanup := startServer(t, newGRPCServer(t, ledger), prometheus.NewRegistry())
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	_, err := client.Status(context.Background(), types.TxQuery("abc123"))
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if ledger.Outstanding() != 0 {
		t.Fatalf("connection leaked: %d outstanding", ledger.Outstanding())
	}
}

func TestGRPC_Ping(t *testing.T) {
	ledger := mockLedger()
	addr, cleanup := startServer(t, newGRPCServer(t, ledger), prometheus.NewRegistry())
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	ledger.PingFn = func(context.Context) error { return errors.New("unreachable") }
	if err := client.Ping(context.Background()); status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
}

func TestGRPC_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	addr, cleanup := startServer(t, newGRPCServer(t, mockLedger()), reg)
	defer cleanup()

	client := dial(t, addr)
	defer client.Close()

	for i := 0; i < 3; i++ {
		if _, err := client.Status(context.Background(), types.TxQuery("tx2")); err != nil {
			t.Fatalf("Status: %v", err)
		}
	}

	n, err := testutil.GatherAndCount(reg, "grpc_server_handled_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n == 0 {
		t.Fatal("expected grpc_server_handled_total series")
	}
}

func TestGRPC_NewServer_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	gs := newGRPCServer(t, mockLedger())
	if _, err := gs.NewServer(reg); err != nil {
		t.Fatalf("first NewServer: %v", err)
	}
	if _, err := gs.NewServer(reg); err == nil {
		t.Fatal("expected duplicate registration error")
	}
}
