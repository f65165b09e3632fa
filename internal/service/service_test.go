package service

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/ledger"
	"github.com/mmynk/groupledger/internal/middleware"
	"github.com/mmynk/groupledger/internal/splitrequest"
	"github.com/mmynk/groupledger/internal/storage/sqlite"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

// testEnv holds Connect clients for every service behind a test server.
type testEnv struct {
	groups apiconnect.GroupServiceClient
	ledger apiconnect.LedgerServiceClient
	splits apiconnect.SplitRequestServiceClient
	jwt    *auth.JWTManager
}

// setupTestServer serves all three services over a temp SQLite database
// with the production interceptor chain.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	l := ledger.New(store)
	engine := splitrequest.New(store)
	jwtManager := auth.NewJWTManager("service-test-secret-key", time.Hour)

	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(l), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(l), interceptors))
	mux.Handle(apiconnect.NewSplitRequestServiceHandler(NewSplitRequestService(engine), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		splits: apiconnect.NewSplitRequestServiceClient(http.DefaultClient, server.URL),
		jwt:    jwtManager,
	}
}

// as builds a request authenticated as userID.
func as[T any](t *testing.T, env *testEnv, userID string, msg *T) *connect.Request[T] {
	t.Helper()
	token, err := env.jwt.Generate(userID, userID+"@example.com")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected %v, got %v (%v)", want, got, err)
	}
}

// createGroup makes a group owned by creator with the given extra members.
func createGroup(t *testing.T, env *testEnv, creator string, members ...string) *api.Group {
	t.Helper()
	resp, err := env.groups.CreateGroup(t.Context(), as(t, env, creator, &api.CreateGroupRequest{
		Name:    "Trip",
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func balances(t *testing.T, env *testEnv, userID, groupID string) map[string]string {
	t.Helper()
	resp, err := env.groups.GetBalances(t.Context(), as(t, env, userID, &api.GetBalancesRequest{GroupID: groupID}))
	if err != nil {
		t.Fatalf("GetBalances failed: %v", err)
	}
	out := make(map[string]string, len(resp.Msg.Balances))
	for _, b := range resp.Msg.Balances {
		out[b.UserID] = b.NetBalance
	}
	return out
}

func expectBalances(t *testing.T, got, want map[string]string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("balances: expected %v, got %v", want, got)
	}
	for user, amount := range want {
		if got[user] != amount {
			t.Errorf("balance of %s: expected %s, got %s", user, amount, got[user])
		}
	}
}
