package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/tripsplit/internal/auth"
	"github.com/mmynk/tripsplit/internal/blob"
	"github.com/mmynk/tripsplit/internal/middleware"
	"github.com/mmynk/tripsplit/internal/models"
	"github.com/mmynk/tripsplit/internal/notify"
	"github.com/mmynk/tripsplit/internal/storage/sqlstore"
	"github.com/mmynk/tripsplit/pkg/api"
	"github.com/mmynk/tripsplit/pkg/api/apiconnect"
	"github.com/mmynk/tripsplit/pkg/logging"
)

const (
	testUserHeader = "X-Test-User"
	testSecret     = "test-secret-key-with-at-least-32-bytes"
)

// testAuthInterceptor trusts the X-Test-User header as the caller's ID.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if id := req.Header().Get(testUserHeader); id != "" {
				ctx = middleware.WithUser(ctx, id, id+"@example.com")
			}
			return next(ctx, req)
		}
	}
}

// recordingNotifier keeps every event it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	events []notify.DebtEvent
	err    error
}

func (n *recordingNotifier) DebtChanged(_ context.Context, event notify.DebtEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

func (n *recordingNotifier) Events() []notify.DebtEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notify.DebtEvent(nil), n.events...)
}

// fakePresigner hands out keys without talking to a bucket.
type fakePresigner struct{}

func (fakePresigner) PresignPut(_ context.Context, kind blob.Kind, ownerID string) (blob.URL, error) {
	key := blob.NewKey(kind, ownerID, time.Now())
	return blob.URL{Key: key, URL: "https://blob.test/" + key + "?upload", ExpiresAt: time.Now().Add(time.Minute)}, nil
}

func (fakePresigner) PresignGet(_ context.Context, key string) (blob.URL, error) {
	return blob.URL{Key: key, URL: "https://blob.test/" + key, ExpiresAt: time.Now().Add(time.Minute)}, nil
}

type testEnv struct {
	store    *sqlstore.SQLStore
	notifier *recordingNotifier
	jwt      *auth.JWTManager
	auth     apiconnect.AuthServiceClient
	trips    apiconnect.TripServiceClient
	bills    apiconnect.BillServiceClient
}

// setupTestServer serves all three services over httptest, backed by a
// temporary sqlite database.
func setupTestServer(t *testing.T, opts ...BillOption) *testEnv {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	logger := logging.New(io.Discard, slog.LevelDebug)
	notifier := &recordingNotifier{}
	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	testAuth := connect.WithInterceptors(testAuthInterceptor(), middleware.LoggingInterceptor(logger))
	opts = append([]BillOption{WithNotifier(notifier), WithLogger(logger)}, opts...)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor(logger)),
	))
	mux.Handle(apiconnect.NewTripServiceHandler(NewTripService(store, logger), testAuth))
	mux.Handle(apiconnect.NewBillServiceHandler(NewBillService(store, opts...), testAuth))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:    store,
		notifier: notifier,
		jwt:      jwtManager,
		auth:     apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		trips:    apiconnect.NewTripServiceClient(server.Client(), server.URL),
		bills:    apiconnect.NewBillServiceClient(server.Client(), server.URL),
	}
}

// seedUsers registers participants whose ID is the lowercase name.
func (e *testEnv) seedUsers(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, e.store.CreateUser(context.Background(), &models.User{
			ID:          id,
			Email:       id + "@example.com",
			DisplayName: strings.ToUpper(id[:1]) + id[1:],
			CreatedAt:   time.Now().Unix(),
			UpdatedAt:   time.Now().Unix(),
		}))
	}
}

func (e *testEnv) createTrip(t *testing.T, owner string, members ...string) string {
	t.Helper()
	resp, err := e.trips.CreateTrip(context.Background(), as(owner, &api.CreateTripRequest{
		Name:      "Chiang Mai",
		MemberIDs: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Trip.ID
}

func (e *testEnv) createBill(t *testing.T, creditor, tripID string, total string, participants ...string) *api.Bill {
	t.Helper()
	resp, err := e.bills.CreateBill(context.Background(), as(creditor, &api.CreateBillRequest{
		TripID:    tripID,
		BillInput: equalBill(total, participants...),
	}))
	require.NoError(t, err)
	return resp.Msg.Bill
}

func (e *testEnv) transition(userID, billID, participantID, action string) (*api.Bill, error) {
	resp, err := e.bills.TransitionDebt(context.Background(), as(userID, &api.TransitionDebtRequest{
		BillID:        billID,
		ParticipantID: participantID,
		Action:        action,
	}))
	if err != nil {
		return nil, err
	}
	return resp.Msg.Bill, nil
}

func equalBill(total string, participants ...string) api.BillInput {
	return api.BillInput{
		Title:          "Hotel",
		Total:          dec(total),
		PaymentMethod:  string(models.PaymentBankAccount),
		PaymentValue:   "KBank 123-4-56789-0",
		SplitMode:      string(models.SplitEqual),
		ParticipantIDs: participants,
	}
}

// as builds a request sent by userID.
func as[T any](userID string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if userID != "" {
		req.Header().Set(testUserHeader, userID)
	}
	return req
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertAmount(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func assertCode(t *testing.T, want connect.Code, err error) {
	t.Helper()
	require.Error(t, err)
	var connectErr *connect.Error
	require.True(t, errors.As(err, &connectErr), "not a connect error: %v", err)
	assert.Equal(t, want, connectErr.Code(), "error: %v", err)
}

func debtOf(bill *api.Bill, participantID string) api.Debt {
	for _, d := range bill.Debts {
		if d.ParticipantID == participantID {
			return d
		}
	}
	return api.Debt{}
}
