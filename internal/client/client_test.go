package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/BizMate/core/internal/session"
	"github.com/GriffinCanCode/BizMate/core/internal/shared/types"
	"github.com/GriffinCanCode/BizMate/core/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *session.Store, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	store := session.NewStore(session.Options{})
	return New(store, Options{BaseURL: api.URL(), Timeout: 5 * time.Second}), store, api
}

func TestRequestWithoutTokenFailsFast(t *testing.T) {
	c, _, api := newTestClient(t)
	api.Reply(http.MethodGet, "/posts", http.StatusOK, `[]`)

	_, err := c.Request(context.Background(), Call{Method: http.MethodGet, Path: "/posts", AuthRequired: true})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, 0, api.TotalCalls())
}

func TestRequestReadsTokenOnEveryCall(t *testing.T) {
	c, store, api := newTestClient(t)
	api.Reply(http.MethodGet, "/posts", http.StatusOK, `[]`)
	call := Call{Method: http.MethodGet, Path: "/posts", AuthRequired: true}

	store.Set("first")
	_, err := c.Request(context.Background(), call)
	require.NoError(t, err)
	first, _ := api.Last(http.MethodGet, "/posts")
	assert.Equal(t, "Bearer first", first.Header.Get("Authorization"))
	assert.NotEmpty(t, first.Header.Get(RequestIDHeader))

	store.Set("second")
	resp, err := c.Request(context.Background(), call)
	require.NoError(t, err)
	second, _ := api.Last(http.MethodGet, "/posts")
	assert.Equal(t, "Bearer second", second.Header.Get("Authorization"))
	assert.Equal(t, resp.RequestID, second.Header.Get(RequestIDHeader))
	assert.NotEqual(t, first.Header.Get(RequestIDHeader), second.Header.Get(RequestIDHeader))
}

func TestUnauthenticatedCallSendsNoToken(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set(testutil.Token)
	api.Reply(http.MethodPost, "/auth/signup", http.StatusOK, `{"id":1,"email":"a@b.c"}`)

	require.NoError(t, c.Signup(context.Background(), testCreds()))

	req, ok := api.Last(http.MethodPost, "/auth/signup")
	require.True(t, ok)
	assert.Empty(t, req.Header.Get("Authorization"))
	assert.JSONEq(t, `{"email":"owner@example.com","password":"hunter2"}`, string(req.Body))
}

func TestAuthRejectionClearsSession(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			c, store, api := newTestClient(t)
			store.Set(testutil.Token)
			api.Reply(http.MethodPost, "/chatbot/send", status, `{"detail":"Could not validate credentials"}`)

			_, err := c.SendChat(context.Background(), "hi", "Web Simulation")

			assert.True(t, errors.Is(err, ErrAuthExpired))
			assert.Equal(t, status, StatusOf(err))
			_, ok := store.Get()
			assert.False(t, ok)
		})
	}
}

func TestNon2xxIsTransientAndNotRetried(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set(testutil.Token)
	api.Reply(http.MethodPost, "/marketing/generate", http.StatusInternalServerError, `{"detail":"model unavailable"}`)

	_, err := c.GenerateContent(context.Background(), "Diwali Sale")

	require.Error(t, err)
	assert.Equal(t, KindTransient, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
	assert.Equal(t, "model unavailable", UserMessage(err))
	assert.Equal(t, 1, api.Calls(http.MethodPost, "/marketing/generate"))
	_, ok := store.Get()
	assert.True(t, ok, "a server error must not end the session")
}

func TestTransportFailureIsTransient(t *testing.T) {
	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()

	store := session.NewStore(session.Options{})
	store.Set(testutil.Token)
	c := New(store, Options{BaseURL: url, Timeout: time.Second})

	_, err := c.ListPosts(context.Background())

	assert.Equal(t, KindTransient, KindOf(err))
	assert.Zero(t, StatusOf(err))
}

func TestMissingFieldIsApplicationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"absent", `{"author":"BizMate"}`},
		{"null", `{"reply":null}`},
		{"empty body", ``},
		{"not json", `<html>oops</html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, store, api := newTestClient(t)
			store.Set(testutil.Token)
			api.Reply(http.MethodPost, "/chatbot/send", http.StatusOK, tt.body)

			_, err := c.SendChat(context.Background(), "hi", "Web Simulation")

			assert.True(t, errors.Is(err, ErrApplication), "got %v", err)
		})
	}
}

func TestGenerateContentRequiresEveryField(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set(testutil.Token)
	api.Reply(http.MethodPost, "/marketing/generate", http.StatusOK,
		`{"title":"Diwali Sale","content":"Lights, sweets and 20% off","hashtags":["#diwali"]}`)

	_, err := c.GenerateContent(context.Background(), "Diwali Sale")

	assert.Equal(t, KindApplication, KindOf(err))
}

func TestGenerateContentDecodes(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set(testutil.Token)
	api.Reply(http.MethodPost, "/marketing/generate", http.StatusOK, map[string]any{
		"title":        "Diwali Sale",
		"content":      "Lights, sweets and 20% off",
		"hashtags":     []string{"#diwali", "#sale"},
		"image_prompt": "diyas on a shop counter",
	})

	got, err := c.GenerateContent(context.Background(), "Diwali Sale")

	require.NoError(t, err)
	assert.Equal(t, "Diwali Sale", got.Title)
	assert.Equal(t, "Lights, sweets and 20% off", got.Body)
	assert.Equal(t, []string{"#diwali", "#sale"}, got.Hashtags)
	req, _ := api.Last(http.MethodPost, "/marketing/generate")
	assert.JSONEq(t, `{"topic":"Diwali Sale"}`, string(req.Body))
}

func TestRequestHonoursCancelledContext(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set(testutil.Token)
	gate := api.Gate(http.MethodGet, "/posts", http.StatusOK, `[]`)
	defer gate.Release()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.ListPosts(ctx)
		done <- err
	}()
	<-gate.Entered()
	cancel()

	err := <-done
	assert.Equal(t, KindTransient, KindOf(err))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStaleRejectionKeepsNewSession(t *testing.T) {
	c, store, api := newTestClient(t)
	store.Set("old-token")
	gate := api.Gate(http.MethodGet, "/business/profile", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`)

	done := make(chan error, 1)
	go func() {
		_, err := c.GetProfile(context.Background())
		done <- err
	}()
	<-gate.Entered()
	store.Set("fresh-token")
	gate.Release()

	err := <-done
	assert.Equal(t, KindAuthExpired, KindOf(err))
	token, ok := store.Get()
	require.True(t, ok, "a session set while the call was in flight must survive")
	assert.Equal(t, "fresh-token", token)

	req, _ := api.Last(http.MethodGet, "/business/profile")
	assert.Equal(t, "Bearer old-token", req.Header.Get("Authorization"))
}

func TestBreakerFailsFastOnOutage(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/posts", http.StatusBadGateway, `{"detail":"upstream down"}`)
	store := session.NewStore(session.Options{})
	store.Set(testutil.Token)
	reg := prometheus.NewRegistry()
	metrics := monitoring.New(reg)
	breaker := NewBreaker(2, time.Minute, nil, metrics)
	c := New(store, Options{BaseURL: api.URL(), Breaker: breaker, Metrics: metrics})

	for i := 0; i < 2; i++ {
		_, err := c.ListPosts(context.Background())
		require.Equal(t, KindTransient, KindOf(err))
	}
	assert.Equal(t, resilience.StateOpen, breaker.State())

	_, err := c.ListPosts(context.Background())
	assert.Equal(t, KindTransient, KindOf(err))
	assert.True(t, errors.Is(err, resilience.ErrCircuitOpen))
	assert.Equal(t, 2, api.Calls(http.MethodGet, "/posts"), "an open breaker must not reach the network")
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.BreakerOpen.WithLabelValues("bizmate-api")))
}

func TestBreakerIgnoresRejections(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	store := session.NewStore(session.Options{})
	store.Set(testutil.Token)
	breaker := NewBreaker(2, time.Minute, nil, nil)
	c := New(store, Options{BaseURL: api.URL(), Breaker: breaker})

	for i := 0; i < 4; i++ {
		_, err := c.GetProfile(context.Background())
		require.Equal(t, http.StatusNotFound, StatusOf(err))
	}

	assert.Equal(t, resilience.StateClosed, breaker.State())
	assert.Equal(t, 4, api.Calls(http.MethodGet, "/business/profile"))
}

func TestRequestMetrics(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Reply(http.MethodGet, "/posts", http.StatusOK, `[]`)
	store := session.NewStore(session.Options{})
	metrics := monitoring.New(prometheus.NewRegistry())
	c := New(store, Options{BaseURL: api.URL(), Metrics: metrics})

	_, _ = c.ListPosts(context.Background())
	store.Set(testutil.Token)
	_, _ = c.ListPosts(context.Background())

	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.APIRequests.WithLabelValues("/posts", "GET", "unauthenticated")))
	assert.Equal(t, float64(1), promtest.ToFloat64(metrics.APIRequests.WithLabelValues("/posts", "GET", "success")))
}

func testCreds() types.Credentials {
	return types.Credentials{Email: "owner@example.com", Password: "hunter2"}
}
