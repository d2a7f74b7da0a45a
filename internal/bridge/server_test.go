package bridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/config"
	"github.com/GriffinCanCode/BizMate/core/internal/testutil"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "Hello! How can I help?"

func newTestServer(t *testing.T) (*Server, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)
	cfg := config.Default()
	cfg.API.BaseURL = api.URL()
	cfg.API.Timeout = 5 * time.Second
	cfg.RateLimit.Enabled = false
	cfg.Chat.Greeting = greeting

	srv, err := New(Options{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv, api
}

func call(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func signIn(t *testing.T, srv *Server, api *testutil.FakeAPI) {
	t.Helper()
	api.Reply(http.MethodPost, "/auth/login", http.StatusOK, `{"access_token":"`+testutil.Token+`","token_type":"bearer"}`)
	rec := call(t, srv, http.MethodPost, "/api/session/login", map[string]string{
		"email": "owner@example.com", "password": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := call(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))
}

func TestLoginAndChat(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodPost, "/chatbot/send", http.StatusOK, `{"reply":"<b>Try bundles</b><script>alert(1)</script>"}`)

	rec := call(t, srv, http.MethodGet, "/api/session", nil)
	assert.Equal(t, true, decodeBody(t, rec)["authenticated"])

	rec = call(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "price?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	reply := body["reply"].(map[string]any)
	assert.Equal(t, "<b>Try bundles</b>", reply["content"])
	assert.Len(t, body["messages"], 3)

	sent, _ := api.Last(http.MethodPost, "/chatbot/send")
	assert.Equal(t, "Bearer "+testutil.Token, sent.Header.Get("Authorization"))
}

func TestMissingSessionRendersRedirect(t *testing.T) {
	srv, api := newTestServer(t)

	rec := call(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "price?"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, LoginPath, body["redirect"])
	assert.Equal(t, "unauthenticated", body["kind"])
	assert.NotContains(t, body, "error")
	assert.Zero(t, api.TotalCalls())
}

func TestExpiredSessionRendersRedirect(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodPost, "/marketing/generate", http.StatusForbidden, `{"detail":"Not authenticated"}`)

	rec := call(t, srv, http.MethodPost, "/api/content/generate", map[string]string{"topic": "Diwali Sale"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "auth_expired", body["kind"])
	assert.Equal(t, LoginPath, body["redirect"])

	rec = call(t, srv, http.MethodGet, "/api/session", nil)
	assert.Equal(t, false, decodeBody(t, rec)["authenticated"])
}

func TestRejectedLoginShowsMessage(t *testing.T) {
	srv, api := newTestServer(t)
	api.Reply(http.MethodPost, "/auth/login", http.StatusUnauthorized, `{"detail":"Incorrect email or password"}`)

	rec := call(t, srv, http.MethodPost, "/api/session/login", map[string]string{
		"email": "owner@example.com", "password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Incorrect email or password.", body["error"])
	assert.NotContains(t, body, "redirect")
}

func TestContentFlow(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodPost, "/marketing/generate", http.StatusOK,
		`{"title":"T","content":"C","hashtags":["#sale"],"image_prompt":"P"}`)
	api.Reply(http.MethodPost, "/scheduler/posts", http.StatusOK,
		`{"id":9,"title":"T","content":"C","platform":"Instagram","status":"draft","scheduled_time":null}`)

	rec := call(t, srv, http.MethodPost, "/api/content/generate", map[string]string{"topic": " "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", decodeBody(t, rec)["kind"])

	rec = call(t, srv, http.MethodPost, "/api/content/generate", map[string]string{"topic": "Diwali Sale"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "generated", body["state"])
	assert.Equal(t, "T", body["content"].(map[string]any)["title"])

	rec = call(t, srv, http.MethodPost, "/api/content/save", map[string]string{"status": "draft"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, "saved", body["state"])
	assert.Equal(t, float64(9), body["saved"].(map[string]any)["id"])

	saved, _ := api.Last(http.MethodPost, "/scheduler/posts")
	assert.JSONEq(t, `{"title":"T","content":"C","platform":"Instagram","status":"draft","scheduled_time":null}`, string(saved.Body))
}

func TestTransientFailureRendersBadGateway(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodGet, "/scheduler/posts", http.StatusInternalServerError, `{"detail":"database offline"}`)

	rec := call(t, srv, http.MethodGet, "/api/posts", nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "transient", body["kind"])
	assert.Equal(t, "database offline", body["error"])
}

func TestProfileNotFound(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)

	rec := call(t, srv, http.MethodGet, "/api/profile", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["exists"])
	assert.NotContains(t, body, "profile")
}

func TestPostsAndPublish(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodGet, "/scheduler/posts", http.StatusOK,
		`[{"id":1,"title":"A","content":"a","platform":"Instagram","status":"draft","scheduled_time":null},
		  {"id":2,"title":"B","content":"b","platform":"Instagram","status":"scheduled","scheduled_time":"2025-11-01T09:30:00"}]`)
	api.Reply(http.MethodPut, "/scheduler/posts/1", http.StatusOK,
		`{"id":1,"title":"A","content":"a","platform":"Instagram","status":"published","scheduled_time":null}`)

	rec := call(t, srv, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Len(t, body["posts"], 2)
	counts := body["counts"].(map[string]any)
	assert.Equal(t, float64(1), counts["draft"])
	assert.Equal(t, float64(1), counts["scheduled"])

	rec = call(t, srv, http.MethodPost, "/api/posts/2/publish", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = call(t, srv, http.MethodPost, "/api/posts/1/publish", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "published", decodeBody(t, rec)["post"].(map[string]any)["status"])

	rec = call(t, srv, http.MethodPost, "/api/posts/abc/publish", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDeleteDraftAndHistory(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodGet, "/scheduler/posts", http.StatusOK,
		`[{"id":2,"title":"B","content":"b","platform":"Instagram","status":"scheduled","scheduled_time":"2025-11-01T09:30:00"}]`)
	api.Reply(http.MethodPost, "/scheduler/posts", http.StatusOK,
		`{"id":5,"title":"Holi","content":"Colours","platform":"Instagram","status":"draft","scheduled_time":null}`)
	api.Reply(http.MethodDelete, "/scheduler/posts/2", http.StatusOK, `{"message":"Post deleted"}`)
	api.Reply(http.MethodPost, "/generate-post", http.StatusOK, `{"content":"Colours <script>x()</script>everywhere"}`)
	api.Reply(http.MethodGet, "/posts", http.StatusOK, `[{"id":5,"title":"Holi","content":"Colours","platform":"Instagram","status":"draft","scheduled_time":null}]`)

	rec := call(t, srv, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, srv, http.MethodPost, "/api/drafts", map[string]string{"topic": "Holi", "tone": "playful"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Colours everywhere", decodeBody(t, rec)["draft"].(map[string]any)["content"])
	sent, _ := api.Last(http.MethodPost, "/generate-post")
	assert.JSONEq(t, `{"topic":"Holi","platform":"Instagram","tone":"playful"}`, string(sent.Body))

	rec = call(t, srv, http.MethodPost, "/api/posts", map[string]string{"title": "Holi", "content": "Colours"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, float64(5), body["post"].(map[string]any)["id"])
	assert.Equal(t, float64(2), body["counts"].(map[string]any)["total"])

	rec = call(t, srv, http.MethodDelete, "/api/posts/2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), decodeBody(t, rec)["counts"].(map[string]any)["total"])
	assert.Equal(t, 1, api.Calls(http.MethodDelete, "/scheduler/posts/2"))

	rec = call(t, srv, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decodeBody(t, rec)["posts"], 1)
}

func TestNewSessionStartsFreshChat(t *testing.T) {
	srv, api := newTestServer(t)
	signIn(t, srv, api)
	api.Reply(http.MethodPost, "/chatbot/send", http.StatusOK, `{"reply":"hi"}`)
	rec := call(t, srv, http.MethodPost, "/api/chat", map[string]string{"message": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, srv, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	signIn(t, srv, api)

	rec = call(t, srv, http.MethodGet, "/api/chat", nil)
	messages := decodeBody(t, rec)["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, greeting, messages[0].(map[string]any)["content"])
}

func TestWebSocketReceivesRedirect(t *testing.T) {
	srv, _ := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var event Event
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventSystem, event.Type)
	require.Eventually(t, func() bool { return srv.hub.Count() == 1 }, time.Second, 10*time.Millisecond)

	rec := call(t, srv, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventRedirect, event.Type)
	assert.Equal(t, "schedule.list", event.Workflow)
	assert.Equal(t, LoginPath, event.Redirect)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, EventPong, event.Type)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	call(t, srv, http.MethodGet, "/health", nil)

	rec := call(t, srv, http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bizmate_bridge_http_requests_total")
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 1})
	srv, _ := newTestServer(t)
	srv.router.GET("/limited", handler, func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := call(t, srv, http.MethodGet, "/limited", nil)
	second := call(t, srv, http.MethodGet, "/limited", nil)

	assert.Equal(t, http.StatusNoContent, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
