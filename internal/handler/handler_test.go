package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat-go/internal/config"
	"pdfchat-go/internal/model"
	"pdfchat-go/internal/repository"
	"pdfchat-go/internal/service"
	"pdfchat-go/pkg/ragclient"
	"pdfchat-go/pkg/token"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	sessions service.SessionService
	token    string
}

// fakeBackend 模拟 RAG 后端，uploadStatus 非 0 时上传返回该状态码。
func fakeBackend(t *testing.T, uploadStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/api/upload", func(w http.ResponseWriter, r *http.Request) {
		if uploadStatus != 0 {
			w.WriteHeader(uploadStatus)
			return
		}
		_, hdr, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"document_id": "doc-1", "filename": hdr.Filename})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Question   string  `json:"question"`
			DocumentID *string `json:"document_id"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		docID := ""
		if body.DocumentID != nil {
			docID = *body.DocumentID
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"answer": "Answer from " + docID + ": 30 days.", "source": nil})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, uploadStatus int) *testServer {
	t.Helper()
	return newTestServerWithTTL(t, uploadStatus, time.Hour)
}

func newTestServerWithTTL(t *testing.T, uploadStatus int, ttl time.Duration) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	backend := fakeBackend(t, uploadStatus)

	cfg := config.Config{
		Server:    config.ServerConfig{PublicHost: "localhost"},
		API:       config.APIConfig{BaseURL: backend.URL + "/api"},
		Client:    config.ClientConfig{Mode: config.ClientModeLive},
		Upload:    config.UploadConfig{MaxSizeMB: 1},
		RateLimit: config.RateLimitConfig{RPS: 1000, Burst: 1000},
	}
	sessions := service.NewSessionService(
		ragclient.New(cfg),
		token.NewJWTManager("test-secret", time.Hour),
		repository.NewSessionRepository[*service.Session](),
		ttl,
	)
	ts := &testServer{t: t, router: NewRouter(cfg, sessions), sessions: sessions}

	rec := ts.do(http.MethodPost, "/session", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var data struct {
		Token string        `json:"token"`
		State service.State `json:"state"`
	}
	ts.decode(rec, &data)
	require.NotEmpty(t, data.Token)
	ts.token = data.Token
	return ts
}

func (ts *testServer) do(method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) decode(rec *httptest.ResponseRecorder, out any) {
	var env envelope
	require.NoError(ts.t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(ts.t, json.Unmarshal(env.Data, out))
}

func (ts *testServer) state() service.State {
	rec := ts.do(http.MethodGet, "/api/state", nil, "")
	require.Equal(ts.t, http.StatusOK, rec.Code)
	var st service.State
	ts.decode(rec, &st)
	return st
}

func (ts *testServer) selectFile(name, contentType string, content []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+name+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	require.NoError(ts.t, err)
	_, _ = part.Write(content)
	require.NoError(ts.t, mw.Close())
	return ts.do(http.MethodPost, "/api/file", body, mw.FormDataContentType())
}

func (ts *testServer) sendJSON(method, path string, v any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(v)
	return ts.do(method, path, bytes.NewBuffer(b), "application/json")
}

func TestAPI_RequiresSessionToken(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.token = ""
	rec := ts.do(http.MethodGet, "/api/state", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	ts.token = "forged"
	rec = ts.do(http.MethodGet, "/api/state", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_InitialState(t *testing.T) {
	ts := newTestServer(t, 0)
	st := ts.state()
	assert.Equal(t, model.UploadIdle, st.Upload.Status)
	assert.Equal(t, "Idle", st.Upload.Badge)
	assert.True(t, st.Chat.Disabled)
	require.Len(t, st.Chat.Messages, 1)
	assert.Equal(t, model.IntroMessageID, st.Chat.Messages[0].ID)
}

func TestAPI_RejectsNonPDF(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.selectFile("image.png", "image/png", []byte("\x89PNG"))
	require.Equal(t, http.StatusOK, rec.Code)

	var st service.State
	ts.decode(rec, &st)
	assert.Equal(t, "Only PDF files are supported right now.", st.Upload.LocalError)
	assert.Equal(t, model.UploadIdle, st.Upload.Status)
	assert.Nil(t, st.Upload.File)
	assert.False(t, st.Upload.CanUpload)

	rec = ts.do(http.MethodPost, "/api/upload", nil, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, model.UploadIdle, ts.state().Upload.Status)
}

func TestAPI_FileTooLarge(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.selectFile("big.pdf", model.PDFContentType, bytes.Repeat([]byte("a"), 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Nil(t, ts.state().Upload.File)
}

func TestAPI_UploadThenChat(t *testing.T) {
	ts := newTestServer(t, 0)

	rec := ts.selectFile("report.pdf", model.PDFContentType, []byte("%PDF-1.7"))
	require.Equal(t, http.StatusOK, rec.Code)
	st := ts.state()
	require.NotNil(t, st.Upload.File)
	assert.Equal(t, "report.pdf", st.Upload.File.Name)
	assert.Equal(t, "8 B", st.Upload.SizeText)

	// 就绪之前不能提问
	rec = ts.sendJSON(http.MethodPost, "/api/chat", map[string]string{"text": "too early"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(http.MethodPost, "/api/upload", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool { return ts.state().Upload.Status == model.UploadReady }, 2*time.Second, 10*time.Millisecond)

	st = ts.state()
	assert.False(t, st.Chat.Disabled)
	last := st.Chat.Messages[len(st.Chat.Messages)-1]
	assert.Equal(t, model.RoleSystem, last.Role)
	assert.Contains(t, last.Content, "report.pdf")

	rec = ts.sendJSON(http.MethodPost, "/api/chat", map[string]string{"text": "What is the refund policy?"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Eventually(t, func() bool {
		msgs := ts.state().Chat.Messages
		return msgs[len(msgs)-1].Role == model.RoleAssistant
	}, 2*time.Second, 10*time.Millisecond)

	msgs := ts.state().Chat.Messages
	n := len(msgs)
	assert.Equal(t, model.RoleUser, msgs[n-2].Role)
	assert.Equal(t, "What is the refund policy?", msgs[n-2].Content)
	assert.Equal(t, "Answer from doc-1: 30 days.", msgs[n-1].Content)
}

func TestAPI_UploadFailure(t *testing.T) {
	ts := newTestServer(t, http.StatusInternalServerError)
	require.Equal(t, http.StatusOK, ts.selectFile("report.pdf", model.PDFContentType, []byte("%PDF")).Code)

	require.Equal(t, http.StatusAccepted, ts.do(http.MethodPost, "/api/upload", nil, "").Code)
	require.Eventually(t, func() bool { return ts.state().Upload.Status == model.UploadError }, 2*time.Second, 10*time.Millisecond)

	st := ts.state()
	assert.Contains(t, st.Upload.StatusText, "500")
	assert.Equal(t, "Needs retry", st.Upload.Badge)
	assert.True(t, st.Chat.Disabled)
}

func TestAPI_DraftAndRemove(t *testing.T) {
	ts := newTestServer(t, 0)
	rec := ts.sendJSON(http.MethodPut, "/api/draft", map[string]string{"draft": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", ts.state().Chat.Draft)

	require.Equal(t, http.StatusOK, ts.selectFile("report.pdf", model.PDFContentType, []byte("%PDF")).Code)
	rec = ts.do(http.MethodDelete, "/api/file", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, ts.state().Upload.File)
}

func TestAPI_WebSocketPushesState(t *testing.T) {
	ts := newTestServer(t, 0)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + ts.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var st service.State
	require.NoError(t, conn.ReadJSON(&st))
	assert.Equal(t, model.UploadIdle, st.Upload.Status)

	ts.selectFile("report.pdf", model.PDFContentType, []byte("%PDF"))
	require.NoError(t, conn.ReadJSON(&st))
	require.NotNil(t, st.Upload.File)
	assert.Equal(t, "report.pdf", st.Upload.File.Name)
}

func TestAPI_WebSocketClosesWhenSessionExpires(t *testing.T) {
	ts := newTestServerWithTTL(t, 0, 10*time.Millisecond)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws?token=" + ts.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var st service.State
	require.NoError(t, conn.ReadJSON(&st))

	time.Sleep(30 * time.Millisecond)
	require.Equal(t, 1, ts.sessions.Sweep())

	_, _, err = conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, SessionExpiredReason, closeErr.Text)

	assert.Equal(t, http.StatusUnauthorized, ts.do(http.MethodGet, "/api/state", nil, "").Code)
}

func TestHealthAndIndex(t *testing.T) {
	ts := newTestServer(t, 0)
	ts.token = ""

	rec := ts.do(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var health map[string]any
	ts.decode(rec, &health)
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 1, health["sessions"])

	rec = ts.do(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Upload a PDF and chat with it")
}
