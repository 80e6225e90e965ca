package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfchat-go/internal/model"
	"pdfchat-go/internal/repository"
	"pdfchat-go/pkg/token"
)

func newTestSessionService(ttl time.Duration) SessionService {
	return NewSessionService(&fakeClient{}, token.NewJWTManager("test-secret", time.Hour), repository.NewSessionRepository[*Session](), ttl)
}

func TestSessionService_CreateAndGet(t *testing.T) {
	svc := newTestSessionService(time.Hour)

	sess, tok, err := svc.Create()
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	got, err := svc.Get(tok)
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, 1, svc.Count())

	_, err = svc.Get("garbage")
	assert.Error(t, err)
}

func TestSessionService_SweepExpiresIdleSessions(t *testing.T) {
	svc := newTestSessionService(time.Nanosecond)

	_, tok, err := svc.Create()
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	assert.Equal(t, 1, svc.Sweep())
	_, err = svc.Get(tok)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSession_PanelsDriveOrchestrator(t *testing.T) {
	sess := newSession("s1", &fakeClient{})
	defer sess.Close()

	assert.True(t, sess.Upload.Choose(reportPDF()))
	assert.True(t, sess.Upload.Upload(sess.Orchestrator.View()))
	require.Eventually(t, func() bool {
		return sess.Orchestrator.View().Status == model.UploadReady
	}, time.Second, 5*time.Millisecond)

	sess.Chat.SetDraft("What is the refund policy?")
	assert.True(t, sess.Chat.Submit(sess.Orchestrator.View()))
	require.Eventually(t, func() bool {
		msgs := sess.State().Chat.Messages
		return msgs[len(msgs)-1].Role == model.RoleAssistant
	}, time.Second, 5*time.Millisecond)

	st := sess.State()
	assert.Equal(t, "Ready", st.Upload.Badge)
	assert.Equal(t, "answer to What is the refund policy?", st.Chat.Messages[len(st.Chat.Messages)-1].Content)
}

func TestSession_WatchRendersState(t *testing.T) {
	sess := newSession("s1", &fakeClient{})
	defer sess.Close()

	var states []State
	unwatch := sess.Watch(func(st State) { states = append(states, st) })
	sess.Upload.Choose(&model.SelectedFile{Name: "image.png", ContentType: "image/png"})
	unwatch()

	require.Len(t, states, 1)
	assert.Equal(t, "Only PDF files are supported right now.", states[0].Upload.StatusText)
	assert.Equal(t, model.UploadIdle, states[0].Upload.Status)
}

func TestSession_DoneClosedOnExpiry(t *testing.T) {
	svc := newTestSessionService(time.Nanosecond)
	sess, _, err := svc.Create()
	require.NoError(t, err)

	select {
	case <-sess.Done():
		t.Fatal("session done before expiry")
	default:
	}

	time.Sleep(time.Millisecond)
	require.Equal(t, 1, svc.Sweep())
	select {
	case <-sess.Done():
	case <-time.After(time.Second):
		t.Fatal("session not done after expiry")
	}
}
