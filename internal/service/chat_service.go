package service

import (
	"context"
	"strings"

	"pdfchat-go/internal/model"
	"pdfchat-go/pkg/log"
	"pdfchat-go/pkg/metrics"
)

const (
	answerErrorPrefix = "Could not get an answer: "
	staleAnswerText   = answerErrorPrefix + "the document changed before the answer arrived."
)

// Send 先追加用户消息再发起请求；无论成功与否，请求结束后都会追加一条助手消息并清除 sending 标志。
func (o *orchestrator) Send(ctx context.Context, text string) error {
	question := strings.TrimSpace(text)
	if question == "" {
		return ErrEmptyMessage
	}

	o.mu.Lock()
	switch {
	case o.closed:
		o.mu.Unlock()
		return ErrClosed
	case o.status != model.UploadReady:
		o.mu.Unlock()
		return ErrChatDisabled
	case o.isSending:
		o.mu.Unlock()
		return ErrBusy
	}
	documentID := o.documentID
	gen := o.generation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.askCancel = cancel
	o.appendLocked(model.RoleUser, question)
	o.isSending = true
	o.notifyLocked()
	o.mu.Unlock()

	answer, err := o.client.Ask(ctx, question, documentID)

	o.mu.Lock()
	defer o.mu.Unlock()
	defer func() {
		o.isSending = false
		o.askCancel = nil
		o.notifyLocked()
	}()

	switch {
	case gen != o.generation:
		metrics.Questions.WithLabelValues("stale").Inc()
		o.appendLocked(model.RoleAssistant, staleAnswerText)
		return ErrStale
	case err != nil:
		log.Error("[chat] error", err)
		metrics.Questions.WithLabelValues("error").Inc()
		o.appendLocked(model.RoleAssistant, answerErrorPrefix+err.Error())
		return err
	}
	metrics.Questions.WithLabelValues("answered").Inc()
	o.appendLocked(model.RoleAssistant, answer.Text)
	return nil
}
