package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"pdfchat-go/internal/model"
	"pdfchat-go/internal/service"
	"pdfchat-go/internal/view"
	"pdfchat-go/pkg/ragclient"
)

const helpText = `Commands:
  /file PATH   choose a PDF
  /remove      clear the chosen file
  /upload      upload and index the chosen file
  /quit        exit
Anything else is sent as a question.`

// terminal 把面板回调同步接到编排器上，每条命令执行完再打印新增内容。
type terminal struct {
	ctx    context.Context
	orch   service.Orchestrator
	upload *view.UploadPanel
	chat   *view.ChatPanel
	out    io.Writer

	printed    map[string]bool
	lastStatus string
}

func newTerminal(ctx context.Context, client ragclient.Client, out io.Writer) *terminal {
	orch := service.NewOrchestrator(client)
	t := &terminal{ctx: ctx, orch: orch, out: out, printed: make(map[string]bool)}
	t.upload = view.NewUploadPanel(orch.SelectFile, func() { _ = orch.Upload(ctx) })
	t.chat = view.NewChatPanel(func(text string) { _ = orch.Send(ctx, text) })
	t.flush()
	return t
}

func (t *terminal) close() {
	t.orch.Close()
}

// run 逐行读取命令直到 /quit、输入结束或 ctx 被取消。
func (t *terminal) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(t.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(t.out)
			return scanner.Err()
		}
		if t.ctx.Err() != nil {
			return nil
		}
		if quit := t.handle(scanner.Text()); quit {
			return nil
		}
	}
}

// handle 执行一行输入，返回 true 表示退出。
func (t *terminal) handle(line string) bool {
	line = strings.TrimSpace(line)
	cmd, arg, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
		return false
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(t.out, helpText)
	case "/file":
		t.chooseFile(strings.TrimSpace(arg))
	case "/remove":
		t.upload.Remove()
	case "/upload":
		if !t.upload.Upload(t.orch.View()) {
			fmt.Fprintln(t.out, "Choose a PDF first.")
		}
	default:
		t.chat.SetDraft(line)
		if !t.chat.Submit(t.orch.View()) {
			t.chat.SetDraft("")
			fmt.Fprintln(t.out, "Upload a PDF to start asking questions")
		}
	}
	t.flush()
	return false
}

func (t *terminal) chooseFile(path string) {
	if path == "" {
		fmt.Fprintln(t.out, "Usage: /file PATH")
		return
	}
	file, err := readFile(path)
	if err != nil {
		fmt.Fprintf(t.out, "Could not read %s: %v\n", path, err)
		return
	}
	t.upload.Choose(file)
}

// readFile 读取文件并按内容探测类型，终端没有浏览器声明的 MIME 类型可用。
func readFile(path string) (*model.SelectedFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	mtype := mimetype.Detect(content)
	return &model.SelectedFile{
		Name:        filepath.Base(path),
		Size:        int64(len(content)),
		ContentType: mtype.String(),
		Content:     content,
	}, nil
}

// flush 打印状态变化和尚未打印过的消息。
func (t *terminal) flush() {
	v := t.orch.View()
	panel := t.upload.Render(v)
	status := fmt.Sprintf("[%s] %s", panel.Badge, panel.StatusText)
	if panel.File != nil {
		status = fmt.Sprintf("[%s] %s (%s) %s", panel.Badge, panel.File.Name, panel.SizeText, panel.StatusText)
	}
	if status != t.lastStatus {
		fmt.Fprintln(t.out, status)
		t.lastStatus = status
	}

	for _, m := range t.chat.Render(v).Messages {
		if t.printed[m.ID] {
			continue
		}
		t.printed[m.ID] = true
		fmt.Fprintf(t.out, "%s: %s\n", m.Label, m.Content)
	}
}
