package ragclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"pdfchat-go/internal/model"
	"pdfchat-go/pkg/log"
)

// 错误响应体最多保留的字节数，仅用于日志。
const maxErrorBody = 2048

type httpClient struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewHTTPClient 创建一个访问真实后端的客户端。timeout 为 0 时只受运行时默认超时约束。
func NewHTTPClient(baseURL string, timeout time.Duration) Client {
	return &httpClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		client:  &http.Client{},
	}
}

type chatRequest struct {
	Question   string  `json:"question"`
	DocumentID *string `json:"document_id"`
}

// Health 调用 GET /health。
func (c *httpClient) Health(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create health request: %w", err)
	}
	var body map[string]any
	if err := c.do(req, "Health check", &body); err != nil {
		return nil, err
	}
	return body, nil
}

// Upload 以 multipart 表单字段 file 上传文件。
func (c *httpClient) Upload(ctx context.Context, file *model.SelectedFile) (*UploadResult, error) {
	if file == nil {
		return nil, errors.New("no file to upload")
	}
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreatePart(filePartHeader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	log.Infow("[upload] starting upload", "name", file.Name, "size", file.Size, "type", file.ContentType, "apiUrl", c.baseURL+"/upload")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result UploadResult
	if err := c.do(req, "Upload", &result); err != nil {
		return nil, err
	}
	log.Infow("[upload] success", "documentId", result.DocumentID, "filename", result.Filename)
	return &result, nil
}

// Ask 以 JSON 调用 POST /chat。
func (c *httpClient) Ask(ctx context.Context, question, documentID string) (*Answer, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	reqBody := chatRequest{Question: question}
	if documentID != "" {
		reqBody.DocumentID = &documentID
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var answer Answer
	if err := c.do(req, "Chat", &answer); err != nil {
		return nil, err
	}
	return &answer, nil
}

// do 发送请求，非 2xx 时返回 *StatusError，否则把 JSON 响应解码到 out。
func (c *httpClient) do(req *http.Request, op string, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", strings.ToLower(op), err)
	}
	defer resp.Body.Close()

	log.Debugw("backend response", "op", op, "status", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", strings.ToLower(op), err)
	}
	return nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader 保留文件声明的 Content-Type，而不是 CreateFormFile 默认的 octet-stream。
func filePartHeader(file *model.SelectedFile) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	return h
}
