package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorKind is the normalized classification of a failed API call. Every
// failure that leaves this package is one of these.
type ErrorKind int

const (
	ErrNetwork ErrorKind = iota
	ErrAuthRejected
	ErrConflict
	ErrValidation
	ErrServer
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrAuthRejected:
		return "auth_rejected"
	case ErrConflict:
		return "conflict"
	case ErrValidation:
		return "validation"
	default:
		return "server_error"
	}
}

type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Kind, e.Message)
}

// AsAPIError unwraps err into an *APIError when possible.
func AsAPIError(err error) (*APIError, bool) {
	apiErr, ok := err.(*APIError)
	return apiErr, ok
}

// sessionHooks is what the gateway needs from the session store: the current
// token for the bearer header and the teardown hook fired on a 401. Clearing
// the session on AuthRejected is the only side effect the gateway triggers
// across component boundaries.
type sessionHooks interface {
	Token() string
	HandleAuthRejected()
}

// APIClient is the single point of outbound calls. It performs no retries and
// no request coalescing; each call is independent.
type APIClient struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	session sessionHooks
}

func NewAPIClient(baseURL string, timeout time.Duration, log *zap.Logger) *APIClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &APIClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// BindSession attaches the session store after construction; the store itself
// needs the client for login, so the two are wired in NewApplication.
func (c *APIClient) BindSession(s sessionHooks) {
	c.session = s
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type answerResponse struct {
	Answer string `json:"answer"`
}

// detailBody is FastAPI's error envelope.
type detailBody struct {
	Detail string `json:"detail"`
}

func (c *APIClient) LoginUser(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", jsonBody(body), "application/json", &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", &APIError{Kind: ErrServer, Message: "login response carried no access token"}
	}
	return out.AccessToken, nil
}

func (c *APIClient) RegisterUser(ctx context.Context, username, email, password string) error {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", jsonBody(body), "application/json", nil)
}

func (c *APIClient) ListDocuments(ctx context.Context) ([]DocumentRecord, error) {
	var out []DocumentRecord
	if err := c.do(ctx, http.MethodGet, "/documents/", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *APIClient) UploadDocument(ctx context.Context, filename string, contents []byte) (DocumentRecord, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return DocumentRecord{}, &APIError{Kind: ErrValidation, Message: err.Error()}
	}
	if _, err := part.Write(contents); err != nil {
		return DocumentRecord{}, &APIError{Kind: ErrValidation, Message: err.Error()}
	}
	if err := w.Close(); err != nil {
		return DocumentRecord{}, &APIError{Kind: ErrValidation, Message: err.Error()}
	}

	var out DocumentRecord
	if err := c.do(ctx, http.MethodPost, "/upload/", &buf, w.FormDataContentType(), &out); err != nil {
		return DocumentRecord{}, err
	}
	return out, nil
}

func (c *APIClient) DeleteDocument(ctx context.Context, id DocumentID) error {
	return c.do(ctx, http.MethodDelete, "/documents/"+id.String(), nil, "", nil)
}

func (c *APIClient) Query(ctx context.Context, question string) (string, error) {
	body := map[string]string{"query": question}
	var out answerResponse
	if err := c.do(ctx, http.MethodPost, "/query/", jsonBody(body), "application/json", &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, "", nil)
}

func jsonBody(v any) io.Reader {
	payload, _ := json.Marshal(v)
	return bytes.NewReader(payload)
}

// do builds the request, attaches the bearer token when one is held, executes
// the call and normalizes the outcome. A decodable 2xx fills out; everything
// else comes back as an *APIError.
func (c *APIClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Message: err.Error()}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	if c.session != nil {
		if token := c.session.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return &APIError{Kind: ErrNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: ErrNetwork, Message: err.Error()}
	}

	c.log.Debug("request complete",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			// A malformed success payload is a server fault, not ours.
			return &APIError{Kind: ErrServer, Status: resp.StatusCode, Message: "malformed response payload"}
		}
		return nil
	}

	apiErr := &APIError{
		Kind:    classifyStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Message: errorMessage(raw, resp.StatusCode),
	}
	if apiErr.Kind == ErrAuthRejected && c.session != nil {
		c.session.HandleAuthRejected()
	}
	return apiErr
}

func classifyStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthRejected
	case status == http.StatusBadRequest || status == http.StatusConflict:
		return ErrConflict
	case status == http.StatusRequestEntityTooLarge || status == http.StatusUnsupportedMediaType || status == http.StatusUnprocessableEntity:
		return ErrValidation
	default:
		return ErrServer
	}
}

func errorMessage(raw []byte, status int) string {
	var body detailBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Detail != "" {
		return body.Detail
	}
	return fmt.Sprintf("request failed with status %d", status)
}
