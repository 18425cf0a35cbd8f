// Package client — HTTP-клиент REST API комментариев BragBoard.
//
// Каждая операция — один запрос с bearer-токеном от TokenSource. Ответы сервера
// с кодом не из 2xx превращаются в *Error, который разворачивается в одну из
// сигнальных ошибок пакета:
//
//	сеть/таймаут      -> ErrNetwork
//	401               -> ErrAuth
//	403               -> ErrForbidden
//	404               -> ErrNotFound
//	400, 422          -> ErrValidation
//	5xx, битое тело   -> ErrServer
//
// Клиент не получает и не обновляет токены: при ErrAuth решение (например,
// отправить пользователя на логин) принимает вызывающий код.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/pkg/log"
)

var (
	// ErrNetwork — транспортная ошибка или таймаут.
	ErrNetwork = errors.New("network error")
	// ErrAuth — нет токена или сервер его отверг (401).
	ErrAuth = errors.New("unauthenticated")
	// ErrForbidden — нет прав: не автор и не модератор (403).
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — сущности больше нет (404).
	ErrNotFound = errors.New("not found")
	// ErrValidation — неверные входные данные, например пустой текст (400).
	ErrValidation = errors.New("validation failed")
	// ErrServer — ошибка на стороне сервера или нечитаемый ответ.
	ErrServer = errors.New("server error")
)

// Error — ответ сервера с ошибкой.
type Error struct {
	Op        string
	Status    int
	Code      string
	Message   string
	RequestID string
	Kind      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v: status %d", e.Op, e.Kind, e.Status)
	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.RequestID != "" {
		msg += " (request_id=" + e.RequestID + ")"
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// TokenSource — источник bearer-токена (коллаборатор аутентификации).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken — фиксированный токен.
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", ErrAuth
	}

	return string(s), nil
}

// TokenFunc — адаптер функции к TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

func (f TokenFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient подменяет базовый *http.Client (его Transport оборачивается повторами).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithTimeout — таймаут одного запроса (включая повторы).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetry — число повторов идемпотентных запросов и начальная пауза.
func WithRetry(count int, backoff time.Duration) Option {
	return func(c *Client) {
		c.retries = count
		c.backoff = backoff
	}
}

// WithUserAgent задаёт User-Agent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// Client — клиент REST API комментариев. Безопасен для конкурентного использования.
type Client struct {
	baseURL   *url.URL
	tokens    TokenSource
	base      *http.Client
	http      *http.Client
	timeout   time.Duration
	retries   int
	backoff   time.Duration
	userAgent string
}

// New создаёт клиента для baseURL (например, "https://brag.example.com/api").
func New(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	const op = "client/New"

	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%s: parse base url: %w", op, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("%s: base url must be absolute http(s): %q", op, baseURL)
	}

	if tokens == nil {
		return nil, fmt.Errorf("%s: nil token source", op)
	}

	c := &Client{
		baseURL:   u,
		tokens:    tokens,
		base:      http.DefaultClient,
		timeout:   10 * time.Second,
		backoff:   200 * time.Millisecond,
		userAgent: "bragboard-comments-client",
	}

	for _, opt := range opts {
		opt(c)
	}

	next := c.base.Transport
	if next == nil {
		next = http.DefaultTransport
	}

	c.http = &http.Client{
		Transport:     &retryTransport{next: next, retries: c.retries, backoff: c.backoff},
		CheckRedirect: c.base.CheckRedirect,
		Jar:           c.base.Jar,
		Timeout:       c.timeout,
	}

	return c, nil
}

// ListComments возвращает двухуровневое дерево комментариев поста.
func (c *Client) ListComments(ctx context.Context, postID string) ([]models.Comment, error) {
	const op = "client/ListComments"

	postID = strings.TrimSpace(postID)
	if postID == "" {
		return nil, fmt.Errorf("%s: empty post id: %w", op, ErrValidation)
	}

	var raw json.RawMessage
	q := url.Values{"postId": []string{postID}}
	if err := c.do(ctx, op, http.MethodGet, []string{"comments"}, q, nil, &raw); err != nil {
		return nil, err
	}

	return decodeList(op, raw)
}

// CreateComment создаёт комментарий (parentID == "") или ответ.
// Пустой текст отсекается до запроса.
func (c *Client) CreateComment(ctx context.Context, postID, content, parentID string) (*models.Comment, error) {
	const op = "client/CreateComment"

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: empty content: %w", op, ErrValidation)
	}

	if strings.TrimSpace(postID) == "" {
		return nil, fmt.Errorf("%s: empty post id: %w", op, ErrValidation)
	}

	in := models.CreateCommentRequest{
		PostID:   strings.TrimSpace(postID),
		Content:  content,
		ParentID: strings.TrimSpace(parentID),
	}

	var raw json.RawMessage
	if err := c.do(ctx, op, http.MethodPost, []string{"comments"}, nil, in, &raw); err != nil {
		return nil, err
	}

	return decodeComment(op, raw)
}

// EditComment меняет текст комментария; сервер возвращает его с isEdited=true.
func (c *Client) EditComment(ctx context.Context, id, content string) (*models.Comment, error) {
	const op = "client/EditComment"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: empty id: %w", op, ErrValidation)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: empty content: %w", op, ErrValidation)
	}

	var raw json.RawMessage
	err := c.do(ctx, op, http.MethodPut, []string{"comments", id}, nil, models.EditCommentRequest{Content: content}, &raw)
	if err != nil {
		return nil, err
	}

	return decodeComment(op, raw)
}

// DeleteComment удаляет комментарий. Уже удалённый (404) считается успехом.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	const op = "client/DeleteComment"

	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%s: empty id: %w", op, ErrValidation)
	}

	err := c.do(ctx, op, http.MethodDelete, []string{"comments", id}, nil, nil, nil)
	if errors.Is(err, ErrNotFound) {
		log.From(ctx).Debug("comment already deleted", "op", op, "id", id)
		return nil
	}

	return err
}

// ReactToComment переключает реакцию текущего пользователя: та же реакция
// снимается, другая заменяет прежнюю. Возвращает комментарий с новыми счётчиками.
func (c *Client) ReactToComment(ctx context.Context, id string, kind models.ReactionKind) (*models.Comment, error) {
	const op = "client/ReactToComment"

	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%s: empty id: %w", op, ErrValidation)
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%s: unknown reaction %q: %w", op, kind, ErrValidation)
	}

	var raw json.RawMessage
	err := c.do(ctx, op, http.MethodPost, []string{"comments", id, "react"}, nil, models.ReactRequest{Type: kind}, &raw)
	if err != nil {
		return nil, err
	}

	return decodeComment(op, raw)
}

// do выполняет запрос и декодирует ответ в out (если out != nil).
func (c *Client) do(ctx context.Context, op, method string, segments []string, query url.Values, in, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil || strings.TrimSpace(token) == "" {
		return &Error{Op: op, Status: http.StatusUnauthorized, Code: apierrors.CodeUnauthenticated, Message: "no credential", Kind: ErrAuth}
	}

	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}

	u := c.baseURL.JoinPath(escaped...)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}

	rid := uuid.NewString()
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apierrors.HeaderRequestID, rid)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	lg := log.From(ctx).With("op", op, "method", method, "path", u.Path, "request_id", rid)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		lg.Warn("request failed", "err", err, "dur", time.Since(start))
		return fmt.Errorf("%s: %w: %w", op, ErrNetwork, err)
	}
	defer drainBody(resp)

	lg.Debug("response", "status", resp.StatusCode, "dur", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		er := apierrors.Decode(resp.StatusCode, resp.Body)
		if er.Error.RequestID == "" {
			er.Error.RequestID = rid
		}

		return &Error{
			Op:        op,
			Status:    resp.StatusCode,
			Code:      er.Error.Code,
			Message:   er.Error.Message,
			RequestID: er.Error.RequestID,
			Kind:      kindFor(resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}

	if resp.StatusCode == http.StatusNoContent {
		lg.Error("empty response where an entity was expected", "status", resp.StatusCode)
		return fmt.Errorf("%s: empty response: %w", op, ErrServer)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		lg.Error("decode response failed", "err", err)
		return fmt.Errorf("%s: decode response: %w: %w", op, ErrServer, err)
	}

	return nil
}

// decodeComment принимает комментарий как есть ({"id":...}) или в обёртке
// ({"comment":{...}}). Комментарий без id — ошибка сервера.
func decodeComment(op string, raw json.RawMessage) (*models.Comment, error) {
	var env struct {
		Comment *models.Comment `json:"comment"`
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w: %w", op, ErrServer, err)
	}

	out := env.Comment
	if out == nil {
		out = &models.Comment{}
		if err := json.Unmarshal(raw, out); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w: %w", op, ErrServer, err)
		}
	}

	if err := checkIDs(*out); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrServer, err)
	}

	return out, nil
}

// decodeList принимает массив корней или обёртку {"comments":[...]}; null — пустой список.
func decodeList(op string, raw json.RawMessage) ([]models.Comment, error) {
	trimmed := bytes.TrimSpace(raw)

	var list []models.Comment
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var env struct {
			Comments []models.Comment `json:"comments"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w: %w", op, ErrServer, err)
		}
		list = env.Comments
	} else if err := json.Unmarshal(trimmed, &list); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w: %w", op, ErrServer, err)
	}

	for _, c := range list {
		if err := checkIDs(c); err != nil {
			return nil, fmt.Errorf("%s: %w: %w", op, ErrServer, err)
		}
	}

	if list == nil {
		list = []models.Comment{}
	}

	return list, nil
}

func checkIDs(c models.Comment) error {
	if c.ID == "" {
		return errors.New("comment without id")
	}

	for _, r := range c.Replies {
		if r.ID == "" {
			return fmt.Errorf("reply of %q without id", c.ID)
		}
	}

	return nil
}

// kindFor — HTTP-статус -> сигнальная ошибка пакета.
func kindFor(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuth
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound || status == http.StatusGone:
		return ErrNotFound
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrNetwork
	default:
		return ErrServer
	}
}
