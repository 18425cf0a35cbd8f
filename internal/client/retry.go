package client

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

// retryTransport повторяет идемпотентные запросы (GET, PUT, DELETE, HEAD)
// при сетевых ошибках и ответах 502/503/504 с экспоненциальной паузой.
// POST не повторяется: повтор создал бы дубль или переключил реакцию обратно.
type retryTransport struct {
	next    http.RoundTripper
	retries int
	backoff time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.retries <= 0 || !idempotent(req.Method) {
		return t.next.RoundTrip(req)
	}

	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		b, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
		body = b
	}

	var (
		resp *http.Response
		err  error
	)
	for attempt := 0; ; attempt++ {
		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err = t.next.RoundTrip(req)
		if attempt >= t.retries || !shouldRetry(resp, err) {
			return resp, err
		}

		// освобождаем соединение перед повтором.
		drainBody(resp)

		timer := time.NewTimer(t.backoff << attempt)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.C:
		}
	}
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

func shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}

	return resp.StatusCode == http.StatusBadGateway ||
		resp.StatusCode == http.StatusServiceUnavailable ||
		resp.StatusCode == http.StatusGatewayTimeout
}

func drainBody(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}
