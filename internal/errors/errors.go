// errors описывает единый формат ошибок HTTP API комментариев.
// Его пишет REST-слой comments-service и читает клиент (internal/client):
//   - корректный HTTP-статус;
//   - короткий стабильный code для машиночитаемой обработки;
//   - безопасное message без утечки деталей;
//   - request_id из X-Request-Id для трассировки.
package errors

import (
	"encoding/json"
	"io"
	"net/http"
)

// Стабильные машиночитаемые коды ошибок.
const (
	CodeInvalidArgument  = "invalid_argument"
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission_denied"
	CodeNotFound         = "not_found"
	CodeDeadlineExceeded = "deadline_exceeded"
	CodeInternal         = "internal"
)

// HeaderRequestID — заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-Id"

// APIError — тело ошибки для клиента.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Response собирает тело ошибки по HTTP-статусу с безопасным сообщением.
func Response(status int) ErrorResponse {
	code, msg := baseFromStatus(status)

	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError пишет статус и тело ошибки, добавляя request_id из запроса или ответа.
func WriteError(w http.ResponseWriter, r *http.Request, status int) {
	resp := Response(status)

	if rid := w.Header().Get(HeaderRequestID); rid != "" {
		resp.Error.RequestID = rid
	} else if r != nil {
		resp.Error.RequestID = r.Header.Get(HeaderRequestID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// Decode читает тело ошибки из ответа сервера.
// Если тело пустое или не JSON — собирает ответ по статусу.
func Decode(status int, body io.Reader) ErrorResponse {
	var resp ErrorResponse
	if body != nil {
		if err := json.NewDecoder(io.LimitReader(body, 64<<10)).Decode(&resp); err == nil && resp.Error.Code != "" {
			return resp
		}
	}

	return Response(status)
}

// baseFromStatus — таблица HTTP-статус -> код/сообщение:
//   - 400, 422 -> invalid_argument
//   - 401 -> unauthenticated
//   - 403 -> permission_denied
//   - 404 -> not_found
//   - 504 -> deadline_exceeded
//   - прочее -> internal
func baseFromStatus(status int) (string, string) {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return CodeInvalidArgument, "invalid argument"
	case http.StatusUnauthorized:
		return CodeUnauthenticated, "unauthenticated"
	case http.StatusForbidden:
		return CodePermissionDenied, "permission denied"
	case http.StatusNotFound:
		return CodeNotFound, "not found"
	case http.StatusGatewayTimeout:
		return CodeDeadlineExceeded, "deadline exceeded"
	default:
		return CodeInternal, "internal error"
	}
}
