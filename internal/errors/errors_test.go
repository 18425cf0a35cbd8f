package errors

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResponse_StatusTable(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		http.StatusBadRequest:          CodeInvalidArgument,
		http.StatusUnprocessableEntity: CodeInvalidArgument,
		http.StatusUnauthorized:        CodeUnauthenticated,
		http.StatusForbidden:           CodePermissionDenied,
		http.StatusNotFound:            CodeNotFound,
		http.StatusGatewayTimeout:      CodeDeadlineExceeded,
		http.StatusInternalServerError: CodeInternal,
		http.StatusTeapot:              CodeInternal,
	}

	for status, code := range cases {
		require.Equal(t, code, Response(status).Error.Code, "status %d", status)
	}
}

func TestWriteError_AddsRequestID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/comments", nil)
	r.Header.Set(HeaderRequestID, "rid-1")
	w := httptest.NewRecorder()

	WriteError(w, r, http.StatusNotFound)

	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, CodeNotFound, got.Error.Code)
	require.Equal(t, "rid-1", got.Error.RequestID)
}

// Заголовок ответа (выставленный мидлваром RequestID) приоритетнее заголовка запроса.
func TestWriteError_PrefersResponseRequestID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(HeaderRequestID, "from-request")
	w := httptest.NewRecorder()
	w.Header().Set(HeaderRequestID, "from-response")

	WriteError(w, r, http.StatusForbidden)

	var got ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	require.Equal(t, "from-response", got.Error.RequestID)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	body := `{"error":{"code":"permission_denied","message":"not the author","request_id":"r"}}`
	got := Decode(http.StatusForbidden, strings.NewReader(body))
	require.Equal(t, "not the author", got.Error.Message)
	require.Equal(t, "r", got.Error.RequestID)

	got = Decode(http.StatusBadGateway, strings.NewReader("<html>bad gateway</html>"))
	require.Equal(t, CodeInternal, got.Error.Code)

	got = Decode(http.StatusUnauthorized, nil)
	require.Equal(t, CodeUnauthenticated, got.Error.Code)
}
