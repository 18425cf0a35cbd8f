package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/bragboard/internal/auth"
	"github.com/pribylovaa/bragboard/internal/config"
	apierrors "github.com/pribylovaa/bragboard/internal/errors"
	"github.com/pribylovaa/bragboard/internal/models"
	"github.com/pribylovaa/bragboard/internal/service"
	"github.com/pribylovaa/bragboard/internal/storage"
	"github.com/pribylovaa/bragboard/mocks"
)

const testSecret = "router-test-secret-0123456789"

type fixture struct {
	st     *mocks.MockStorage
	srv    http.Handler
	tokens map[string]string
}

func newFixture(t *testing.T, basePath string) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)

	cfg := config.Config{
		Auth:   config.AuthConfig{ModeratorRoles: []string{"admin", "moderator"}},
		Limits: config.LimitsConfig{MaxContent: 100},
	}
	v := auth.New(testSecret, "bragboard")

	f := &fixture{
		st:     st,
		srv:    NewRouter(service.New(st, cfg), v, Options{Timeout: time.Second, BasePath: basePath}),
		tokens: map[string]string{},
	}

	for _, a := range []models.Author{
		{ID: "alice", Name: "Alice", Role: "employee"},
		{ID: "bob", Name: "Bob", Role: "employee"},
		{ID: "mod", Name: "Mo", Role: "moderator"},
	} {
		tok, err := v.Issue(a, time.Hour)
		require.NoError(t, err)
		f.tokens[a.ID] = tok
	}

	return f
}

func (f *fixture) do(t *testing.T, method, target, as, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, rd)
	if as != "" {
		req.Header.Set("Authorization", "Bearer "+f.tokens[as])
	}

	rr := httptest.NewRecorder()
	f.srv.ServeHTTP(rr, req)

	return rr
}

func errCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var env apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotEmpty(t, env.Error.RequestID)

	return env.Error.Code
}

func TestRouter_RequiresBearer(t *testing.T) {
	f := newFixture(t, "")

	rr := f.do(t, http.MethodGet, "/comments?postId=p1", "", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, apierrors.CodeUnauthenticated, errCode(t, rr))

	req := httptest.NewRequest(http.MethodGet, "/comments?postId=p1", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rr = httptest.NewRecorder()
	f.srv.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRouter_ListComments(t *testing.T) {
	f := newFixture(t, "")

	f.st.EXPECT().ListByPost(gomock.Any(), "p1").Return([]models.CommentRecord{
		{ID: "1", PostID: "p1", AuthorID: "bob", Content: "root", Reactions: map[string]models.ReactionKind{"alice": models.ReactionDislike}},
		{ID: "2", PostID: "p1", ParentID: "1", AuthorID: "alice", Content: "reply"},
	}, nil)

	rr := f.do(t, http.MethodGet, "/comments?postId=p1", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var out []models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Len(t, out[0].Replies, 1)
	require.Equal(t, models.ReactionDislike, out[0].CurrentUserReaction)
	require.Equal(t, 1, out[0].ReactionCounts.Dislike)

	rr = f.do(t, http.MethodGet, "/comments", "alice", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	f.st.EXPECT().ListByPost(gomock.Any(), "empty").Return(nil, nil)
	rr = f.do(t, http.MethodGet, "/comments?postId=empty", "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `[]`, rr.Body.String())
}

func TestRouter_CreateComment(t *testing.T) {
	f := newFixture(t, "/api")

	f.st.EXPECT().CreateComment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, rec models.CommentRecord) (*models.CommentRecord, error) {
			require.Equal(t, "alice", rec.AuthorID)
			require.Equal(t, "Alice", rec.AuthorName)
			rec.ID = "101"
			rec.CreatedAt = time.Now().UTC()
			return &rec, nil
		})

	rr := f.do(t, http.MethodPost, "/api/comments", "alice", `{"postId":"p1","content":"Nice work!"}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var out models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "101", out.ID)
	require.Equal(t, "Nice work!", out.Content)
	require.True(t, out.IsRoot())
}

func TestRouter_CreateComment_BadRequests(t *testing.T) {
	f := newFixture(t, "")

	bodies := []string{
		`{"postId":"p1","content":""}`,
		`{"postId":"","content":"x"}`,
		`{"postId":"p1","content":"x","extra":1}`,
		`{"postId":"p1","content":"x"} {}`,
		`not json`,
		`{"postId":"p1","content":"   "}`,
	}

	for _, b := range bodies {
		rr := f.do(t, http.MethodPost, "/comments", "alice", b)
		require.Equal(t, http.StatusBadRequest, rr.Code, b)
		require.Equal(t, apierrors.CodeInvalidArgument, errCode(t, rr))
	}
}

func TestRouter_CreateReply_ParentMissing(t *testing.T) {
	f := newFixture(t, "")

	f.st.EXPECT().CommentByID(gomock.Any(), "404").Return(nil, storage.ErrNotFound)

	rr := f.do(t, http.MethodPost, "/comments", "alice", `{"postId":"p1","content":"x","parentId":"404"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, apierrors.CodeNotFound, errCode(t, rr))
}

func TestRouter_EditComment(t *testing.T) {
	f := newFixture(t, "")
	rec := &models.CommentRecord{ID: "1", PostID: "p1", AuthorID: "alice", Content: "old"}

	f.st.EXPECT().CommentByID(gomock.Any(), "1").Return(rec, nil)
	rr := f.do(t, http.MethodPut, "/comments/1", "bob", `{"content":"hijack"}`)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Equal(t, apierrors.CodePermissionDenied, errCode(t, rr))

	f.st.EXPECT().CommentByID(gomock.Any(), "1").Return(rec, nil)
	f.st.EXPECT().UpdateContent(gomock.Any(), "1", "fixed", gomock.Any()).
		Return(&models.CommentRecord{ID: "1", PostID: "p1", AuthorID: "alice", Content: "fixed", IsEdited: true}, nil)
	rr = f.do(t, http.MethodPut, "/comments/1", "mod", `{"content":"fixed"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var out models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.True(t, out.IsEdited)

	f.st.EXPECT().CommentByID(gomock.Any(), "gone").Return(nil, storage.ErrNotFound)
	rr = f.do(t, http.MethodPut, "/comments/gone", "alice", `{"content":"x"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_DeleteComment(t *testing.T) {
	f := newFixture(t, "")

	f.st.EXPECT().CommentByID(gomock.Any(), "1").Return(&models.CommentRecord{ID: "1", AuthorID: "alice"}, nil)
	f.st.EXPECT().DeleteComment(gomock.Any(), "1").Return(nil)

	rr := f.do(t, http.MethodDelete, "/comments/1", "alice", "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	require.Empty(t, rr.Body.Bytes())

	f.st.EXPECT().CommentByID(gomock.Any(), "1").Return(nil, storage.ErrNotFound)
	rr = f.do(t, http.MethodDelete, "/comments/1", "alice", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_React(t *testing.T) {
	f := newFixture(t, "")

	f.st.EXPECT().ToggleReaction(gomock.Any(), "1", "bob", models.ReactionLike).
		Return(&models.CommentRecord{ID: "1", Reactions: map[string]models.ReactionKind{"bob": models.ReactionLike}}, nil)

	rr := f.do(t, http.MethodPost, "/comments/1/react", "bob", `{"type":"like"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var out models.Comment
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, 1, out.ReactionCounts.Like)
	require.Equal(t, models.ReactionLike, out.CurrentUserReaction)

	rr = f.do(t, http.MethodPost, "/comments/1/react", "bob", `{"type":"love"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_GetComment_InternalError(t *testing.T) {
	f := newFixture(t, "")

	f.st.EXPECT().CommentByID(gomock.Any(), "1").Return(nil, errors.New("db down"))

	rr := f.do(t, http.MethodGet, "/comments/1", "alice", "")
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, apierrors.CodeInternal, errCode(t, rr))
}

func TestRouter_UnknownRoute(t *testing.T) {
	f := newFixture(t, "")

	rr := f.do(t, http.MethodGet, "/nope", "alice", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, apierrors.CodeNotFound, errCode(t, rr))
}
