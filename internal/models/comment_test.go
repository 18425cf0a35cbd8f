package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCommentRecord_View_CountsAndViewerReaction(t *testing.T) {
	t.Parallel()

	rec := CommentRecord{
		ID:     "c1",
		PostID: "p1",
		Reactions: map[string]ReactionKind{
			"u1": ReactionLike,
			"u2": ReactionLike,
			"u3": ReactionDislike,
			"u4": "bogus",
		},
	}

	v := rec.View("u3")
	require.Equal(t, ReactionCounts{Like: 2, Dislike: 1}, v.ReactionCounts)
	require.Equal(t, ReactionDislike, v.CurrentUserReaction)

	anon := rec.View("")
	require.Equal(t, ReactionNone, anon.CurrentUserReaction)

	stranger := rec.View("u4")
	require.Equal(t, ReactionNone, stranger.CurrentUserReaction)
}

// parentId: null и отсутствие поля одинаково означают корень.
func TestComment_JSON_NullParentIsRoot(t *testing.T) {
	t.Parallel()

	var c Comment
	raw := `{"id":"101","postId":"1","parentId":null,"content":"Nice work!","createdAt":"2024-05-01T10:00:00Z","reactionCounts":{"like":3,"dislike":0},"replies":[]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	require.True(t, c.IsRoot())
	require.Equal(t, 3, c.ReactionCounts.Get(ReactionLike))
	require.Equal(t, 0, c.ReactionCounts.Get(ReactionNone))
	require.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), c.CreatedAt.UTC())
}

func TestReactionKind_Valid(t *testing.T) {
	t.Parallel()

	require.True(t, ReactionLike.Valid())
	require.True(t, ReactionDislike.Valid())
	require.False(t, ReactionNone.Valid())
	require.False(t, ReactionKind("love").Valid())
}

func TestComment_UnmarshalJSON_NumericIDs(t *testing.T) {
	t.Parallel()

	var c Comment
	raw := `{"id":101,"postId":7,"parentId":null,"authorId":"u1","content":"hi",
		"replies":[{"id":102,"postId":7,"parentId":101,"authorId":3,"content":"re"}]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &c))

	require.Equal(t, "101", c.ID)
	require.Equal(t, "7", c.PostID)
	require.Empty(t, c.ParentID)
	require.Equal(t, "u1", c.AuthorID)
	require.Equal(t, "hi", c.Content)
	require.Len(t, c.Replies, 1)
	require.Equal(t, "101", c.Replies[0].ParentID)
	require.Equal(t, "3", c.Replies[0].AuthorID)

	var big Comment
	require.NoError(t, json.Unmarshal([]byte(`{"id":12345678901234567890}`), &big))
	require.Equal(t, "12345678901234567890", big.ID)

	var bad Comment
	require.Error(t, json.Unmarshal([]byte(`{"id":true}`), &bad))
}
