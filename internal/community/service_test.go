package community

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndListPosts(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "user-1", "relazioni", "story", "Prima condivisione")
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, "user-2", "beauty", "tip", "Routine serale")
	require.NoError(t, err)

	all, err := svc.Posts(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	beauty, err := svc.Posts(ctx, "beauty")
	require.NoError(t, err)
	require.Len(t, beauty, 1)
	assert.Equal(t, second.ID, beauty[0].ID)
}

func TestCreatePostRejectsEmptyContent(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.CreatePost(context.Background(), "user-1", "beauty", "tip", "")
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestCommentsCount(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, "user-1", "sport", "question", "Consigli per iniziare a correre?")
	require.NoError(t, err)

	_, err = svc.Comment(ctx, "user-2", p.ID, "Parti con 20 minuti a ritmo lento")
	require.NoError(t, err)
	_, err = svc.Comment(ctx, "user-3", p.ID, "Scarpe giuste prima di tutto")
	require.NoError(t, err)

	posts, err := svc.Posts(ctx, "sport")
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, 2, posts[0].CommentsCount)

	comments, err := svc.Comments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Parti con 20 minuti a ritmo lento", comments[0].Content)
}

func TestCommentOnMissingPost(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.Comment(context.Background(), "user-1", "missing", "ciao")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestReactionToggle(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	p, err := svc.CreatePost(ctx, "user-1", "stile", "story", "Outfit del giorno")
	require.NoError(t, err)

	active, err := svc.React(ctx, "user-2", p.ID, ReactionInspire)
	require.NoError(t, err)
	assert.True(t, active)

	posts, _ := svc.Posts(ctx, "stile")
	assert.Equal(t, 1, posts[0].Reactions[ReactionInspire])

	// Same reaction again removes it.
	active, err = svc.React(ctx, "user-2", p.ID, ReactionInspire)
	require.NoError(t, err)
	assert.False(t, active)

	posts, _ = svc.Posts(ctx, "stile")
	assert.Equal(t, 0, posts[0].Reactions[ReactionInspire])

	// Different users stack.
	_, err = svc.React(ctx, "user-2", p.ID, ReactionSmile)
	require.NoError(t, err)
	_, err = svc.React(ctx, "user-3", p.ID, ReactionSmile)
	require.NoError(t, err)

	posts, _ = svc.Posts(ctx, "stile")
	assert.Equal(t, 2, posts[0].Reactions[ReactionSmile])
}

func TestReactionUnknownKind(t *testing.T) {
	svc := NewService(NewMemoryRepository())

	_, err := svc.React(context.Background(), "user-1", "any", "clap")
	assert.ErrorIs(t, err, ErrInvalidReaction)
}
