package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr0ak1/social-app/internal/model"
)

func TestFollowService_Toggle(t *testing.T) {
	users := newFakeUserRepo()
	follows := &fakeFollowRepo{users: users}
	notifier := &recordingNotifier{}
	svc := NewFollowService(follows, users, notifier)
	ctx := context.Background()
	a := users.add("Alice")
	b := users.add("Bob")

	res, err := svc.Toggle(ctx, a, b)
	require.NoError(t, err)
	assert.True(t, res.Following)

	res, err = svc.Toggle(ctx, a, b)
	require.NoError(t, err)
	assert.False(t, res.Following)

	ok, _ := follows.Exists(ctx, a, b)
	assert.False(t, ok)

	require.Len(t, notifier.inputs, 2)
	assert.Equal(t, model.NotificationTypeFollow, notifier.inputs[0].Type)
	assert.Equal(t, "Alice started following you", notifier.inputs[0].Message)
	assert.Equal(t, model.NotificationTypeUnfollow, notifier.inputs[1].Type)
	assert.Equal(t, "Alice unfollowed you", notifier.inputs[1].Message)
	assert.Equal(t, b, notifier.inputs[1].RecipientID)
}

func TestFollowService_Toggle_Errors(t *testing.T) {
	users := newFakeUserRepo()
	notifier := &recordingNotifier{}
	svc := NewFollowService(&fakeFollowRepo{users: users}, users, notifier)
	a := users.add("Alice")

	_, err := svc.Toggle(context.Background(), a, a)
	assert.ErrorIs(t, err, model.ErrCannotFollowSelf)

	_, err = svc.Toggle(context.Background(), a, 999)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	assert.Empty(t, notifier.inputs)
}

type postFixture struct {
	posts    *fakePostRepo
	users    *fakeUserRepo
	deleter  *recordingDeleter
	svc      *PostService
	comments *CommentService
	notifs   *fakeNotificationRepo
	clock    *fakeClock
}

func newPostFixture() *postFixture {
	posts := newFakePostRepo()
	users := newFakeUserRepo()
	deleter := &recordingDeleter{}
	notifs := &fakeNotificationRepo{}
	clock := newFakeClock()
	notifier := NewNotificationService(notifs, &fakeDeviceTokenRepo{}, nil).WithClock(clock.Now)
	return &postFixture{
		posts:    posts,
		users:    users,
		deleter:  deleter,
		svc:      NewPostService(posts, users, notifier, deleter),
		comments: NewCommentService(posts.comments, posts, users, notifier),
		notifs:   notifs,
		clock:    clock,
	}
}

func (f *postFixture) createPost(t *testing.T, ownerID int64) *model.Post {
	t.Helper()
	post, err := f.svc.Create(context.Background(), ownerID, model.CreatePostRequest{
		Type:     model.PostTypePost,
		Caption:  "sunset",
		MediaURL: "https://cdn.example.com/posts/1.jpg",
		MediaKey: "posts/1.jpg",
	})
	require.NoError(t, err)
	return post
}

func TestPostService_Create_Validation(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, 1, model.CreatePostRequest{Type: "story", MediaURL: "u"})
	assert.ErrorIs(t, err, model.ErrInvalidPostType)

	_, err = f.svc.Create(ctx, 1, model.CreatePostRequest{Type: model.PostTypeReel})
	assert.ErrorIs(t, err, model.ErrNoMediaProvided)
}

func TestPostService_LikeUnlikeRelike(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.users.add("Owner")
	fan := f.users.add("Fan")
	post := f.createPost(t, owner)

	res, err := f.svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	require.Len(t, f.notifs.notifications, 1)
	assert.Equal(t, "Fan liked your post", f.notifs.notifications[0].Message)

	f.notifs.notifications[0].Read = true

	res, err = f.svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	got, _ := f.posts.GetByID(ctx, post.ID)
	assert.NotContains(t, got.Likes, fan)
	assert.Len(t, f.notifs.notifications, 1)

	f.clock.Advance(time.Hour)
	_, err = f.svc.ToggleLike(ctx, fan, post.ID)
	require.NoError(t, err)
	require.Len(t, f.notifs.notifications, 1)
	assert.False(t, f.notifs.notifications[0].Read)
	assert.Equal(t, f.clock.Now(), f.notifs.notifications[0].CreatedAt)
}

func TestPostService_OwnLikeDoesNotNotify(t *testing.T) {
	f := newPostFixture()
	owner := f.users.add("Owner")
	post := f.createPost(t, owner)

	_, err := f.svc.ToggleLike(context.Background(), owner, post.ID)
	require.NoError(t, err)
	assert.Empty(t, f.notifs.notifications)
}

func TestPostService_OwnerOnlyMutations(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.users.add("Owner")
	other := f.users.add("Other")
	post := f.createPost(t, owner)

	assert.ErrorIs(t, f.svc.UpdateCaption(ctx, other, post.ID, "mine now"), model.ErrNotPostOwner)
	assert.ErrorIs(t, f.svc.Delete(ctx, other, post.ID), model.ErrNotPostOwner)

	require.NoError(t, f.svc.UpdateCaption(ctx, owner, post.ID, " golden hour "))
	got, _ := f.posts.GetByID(ctx, post.ID)
	assert.Equal(t, "golden hour", got.Caption)

	require.NoError(t, f.svc.Delete(ctx, owner, post.ID))
	assert.Equal(t, []string{"posts/1.jpg"}, f.deleter.keys)
	_, err := f.posts.GetByID(ctx, post.ID)
	assert.ErrorIs(t, err, model.ErrPostNotFound)

	assert.ErrorIs(t, f.svc.Delete(ctx, owner, post.ID), model.ErrPostNotFound)
}

func TestPostService_All(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.users.add("Owner")
	f.createPost(t, owner)
	_, err := f.svc.Create(ctx, owner, model.CreatePostRequest{Type: model.PostTypeReel, MediaURL: "u", MediaKey: "reels/1.mp4"})
	require.NoError(t, err)

	all, err := f.svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all.Posts, 1)
	assert.Len(t, all.Reels, 1)
}

func TestCommentService_AddAndRemove(t *testing.T) {
	f := newPostFixture()
	ctx := context.Background()
	owner := f.users.add("Owner")
	author := f.users.add("Author")
	stranger := f.users.add("Stranger")
	post := f.createPost(t, owner)

	_, err := f.comments.Add(ctx, author, post.ID, "  ")
	assert.ErrorIs(t, err, model.ErrCommentRequired)

	c1, err := f.comments.Add(ctx, author, post.ID, "nice")
	require.NoError(t, err)
	assert.Equal(t, "Author", c1.AuthorName)
	require.Len(t, f.notifs.notifications, 1)
	assert.Equal(t, "Author commented on your post", f.notifs.notifications[0].Message)

	c2, err := f.comments.Add(ctx, author, post.ID, "really nice")
	require.NoError(t, err)
	assert.Len(t, f.notifs.notifications, 1, "second comment coalesces")

	assert.ErrorIs(t, f.comments.Remove(ctx, stranger, post.ID, c1.ID), model.ErrNotAllowedToDelete)
	assert.NoError(t, f.comments.Remove(ctx, author, post.ID, c1.ID))
	assert.NoError(t, f.comments.Remove(ctx, owner, post.ID, c2.ID))
	assert.ErrorIs(t, f.comments.Remove(ctx, owner, post.ID, c2.ID), model.ErrCommentNotFound)
	assert.ErrorIs(t, f.comments.Remove(ctx, owner, post.ID, 0), model.ErrCommentIDRequired)

	_, err = f.comments.Add(ctx, author, 999, "hello?")
	assert.ErrorIs(t, err, model.ErrPostNotFound)
}
