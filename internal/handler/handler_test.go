package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr0ak1/social-app/internal/handler"
	"github.com/mr0ak1/social-app/internal/httputil"
	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/transport/http/middleware"
)

// =============================================================================
// Helpers
// =============================================================================

// asUser marks every request as coming from userID, as the auth middleware would.
func asUser(userID int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUserID(r.Context(), userID)))
		})
	}
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) httputil.ErrorDetail {
	t.Helper()
	var resp httputil.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

func messageOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &resp)
	return resp.Message
}

// =============================================================================
// Stubs
// =============================================================================

type stubMessenger struct {
	sent      []string
	sendErr   error
	seen      int64
	unread    int
	messages  []model.Message
	lastOther int64
}

func (s *stubMessenger) Send(ctx context.Context, senderID, recipientID int64, text string) (*model.Message, error) {
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, text)
	return &model.Message{ID: 1, ChatID: 7, SenderID: senderID, Text: text}, nil
}

func (s *stubMessenger) Messages(ctx context.Context, userID, otherUserID int64) ([]model.Message, error) {
	s.lastOther = otherUserID
	return s.messages, nil
}

func (s *stubMessenger) Chats(ctx context.Context, userID int64) ([]model.ChatSummary, error) {
	return []model.ChatSummary{}, nil
}

func (s *stubMessenger) MarkSeenWith(ctx context.Context, userID, otherUserID int64) (int64, error) {
	s.lastOther = otherUserID
	return s.seen, nil
}

func (s *stubMessenger) TotalUnreadCount(ctx context.Context, userID int64) (int, error) {
	return s.unread, nil
}

type stubInbox struct {
	page, limit int
	markErr     error
	marked      int64
	unread      int
	tokenErr    error
	tokens      []string
}

func (s *stubInbox) List(ctx context.Context, recipientID int64, page, limit int) (*model.NotificationPage, error) {
	s.page, s.limit = page, limit
	return &model.NotificationPage{Notifications: []model.Notification{}, CurrentPage: page}, nil
}

func (s *stubInbox) UnreadCount(ctx context.Context, recipientID int64) (int, error) {
	return s.unread, nil
}

func (s *stubInbox) MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	if s.markErr != nil {
		return nil, s.markErr
	}
	return &model.Notification{ID: id, RecipientID: recipientID, Read: true}, nil
}

func (s *stubInbox) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	return s.marked, nil
}

func (s *stubInbox) Delete(ctx context.Context, id, recipientID int64) error {
	return nil
}

func (s *stubInbox) RegisterDeviceToken(ctx context.Context, userID int64, token, platform string) error {
	if s.tokenErr != nil {
		return s.tokenErr
	}
	s.tokens = append(s.tokens, token)
	return nil
}

func (s *stubInbox) RemoveDeviceToken(ctx context.Context, userID int64, token string) error {
	return s.tokenErr
}

type stubPosts struct {
	liked    bool
	err      error
	created  []model.CreatePostRequest
	captions []string
}

func (s *stubPosts) Create(ctx context.Context, ownerID int64, req model.CreatePostRequest) (*model.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, req)
	return &model.Post{ID: 1, Type: req.Type, Caption: req.Caption, MediaURL: req.MediaURL}, nil
}

func (s *stubPosts) All(ctx context.Context) (*model.AllPostsResponse, error) {
	return &model.AllPostsResponse{Posts: []model.Post{}, Reels: []model.Post{}}, nil
}

func (s *stubPosts) UpdateCaption(ctx context.Context, actorID, postID int64, caption string) error {
	if s.err != nil {
		return s.err
	}
	s.captions = append(s.captions, caption)
	return nil
}

func (s *stubPosts) Delete(ctx context.Context, actorID, postID int64) error {
	return s.err
}

func (s *stubPosts) ToggleLike(ctx context.Context, actorID, postID int64) (*model.LikeResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.LikeResult{Liked: s.liked}, nil
}

type stubComments struct {
	err error
}

func (s *stubComments) Add(ctx context.Context, actorID, postID int64, text string) (*model.Comment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.Comment{ID: 3, PostID: postID, UserID: actorID, Text: text}, nil
}

func (s *stubComments) Remove(ctx context.Context, actorID, postID, commentID int64) error {
	return s.err
}

type stubMedia struct {
	uploads []string
	deleted []string
}

func (s *stubMedia) UploadAvatar(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	s.uploads = append(s.uploads, header.Filename)
	return &model.UploadResult{URL: "https://cdn.test/avatars/a.jpg", Key: "avatars/a.jpg"}, nil
}

func (s *stubMedia) UploadPostMedia(ctx context.Context, postType string, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error) {
	s.uploads = append(s.uploads, header.Filename)
	return &model.UploadResult{URL: "https://cdn.test/posts/p.jpg", Key: "posts/p.jpg"}, nil
}

func (s *stubMedia) DeleteObject(ctx context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type stubAccounts struct {
	user *model.User
	err  error
}

func (s *stubAccounts) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

func (s *stubAccounts) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type stubTokens struct{}

func (stubTokens) GenerateToken(userID int64) (string, error) { return "signed-token", nil }
func (stubTokens) MaxAge() time.Duration                      { return time.Hour }

type stubProfiles struct {
	updated []model.UpdateProfileRequest
}

func (s *stubProfiles) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	if userID == 404 {
		return nil, model.ErrUserNotFound
	}
	return &model.User{ID: userID, Name: "someone"}, nil
}

func (s *stubProfiles) Search(ctx context.Context, query string, viewerID int64) ([]model.UserSummary, error) {
	return []model.UserSummary{}, nil
}

func (s *stubProfiles) FollowData(ctx context.Context, userID int64) (*model.FollowData, error) {
	return &model.FollowData{}, nil
}

func (s *stubProfiles) UpdateProfile(ctx context.Context, actorID, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	s.updated = append(s.updated, req)
	return &model.User{ID: userID}, nil
}

func (s *stubProfiles) UpdatePassword(ctx context.Context, actorID, userID int64, req model.UpdatePasswordRequest) error {
	return nil
}

type stubFollows struct {
	following bool
	err       error
}

func (s *stubFollows) Toggle(ctx context.Context, actorID, targetID int64) (*model.FollowResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &model.FollowResult{Following: s.following}, nil
}

// =============================================================================
// Message Handler Tests
// =============================================================================

func messageRouter(chats handler.Messenger, userID int64) http.Handler {
	h := handler.NewMessageHandler(chats)
	r := chi.NewRouter()
	r.Use(asUser(userID))
	r.Post("/message/send/{recipientId}", h.Send)
	r.Get("/message/get/{id}", h.Get)
	r.Put("/message/seen/{otherUserId}", h.Seen)
	r.Get("/message/unread-count", h.UnreadCount)
	return r
}

func TestMessageHandler_Send_Created(t *testing.T) {
	chats := &stubMessenger{}
	rec := doJSON(t, messageRouter(chats, 1), http.MethodPost, "/message/send/2", model.SendMessageRequest{Message: "hi"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"hi"}, chats.sent)
}

func TestMessageHandler_Send_MapsServiceErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"self", model.ErrCannotMessageSelf, http.StatusBadRequest},
		{"blank", model.ErrMessageRequired, http.StatusBadRequest},
		{"no recipient", model.ErrUserNotFound, http.StatusNotFound},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, messageRouter(&stubMessenger{sendErr: tt.err}, 1), http.MethodPost, "/message/send/2", model.SendMessageRequest{Message: "x"})
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMessageHandler_Send_InternalErrorHidesDetails(t *testing.T) {
	rec := doJSON(t, messageRouter(&stubMessenger{sendErr: errors.New("pq: connection refused")}, 1), http.MethodPost, "/message/send/2", model.SendMessageRequest{Message: "x"})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong", errorBody(t, rec).Message)
}

func TestMessageHandler_Send_BadRecipientID(t *testing.T) {
	rec := doJSON(t, messageRouter(&stubMessenger{}, 1), http.MethodPost, "/message/send/abc", model.SendMessageRequest{Message: "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandler_Get_EmptyIsArray(t *testing.T) {
	chats := &stubMessenger{}
	rec := doJSON(t, messageRouter(chats, 1), http.MethodGet, "/message/get/5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	assert.Equal(t, int64(5), chats.lastOther)
}

func TestMessageHandler_Seen_ReportsModifiedCount(t *testing.T) {
	rec := doJSON(t, messageRouter(&stubMessenger{seen: 3}, 1), http.MethodPut, "/message/seen/2", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		ModifiedCount int64 `json:"modifiedCount"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(3), resp.ModifiedCount)
}

func TestMessageHandler_UnreadCount(t *testing.T) {
	rec := doJSON(t, messageRouter(&stubMessenger{unread: 4}, 1), http.MethodGet, "/message/unread-count", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"totalUnreadCount":4}`, rec.Body.String())
}

func TestMessageHandler_RequiresUser(t *testing.T) {
	h := handler.NewMessageHandler(&stubMessenger{})
	r := chi.NewRouter()
	r.Get("/message/unread-count", h.UnreadCount)

	rec := doJSON(t, r, http.MethodGet, "/message/unread-count", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// Notification Handler Tests
// =============================================================================

func notificationRouter(inbox handler.Inbox) http.Handler {
	h := handler.NewNotificationHandler(inbox)
	r := chi.NewRouter()
	r.Use(asUser(1))
	r.Get("/notifications", h.List)
	r.Get("/notifications/unread-count", h.UnreadCount)
	r.Put("/notifications/mark-all-read", h.MarkAllRead)
	r.Put("/notifications/{id}/read", h.MarkRead)
	r.Delete("/notifications/{id}", h.Delete)
	r.Post("/devices/token", h.RegisterToken)
	return r
}

func TestNotificationHandler_List_PassesPaging(t *testing.T) {
	inbox := &stubInbox{}
	rec := doJSON(t, notificationRouter(inbox), http.MethodGet, "/notifications?page=3&limit=5", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, inbox.page)
	assert.Equal(t, 5, inbox.limit)
}

func TestNotificationHandler_List_DefaultsOnGarbage(t *testing.T) {
	inbox := &stubInbox{}
	doJSON(t, notificationRouter(inbox), http.MethodGet, "/notifications?page=x", nil)

	assert.Equal(t, model.DefaultNotificationPage, inbox.page)
	assert.Equal(t, model.DefaultNotificationLimit, inbox.limit)
}

func TestNotificationHandler_UnreadCount(t *testing.T) {
	rec := doJSON(t, notificationRouter(&stubInbox{unread: 2}), http.MethodGet, "/notifications/unread-count", nil)
	assert.JSONEq(t, `{"unreadCount":2}`, rec.Body.String())
}

func TestNotificationHandler_MarkRead_NotFound(t *testing.T) {
	rec := doJSON(t, notificationRouter(&stubInbox{markErr: model.ErrNotificationNotFound}), http.MethodPut, "/notifications/9/read", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, httputil.ErrCodeNotFound, errorBody(t, rec).Code)
}

func TestNotificationHandler_MarkAllRead(t *testing.T) {
	rec := doJSON(t, notificationRouter(&stubInbox{marked: 6}), http.MethodPut, "/notifications/mark-all-read", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message       string `json:"message"`
		ModifiedCount int64  `json:"modifiedCount"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, int64(6), resp.ModifiedCount)
	assert.NotEmpty(t, resp.Message)
}

func TestNotificationHandler_Delete(t *testing.T) {
	rec := doJSON(t, notificationRouter(&stubInbox{}), http.MethodDelete, "/notifications/4", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification deleted", messageOf(t, rec))
}

func TestNotificationHandler_RegisterToken(t *testing.T) {
	inbox := &stubInbox{}
	rec := doJSON(t, notificationRouter(inbox), http.MethodPost, "/devices/token", model.RegisterTokenRequest{Token: "ExponentPushToken[abc]"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"ExponentPushToken[abc]"}, inbox.tokens)
}

func TestNotificationHandler_RegisterToken_InvalidPlatform(t *testing.T) {
	inbox := &stubInbox{tokenErr: model.ErrInvalidPlatform}
	rec := doJSON(t, notificationRouter(inbox), http.MethodPost, "/devices/token", model.RegisterTokenRequest{Token: "t", Platform: "web"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Post / Comment Handler Tests
// =============================================================================

func postRouter(posts handler.PostManager, comments handler.CommentManager, media handler.MediaUploader) http.Handler {
	ph := handler.NewPostHandler(posts, media)
	ch := handler.NewCommentHandler(comments)
	r := chi.NewRouter()
	r.Use(asUser(1))
	r.Post("/post/new", ph.Create)
	r.Get("/post/all", ph.All)
	r.Put("/post/{id}", ph.UpdateCaption)
	r.Delete("/post/{id}", ph.Delete)
	r.Post("/post/like/{id}", ph.ToggleLike)
	r.Post("/post/comment/{id}", ch.Add)
	r.Delete("/post/comment/{id}", ch.Remove)
	return r
}

func multipartRequest(t *testing.T, path string, fields map[string]string, filename string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("fake-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPostHandler_Create(t *testing.T) {
	posts := &stubPosts{}
	media := &stubMedia{}
	req := multipartRequest(t, "/post/new?type=post", map[string]string{"caption": "  sunset "}, "a.jpg")
	rec := httptest.NewRecorder()

	postRouter(posts, &stubComments{}, media).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, posts.created, 1)
	assert.Equal(t, "sunset", posts.created[0].Caption)
	assert.Equal(t, model.PostTypePost, posts.created[0].Type)
	assert.Equal(t, "posts/p.jpg", posts.created[0].MediaKey)
}

func TestPostHandler_Create_DiscardsUploadOnFailure(t *testing.T) {
	media := &stubMedia{}
	req := multipartRequest(t, "/post/new?type=post", map[string]string{"caption": "x"}, "a.jpg")
	rec := httptest.NewRecorder()

	postRouter(&stubPosts{err: model.ErrCaptionTooLong}, &stubComments{}, media).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"posts/p.jpg"}, media.deleted)
}

func TestPostHandler_Create_InvalidType(t *testing.T) {
	req := multipartRequest(t, "/post/new?type=story", nil, "a.jpg")
	rec := httptest.NewRecorder()

	postRouter(&stubPosts{}, &stubComments{}, &stubMedia{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostHandler_Create_NoFile(t *testing.T) {
	req := multipartRequest(t, "/post/new", map[string]string{"caption": "x"}, "")
	rec := httptest.NewRecorder()

	postRouter(&stubPosts{}, &stubComments{}, &stubMedia{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrNoMediaProvided.Error(), errorBody(t, rec).Message)
}

func TestPostHandler_Create_MediaNotConfigured(t *testing.T) {
	req := multipartRequest(t, "/post/new", nil, "a.jpg")
	rec := httptest.NewRecorder()

	postRouter(&stubPosts{}, &stubComments{}, nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPostHandler_ToggleLike_Messages(t *testing.T) {
	rec := doJSON(t, postRouter(&stubPosts{liked: true}, &stubComments{}, nil), http.MethodPost, "/post/like/3", nil)
	assert.Equal(t, "Post liked", messageOf(t, rec))

	rec = doJSON(t, postRouter(&stubPosts{liked: false}, &stubComments{}, nil), http.MethodPost, "/post/like/3", nil)
	assert.Equal(t, "Post unliked", messageOf(t, rec))
}

func TestPostHandler_UpdateCaption_NotOwner(t *testing.T) {
	rec := doJSON(t, postRouter(&stubPosts{err: model.ErrNotPostOwner}, &stubComments{}, nil), http.MethodPut, "/post/3", model.UpdateCaptionRequest{Caption: "x"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostHandler_All(t *testing.T) {
	rec := doJSON(t, postRouter(&stubPosts{}, &stubComments{}, nil), http.MethodGet, "/post/all", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"post":[],"reel":[]}`, rec.Body.String())
}

func TestCommentHandler_Add(t *testing.T) {
	rec := doJSON(t, postRouter(&stubPosts{}, &stubComments{}, nil), http.MethodPost, "/post/comment/3", model.CreateCommentRequest{Comment: "nice"})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCommentHandler_Remove_NotAllowed(t *testing.T) {
	rec := doJSON(t, postRouter(&stubPosts{}, &stubComments{err: model.ErrNotAllowedToDelete}, nil), http.MethodDelete, "/post/comment/3", model.DeleteCommentRequest{CommentID: 8})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCommentHandler_Remove_InvalidBody(t *testing.T) {
	r := postRouter(&stubPosts{}, &stubComments{}, nil)
	req := httptest.NewRequest(http.MethodDelete, "/post/comment/3", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Auth / User Handler Tests
// =============================================================================

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	h := handler.NewAuthHandler(&stubAccounts{user: &model.User{ID: 5, Name: "ann"}}, stubTokens{}, nil, false)
	rec := doJSON(t, http.HandlerFunc(h.Login), http.MethodPost, "/auth/login", model.LoginRequest{Email: "a@b.c", Password: "pw"})

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, model.TokenCookieName, cookies[0].Name)
	assert.Equal(t, "signed-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)

	var resp model.AuthResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "signed-token", resp.Token)
	assert.Equal(t, int64(5), resp.User.ID)
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	h := handler.NewAuthHandler(&stubAccounts{err: model.ErrInvalidCredentials}, stubTokens{}, nil, false)
	rec := doJSON(t, http.HandlerFunc(h.Login), http.MethodPost, "/auth/login", model.LoginRequest{Email: "a@b.c", Password: "pw"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
}

func TestAuthHandler_Register_DuplicateEmailDiscardsAvatar(t *testing.T) {
	media := &stubMedia{}
	h := handler.NewAuthHandler(&stubAccounts{err: model.ErrEmailExists}, stubTokens{}, media, false)
	req := multipartRequest(t, "/auth/register", map[string]string{
		"name":     "Ann",
		"email":    "ann@example.com",
		"gender":   "female",
		"password": "pw",
	}, "me.png")
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "User already exists", errorBody(t, rec).Message)
	assert.Equal(t, []string{"avatars/a.jpg"}, media.deleted)
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	h := handler.NewAuthHandler(&stubAccounts{}, stubTokens{}, &stubMedia{}, false)
	req := multipartRequest(t, "/auth/register", map[string]string{"name": "Ann"}, "me.png")
	rec := httptest.NewRecorder()

	h.Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := handler.NewAuthHandler(&stubAccounts{}, stubTokens{}, nil, false)
	rec := doJSON(t, http.HandlerFunc(h.Logout), http.MethodGet, "/auth/logout", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "", cookies[0].Value)
	assert.True(t, cookies[0].MaxAge < 0)
	assert.Equal(t, "Logged out successfully", messageOf(t, rec))
}

func userRouter(profiles handler.ProfileService, follows handler.FollowToggler, media handler.MediaUploader) http.Handler {
	h := handler.NewUserHandler(profiles, follows, media)
	r := chi.NewRouter()
	r.Use(asUser(1))
	r.Get("/user/{id}", h.Profile)
	r.Put("/user/{id}", h.UpdateProfile)
	r.Post("/user/follow/{id}", h.ToggleFollow)
	return r
}

func TestUserHandler_Profile_NotFound(t *testing.T) {
	rec := doJSON(t, userRouter(&stubProfiles{}, &stubFollows{}, nil), http.MethodGet, "/user/404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUserHandler_ToggleFollow(t *testing.T) {
	rec := doJSON(t, userRouter(&stubProfiles{}, &stubFollows{following: true}, nil), http.MethodPost, "/user/follow/2", nil)
	assert.Equal(t, "User followed", messageOf(t, rec))

	rec = doJSON(t, userRouter(&stubProfiles{}, &stubFollows{following: false}, nil), http.MethodPost, "/user/follow/2", nil)
	assert.Equal(t, "User unfollowed", messageOf(t, rec))
}

func TestUserHandler_ToggleFollow_Self(t *testing.T) {
	rec := doJSON(t, userRouter(&stubProfiles{}, &stubFollows{err: model.ErrCannotFollowSelf}, nil), http.MethodPost, "/user/follow/1", nil)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "You can't follow yourself", errorBody(t, rec).Message)
}

func TestUserHandler_UpdateProfile_OtherUser(t *testing.T) {
	profiles := &stubProfiles{}
	req := multipartRequest(t, "/user/2", map[string]string{"name": "x"}, "")
	req.Method = http.MethodPut
	rec := httptest.NewRecorder()

	userRouter(profiles, &stubFollows{}, &stubMedia{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, profiles.updated)
}

func TestUserHandler_UpdateProfile_NameAndAvatar(t *testing.T) {
	profiles := &stubProfiles{}
	media := &stubMedia{}
	req := multipartRequest(t, "/user/1", map[string]string{"name": " New Name "}, "me.png")
	req.Method = http.MethodPut
	rec := httptest.NewRecorder()

	userRouter(profiles, &stubFollows{}, media).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, profiles.updated, 1)
	assert.Equal(t, "New Name", *profiles.updated[0].Name)
	assert.Equal(t, "avatars/a.jpg", *profiles.updated[0].AvatarKey)
}
