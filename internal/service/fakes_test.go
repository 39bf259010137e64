package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/queue"
	"github.com/mr0ak1/social-app/internal/repository"
)

// =============================================================================
// IN-MEMORY REPOSITORIES
// =============================================================================
//
// Services depend on repository interfaces, so tests run against these
// map-backed fakes instead of Postgres.

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*model.User)}
}

// add stores a user with the given name and returns its id.
func (r *fakeUserRepo) add(name string) int64 {
	u := &model.User{Name: name, Email: strings.ToLower(name) + "@example.com", Gender: model.GenderFemale}
	_ = r.Create(context.Background(), u)
	return u.ID
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return model.ErrEmailExists
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) GetSummaries(ctx context.Context, ids []int64) ([]model.UserSummary, error) {
	var out []model.UserSummary
	for _, id := range ids {
		if u, err := r.GetByID(ctx, id); err == nil {
			out = append(out, u.Summary())
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, excludeID int64, limit int) ([]model.UserSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(query)
	var out []model.UserSummary
	for _, u := range r.users {
		if u.ID == excludeID {
			continue
		}
		if strings.Contains(strings.ToLower(u.Name), q) || strings.Contains(u.Email, q) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateProfile(ctx context.Context, id int64, req model.UpdateProfileRequest) (*model.User, error) {
	r.mu.Lock()
	u, ok := r.users[id]
	if !ok {
		r.mu.Unlock()
		return nil, model.ErrUserNotFound
	}
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.AvatarURL != nil {
		u.AvatarURL = req.AvatarURL
		u.AvatarKey = req.AvatarKey
	}
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.PasswordHashed = passwordHashed
	return nil
}

type followEdge struct{ follower, followee int64 }

type fakeFollowRepo struct {
	users *fakeUserRepo
	edges []followEdge
}

func (r *fakeFollowRepo) index(followerID, followeeID int64) int {
	for i, e := range r.edges {
		if e.follower == followerID && e.followee == followeeID {
			return i
		}
	}
	return -1
}

func (r *fakeFollowRepo) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if r.index(followerID, followeeID) >= 0 {
		return false, nil
	}
	r.edges = append(r.edges, followEdge{followerID, followeeID})
	return true, nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID, followeeID int64) (bool, error) {
	i := r.index(followerID, followeeID)
	if i < 0 {
		return false, nil
	}
	r.edges = append(r.edges[:i], r.edges[i+1:]...)
	return true, nil
}

func (r *fakeFollowRepo) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return r.index(followerID, followeeID) >= 0, nil
}

func (r *fakeFollowRepo) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, e := range r.edges {
		if e.followee == userID {
			ids = append(ids, e.follower)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) GetFolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	for _, e := range r.edges {
		if e.follower == userID {
			ids = append(ids, e.followee)
		}
	}
	return ids, nil
}

func (r *fakeFollowRepo) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	ids, _ := r.GetFollowerIDs(ctx, userID)
	return r.users.GetSummaries(ctx, ids)
}

func (r *fakeFollowRepo) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	ids, _ := r.GetFolloweeIDs(ctx, userID)
	return r.users.GetSummaries(ctx, ids)
}

type fakePostRepo struct {
	posts    map[int64]*model.Post
	nextID   int64
	comments *fakeCommentRepo
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int64]*model.Post), comments: &fakeCommentRepo{}}
}

func (r *fakePostRepo) Create(ctx context.Context, userID int64, req model.CreatePostRequest) (*model.Post, error) {
	r.nextID++
	p := &model.Post{
		ID:        r.nextID,
		UserID:    userID,
		Caption:   req.Caption,
		MediaURL:  req.MediaURL,
		MediaKey:  req.MediaKey,
		Type:      req.Type,
		CreatedAt: time.Now(),
		Likes:     []int64{},
	}
	r.posts[p.ID] = p
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, model.ErrPostNotFound
	}
	cp := *p
	cp.Likes = append([]int64{}, p.Likes...)
	cp.Comments = r.comments.forPost(postID)
	return &cp, nil
}

func (r *fakePostRepo) ListByType(ctx context.Context, postType string) ([]model.Post, error) {
	var out []model.Post
	for id := r.nextID; id > 0; id-- {
		if p, ok := r.posts[id]; ok && p.Type == postType {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePostRepo) UpdateCaption(ctx context.Context, postID int64, caption string) error {
	p, ok := r.posts[postID]
	if !ok {
		return model.ErrPostNotFound
	}
	p.Caption = caption
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, postID int64) error {
	if _, ok := r.posts[postID]; !ok {
		return model.ErrPostNotFound
	}
	delete(r.posts, postID)
	return nil
}

func (r *fakePostRepo) Like(ctx context.Context, postID, userID int64) (bool, error) {
	p := r.posts[postID]
	if p.HasLike(userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (r *fakePostRepo) Unlike(ctx context.Context, postID, userID int64) (bool, error) {
	p := r.posts[postID]
	for i, id := range p.Likes {
		if id == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePostRepo) HasLiked(ctx context.Context, postID, userID int64) (bool, error) {
	return r.posts[postID].HasLike(userID), nil
}

type fakeCommentRepo struct {
	comments []model.Comment
	nextID   int64
}

func (r *fakeCommentRepo) forPost(postID int64) []model.Comment {
	out := []model.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			out = append(out, c)
		}
	}
	return out
}

func (r *fakeCommentRepo) Create(ctx context.Context, c *model.Comment) error {
	r.nextID++
	c.ID = r.nextID
	c.CreatedAt = time.Now()
	r.comments = append(r.comments, *c)
	return nil
}

func (r *fakeCommentRepo) GetByID(ctx context.Context, postID, commentID int64) (*model.Comment, error) {
	for _, c := range r.comments {
		if c.PostID == postID && c.ID == commentID {
			cp := c
			return &cp, nil
		}
	}
	return nil, model.ErrCommentNotFound
}

func (r *fakeCommentRepo) Delete(ctx context.Context, postID, commentID int64) error {
	for i, c := range r.comments {
		if c.PostID == postID && c.ID == commentID {
			r.comments = append(r.comments[:i], r.comments[i+1:]...)
			return nil
		}
	}
	return model.ErrCommentNotFound
}

// fakeChatStore backs both ChatRepository and MessageRepository.
type fakeChatStore struct {
	chats     []*model.Chat
	messages  []*model.Message
	nextChat  int64
	nextMsgID int64
}

func (s *fakeChatStore) FindByPair(ctx context.Context, a, b int64) (*model.Chat, error) {
	low, high := model.ChatPair(a, b)
	for _, c := range s.chats {
		if c.UserLow == low && c.UserHigh == high {
			cp := *c
			return &cp, nil
		}
	}
	return nil, model.ErrChatNotFound
}

func (s *fakeChatStore) ListByUser(ctx context.Context, userID int64) ([]model.Chat, error) {
	out := []model.Chat{}
	for _, c := range s.chats {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *fakeChatStore) AppendMessage(ctx context.Context, senderID, recipientID int64, text string, at time.Time) (*model.Chat, *model.Message, error) {
	low, high := model.ChatPair(senderID, recipientID)
	var chat *model.Chat
	for _, c := range s.chats {
		if c.UserLow == low && c.UserHigh == high {
			chat = c
		}
	}
	if chat == nil {
		s.nextChat++
		chat = &model.Chat{ID: s.nextChat, UserLow: low, UserHigh: high, CreatedAt: at}
		s.chats = append(s.chats, chat)
	}

	s.nextMsgID++
	msg := &model.Message{ID: s.nextMsgID, ChatID: chat.ID, SenderID: senderID, Text: text, CreatedAt: at}
	s.messages = append(s.messages, msg)

	chat.LatestText = &msg.Text
	chat.LatestSenderID = &msg.SenderID
	chat.LatestAt = &msg.CreatedAt
	chat.UpdatedAt = at

	chatCopy, msgCopy := *chat, *msg
	return &chatCopy, &msgCopy, nil
}

func (s *fakeChatStore) ListByChat(ctx context.Context, chatID int64) ([]model.Message, error) {
	out := []model.Message{}
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeChatStore) CountUnseen(ctx context.Context, chatID, senderID int64) (int, error) {
	n := 0
	for _, m := range s.messages {
		if m.ChatID == chatID && m.SenderID == senderID && !m.Seen {
			n++
		}
	}
	return n, nil
}

func (s *fakeChatStore) MarkSeen(ctx context.Context, chatID, senderID int64, at time.Time) (int64, error) {
	var n int64
	for _, m := range s.messages {
		if m.ChatID == chatID && m.SenderID == senderID && !m.Seen {
			m.Seen = true
			seenAt := at
			m.SeenAt = &seenAt
			n++
		}
	}
	return n, nil
}

// fakeNotificationRepo keeps notifications in a slice. The coalescing lock
// is a plain mutex.
type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*model.Notification
	nextID        int64
	failWith      error
}

func (r *fakeNotificationRepo) WithCoalesceLock(ctx context.Context, key string, fn func(store repository.NotificationStore) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	return fn(r)
}

func (r *fakeNotificationRepo) FindRecent(ctx context.Context, q model.NotificationQuery) (*model.Notification, error) {
	var best *model.Notification
	for _, n := range r.notifications {
		if n.RecipientID != q.RecipientID || n.SenderID != q.SenderID || n.Type != q.Type {
			continue
		}
		if n.CreatedAt.Before(q.Since) {
			continue
		}
		if q.UnreadOnly && n.Read {
			continue
		}
		if q.MatchPost && !sameOptionalID(n.PostID, q.PostID) {
			continue
		}
		if best == nil || n.CreatedAt.After(best.CreatedAt) {
			best = n
		}
	}
	if best == nil {
		return nil, model.ErrNotificationNotFound
	}
	cp := *best
	return &cp, nil
}

func sameOptionalID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (r *fakeNotificationRepo) Refresh(ctx context.Context, id int64, rf model.NotificationRefresh) (*model.Notification, error) {
	for _, n := range r.notifications {
		if n.ID == id {
			n.Message = rf.Message
			if rf.ChatID != nil {
				n.ChatID = rf.ChatID
			}
			if rf.MessageID != nil {
				n.MessageID = rf.MessageID
			}
			n.Read = false
			n.CreatedAt = rf.CreatedAt
			n.UpdatedAt = rf.CreatedAt
			cp := *n
			return &cp, nil
		}
	}
	return nil, model.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) Insert(ctx context.Context, n *model.Notification) error {
	r.nextID++
	n.ID = r.nextID
	n.UpdatedAt = n.CreatedAt
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) forRecipient(recipientID int64) []*model.Notification {
	var out []*model.Notification
	for _, n := range r.notifications {
		if n.RecipientID == recipientID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID int64, limit, offset int) ([]model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.forRecipient(recipientID)
	out := []model.Notification{}
	for i := offset; i < len(all) && i < offset+limit; i++ {
		out = append(out, *all[i])
	}
	return out, nil
}

func (r *fakeNotificationRepo) CountByRecipient(ctx context.Context, recipientID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forRecipient(recipientID)), nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.forRecipient(recipientID) {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, id, recipientID int64) (*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			n.Read = true
			cp := *n
			return &cp, nil
		}
	}
	return nil, model.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var changed int64
	for _, n := range r.forRecipient(recipientID) {
		if !n.Read {
			n.Read = true
			changed++
		}
	}
	return changed, nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id, recipientID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID == id && n.RecipientID == recipientID {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return model.ErrNotificationNotFound
}

type fakeDeviceTokenRepo struct {
	tokens map[string]model.DeviceToken
}

func (r *fakeDeviceTokenRepo) Upsert(ctx context.Context, userID int64, token, platform string) error {
	if r.tokens == nil {
		r.tokens = make(map[string]model.DeviceToken)
	}
	r.tokens[token] = model.DeviceToken{UserID: userID, Token: token, Platform: platform}
	return nil
}

func (r *fakeDeviceTokenRepo) GetByUserID(ctx context.Context, userID int64) ([]model.DeviceToken, error) {
	var out []model.DeviceToken
	for _, t := range r.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeDeviceTokenRepo) Delete(ctx context.Context, userID int64, token string) error {
	if t, ok := r.tokens[token]; ok && t.UserID == userID {
		delete(r.tokens, token)
	}
	return nil
}

// =============================================================================
// OTHER COLLABORATORS
// =============================================================================

// recordingNotifier captures upserts for services that only trigger them.
type recordingNotifier struct {
	inputs []model.NotificationInput
}

func (n *recordingNotifier) Upsert(ctx context.Context, in model.NotificationInput) *model.Notification {
	n.inputs = append(n.inputs, in)
	return &model.Notification{RecipientID: in.RecipientID, SenderID: in.SenderID, Type: in.Type, Message: in.Message}
}

type recordingPublisher struct {
	events []queue.NotificationEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, stream string, event queue.NotificationEvent) (string, error) {
	p.events = append(p.events, event)
	return "0-1", nil
}

type recordingDeleter struct {
	keys []string
}

func (d *recordingDeleter) DeleteObject(ctx context.Context, key string) error {
	d.keys = append(d.keys, key)
	return nil
}

// fakeClock is a settable time source.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
