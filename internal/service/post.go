package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	notifier Notifier
	media    ObjectDeleter // nil when object storage is not configured
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	media ObjectDeleter,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		notifier: notifier,
		media:    media,
	}
}

// Create stores a post or reel whose media is already uploaded.
func (s *PostService) Create(ctx context.Context, ownerID int64, req model.CreatePostRequest) (*model.Post, error) {
	if !model.IsValidPostType(req.Type) {
		return nil, model.ErrInvalidPostType
	}
	if req.MediaURL == "" {
		return nil, model.ErrNoMediaProvided
	}
	req.Caption = strings.TrimSpace(req.Caption)
	if utf8.RuneCountInString(req.Caption) > model.MaxPostCaptionLength {
		return nil, model.ErrCaptionTooLong
	}

	post, err := s.postRepo.Create(ctx, ownerID, req)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post": post.ID, "owner": ownerID, "type": post.Type}).Info("[PostService] Created")
	return post, nil
}

// All returns every post and reel, newest first.
func (s *PostService) All(ctx context.Context) (*model.AllPostsResponse, error) {
	posts, err := s.postRepo.ListByType(ctx, model.PostTypePost)
	if err != nil {
		return nil, err
	}
	reels, err := s.postRepo.ListByType(ctx, model.PostTypeReel)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []model.Post{}
	}
	if reels == nil {
		reels = []model.Post{}
	}
	return &model.AllPostsResponse{Posts: posts, Reels: reels}, nil
}

// getOwned loads the post and checks that actorID owns it.
func (s *PostService) getOwned(ctx context.Context, actorID, postID int64) (*model.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actorID {
		return nil, model.ErrNotPostOwner
	}
	return post, nil
}

func (s *PostService) UpdateCaption(ctx context.Context, actorID, postID int64, caption string) error {
	caption = strings.TrimSpace(caption)
	if utf8.RuneCountInString(caption) > model.MaxPostCaptionLength {
		return model.ErrCaptionTooLong
	}
	if _, err := s.getOwned(ctx, actorID, postID); err != nil {
		return err
	}
	return s.postRepo.UpdateCaption(ctx, postID, caption)
}

// Delete removes the post; its media goes best effort afterwards.
func (s *PostService) Delete(ctx context.Context, actorID, postID int64) error {
	post, err := s.getOwned(ctx, actorID, postID)
	if err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if s.media != nil && post.MediaKey != "" {
		if err := s.media.DeleteObject(ctx, post.MediaKey); err != nil {
			logrus.WithError(err).WithField("key", post.MediaKey).Warn("[PostService] Failed to delete media")
		}
	}

	logrus.WithFields(logrus.Fields{"post": postID, "owner": actorID}).Info("[PostService] Deleted")
	return nil
}

// ToggleLike likes the post, or unlikes it when actorID already did.
// Only a like notifies the owner.
func (s *PostService) ToggleLike(ctx context.Context, actorID, postID int64) (*model.LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.postRepo.HasLiked(ctx, postID, actorID)
	if err != nil {
		return nil, err
	}
	if liked {
		if _, err := s.postRepo.Unlike(ctx, postID, actorID); err != nil {
			return nil, err
		}
		return &model.LikeResult{Liked: false}, nil
	}

	if _, err := s.postRepo.Like(ctx, postID, actorID); err != nil {
		return nil, err
	}

	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	s.notifier.Upsert(ctx, model.NotificationInput{
		RecipientID: post.UserID,
		SenderID:    actorID,
		Type:        model.NotificationTypeLike,
		Message:     model.LikeMessage(actor.Name),
		PostID:      &post.ID,
	})
	return &model.LikeResult{Liked: true}, nil
}
