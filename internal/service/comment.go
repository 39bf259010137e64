package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	userRepo    repository.UserRepository
	notifier    Notifier
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		userRepo:    userRepo,
		notifier:    notifier,
	}
}

// Add appends a comment to the post and notifies its owner.
func (s *CommentService) Add(ctx context.Context, actorID, postID int64, text string) (*model.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrCommentRequired
	}
	if utf8.RuneCountInString(text) > model.MaxCommentLength {
		return nil, model.ErrCommentTooLong
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:     postID,
		UserID:     actorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"post": postID, "comment": comment.ID, "user": actorID}).Debug("[CommentService] Added")

	s.notifier.Upsert(ctx, model.NotificationInput{
		RecipientID: post.UserID,
		SenderID:    actorID,
		Type:        model.NotificationTypeComment,
		Message:     model.CommentMessage(author.Name),
		PostID:      &post.ID,
	})
	return comment, nil
}

// Remove deletes a comment. The comment's author and the post's owner may.
func (s *CommentService) Remove(ctx context.Context, actorID, postID, commentID int64) error {
	if commentID <= 0 {
		return model.ErrCommentIDRequired
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	comment, err := s.commentRepo.GetByID(ctx, postID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != actorID && post.UserID != actorID {
		return model.ErrNotAllowedToDelete
	}

	if err := s.commentRepo.Delete(ctx, postID, commentID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"post": postID, "comment": commentID, "user": actorID}).Debug("[CommentService] Removed")
	return nil
}
