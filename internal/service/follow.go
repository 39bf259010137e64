package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	notifier   Notifier
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		notifier:   notifier,
	}
}

// Toggle follows targetID, or unfollows when actorID already follows them.
// Either way the target gets a notification.
func (s *FollowService) Toggle(ctx context.Context, actorID, targetID int64) (*model.FollowResult, error) {
	if actorID == targetID {
		return nil, model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	actor, err := s.userRepo.GetByID(ctx, actorID)
	if err != nil {
		return nil, err
	}

	following, err := s.followRepo.Exists(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	input := model.NotificationInput{RecipientID: targetID, SenderID: actorID}
	if following {
		if _, err := s.followRepo.Delete(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		input.Type = model.NotificationTypeUnfollow
		input.Message = model.UnfollowMessage(actor.Name)
	} else {
		if _, err := s.followRepo.Create(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		input.Type = model.NotificationTypeFollow
		input.Message = model.FollowMessage(actor.Name)
	}

	logrus.WithFields(logrus.Fields{
		"actor":     actorID,
		"target":    targetID,
		"following": !following,
	}).Debug("[FollowService] Toggle OK")

	s.notifier.Upsert(ctx, input)
	return &model.FollowResult{Following: !following}, nil
}
