package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/mr0ak1/social-app/internal/model"
	"github.com/mr0ak1/social-app/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo             repository.UserRepository
	followRepo       repository.FollowRepository
	media            ObjectDeleter // nil when object storage is not configured
	defaultAvatarKey string
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	media ObjectDeleter,
	defaultAvatarKey string,
) *UserService {
	return &UserService{
		repo:             repo,
		followRepo:       followRepo,
		media:            media,
		defaultAvatarKey: defaultAvatarKey,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account. Every field is required and the
// avatar must already be uploaded.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))

	switch {
	case req.Name == "":
		return nil, model.ErrNameRequired
	case req.Email == "":
		return nil, model.ErrEmailRequired
	case strings.TrimSpace(req.Password) == "":
		return nil, model.ErrPasswordRequired
	case req.Gender != model.GenderMale && req.Gender != model.GenderFemale:
		return nil, model.ErrInvalidGender
	case req.AvatarURL == nil || *req.AvatarURL == "":
		return nil, model.ErrAvatarRequired
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:           req.Name,
		Email:          req.Email,
		PasswordHashed: string(hashedPassword),
		Gender:         req.Gender,
		AvatarURL:      req.AvatarURL,
		AvatarKey:      req.AvatarKey,
		Followers:      []int64{},
		Followings:     []int64{},
	}

	// ErrEmailExists also surfaces here when a concurrent signup wins.
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	logrus.WithField("user", user.ID).Info("[UserService] Registered")
	return user, nil
}

// Login authenticates a user with email and password.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		// Don't reveal whether the email exists or not
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := s.loadFollowIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetProfile returns the user with follower and following ids.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.loadFollowIDs(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) loadFollowIDs(ctx context.Context, user *model.User) error {
	followers, err := s.followRepo.GetFollowerIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	followings, err := s.followRepo.GetFolloweeIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	user.Followers = nonNilIDs(followers)
	user.Followings = nonNilIDs(followings)
	return nil
}

// Search matches name or email, never returning the viewer.
func (s *UserService) Search(ctx context.Context, query string, viewerID int64) ([]model.UserSummary, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.UserSummary{}, nil
	}
	users, err := s.repo.Search(ctx, query, viewerID, model.UserSearchLimit)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.UserSummary{}
	}
	return users, nil
}

// FollowData lists the followers and followings of userID.
func (s *UserService) FollowData(ctx context.Context, userID int64) (*model.FollowData, error) {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	followers, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	followings, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}

	if followers == nil {
		followers = []model.UserSummary{}
	}
	if followings == nil {
		followings = []model.UserSummary{}
	}
	return &model.FollowData{Followers: followers, Followings: followings}, nil
}

// UpdateProfile changes name and/or avatar of the actor's own account.
// A replaced avatar is removed from storage unless it is the shared default.
func (s *UserService) UpdateProfile(ctx context.Context, actorID, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	if actorID != userID {
		return nil, model.ErrNotAccountOwner
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, model.ErrNameRequired
		}
		req.Name = &name
	}

	current, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProfile(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	if req.AvatarKey != nil && current.AvatarKey != nil && *current.AvatarKey != *req.AvatarKey {
		s.deleteAvatar(ctx, *current.AvatarKey)
	}

	if err := s.loadFollowIDs(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *UserService) deleteAvatar(ctx context.Context, key string) {
	if s.media == nil || key == "" || key == s.defaultAvatarKey {
		return
	}
	if err := s.media.DeleteObject(ctx, key); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("[UserService] Failed to delete old avatar")
	}
}

// UpdatePassword replaces the password after checking the old one.
func (s *UserService) UpdatePassword(ctx context.Context, actorID, userID int64, req model.UpdatePasswordRequest) error {
	if actorID != userID {
		return model.ErrNotAccountOwner
	}
	if strings.TrimSpace(req.OldPassword) == "" || strings.TrimSpace(req.NewPassword) == "" {
		return model.ErrPasswordRequired
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.OldPassword)); err != nil {
		return model.ErrWrongPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, userID, string(hashed))
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
