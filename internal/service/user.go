package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storysphere/storysphere-server/internal/analytics"
	"github.com/storysphere/storysphere-server/internal/domain"
	apperrors "github.com/storysphere/storysphere-server/internal/errors"
	"github.com/storysphere/storysphere-server/internal/optimistic"
	"github.com/storysphere/storysphere-server/internal/store"
)

// FollowState is the viewer's optimistic snapshot of a profile follow.
// No follow edge is persisted; only the counters move durably, and the
// IsFollowing flag lives with the viewer.
type FollowState struct {
	IsFollowing bool `json:"isFollowing"`
	Followers   int  `json:"followers"`
}

// UserService handles profiles and the follow graph. Users come from
// fixtures, so there is no create or delete here.
type UserService struct {
	store     *store.Store
	analytics *analytics.Analytics
	follows   *optimistic.Toggle[FollowState]
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(st *store.Store, an *analytics.Analytics, logger *slog.Logger) *UserService {
	return &UserService{
		store:     st,
		analytics: an,
		follows:   optimistic.New[FollowState](toggleCooldown, logger),
		logger:    logger,
	}
}

// UpdateProfileInput is the payload for profile edits.
type UpdateProfileInput struct {
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Bio         *string        `json:"bio,omitempty" validate:"omitempty,max=500"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// List returns all users.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Users.All(ctx)
}

// GetByID returns one user.
func (s *UserService) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.store.Users.GetByID(ctx, userID)
}

// GetByUsername returns one user; the lookup is case-insensitive.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	want := strings.ToLower(strings.TrimSpace(username))
	users, err := s.store.Users.Find(ctx, func(u *domain.User) bool {
		return strings.ToLower(u.Username) == want
	})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	return &users[0], nil
}

// UpdateProfile applies partial profile edits.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Preferences != nil {
		if user.Preferences == nil {
			user.Preferences = make(map[string]any, len(input.Preferences))
		}
		for k, v := range input.Preferences {
			user.Preferences[k] = v
		}
	}
	user.Touch()

	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Follow records that follower now follows target, optimistically.
// Following yourself is rejected; both users must exist. The returned
// state reflects the new counters immediately; the settled channel
// reports whether the durable write committed.
func (s *UserService) Follow(ctx context.Context, followerID, targetID string) (FollowState, <-chan optimistic.Settled[FollowState], error) {
	return s.setFollowing(ctx, followerID, targetID, true)
}

// Unfollow reverses Follow.
func (s *UserService) Unfollow(ctx context.Context, followerID, targetID string) (FollowState, <-chan optimistic.Settled[FollowState], error) {
	return s.setFollowing(ctx, followerID, targetID, false)
}

func (s *UserService) setFollowing(ctx context.Context, followerID, targetID string, following bool) (FollowState, <-chan optimistic.Settled[FollowState], error) {
	if followerID == "" {
		return FollowState{}, nil, apperrors.Validation("a user is required to follow someone")
	}
	if followerID == targetID {
		return FollowState{}, nil, apperrors.Validation("cannot follow yourself")
	}
	if _, err := s.store.Users.GetByID(ctx, followerID); err != nil {
		return FollowState{}, nil, err
	}
	target, err := s.store.Users.GetByID(ctx, targetID)
	if err != nil {
		return FollowState{}, nil, err
	}

	prev := FollowState{IsFollowing: !following, Followers: target.Followers}
	next := FollowState{IsFollowing: following}
	delta := 1
	if !following {
		delta = -1
	}
	next.Followers = max(0, prev.Followers+delta)

	persist := func(ctx context.Context, _ FollowState) error {
		return s.adjustFollow(ctx, followerID, targetID, delta)
	}
	// A failed persist never reached storage, so reverting only needs
	// to restore the caller-visible snapshot.
	revert := func(context.Context, FollowState) error { return nil }

	return s.follows.Apply(ctx, followerID+"/"+targetID, prev, next, persist, revert)
}

// adjustFollow moves the follower/following counters durably.
func (s *UserService) adjustFollow(ctx context.Context, followerID, targetID string, delta int) error {
	err := s.store.Users.Mutate(ctx, func(users []domain.User) ([]domain.User, error) {
		targetFound := false
		for i := range users {
			switch users[i].ID {
			case targetID:
				users[i].Followers = max(0, users[i].Followers+delta)
				users[i].Touch()
				targetFound = true
			case followerID:
				users[i].Following = max(0, users[i].Following+delta)
				users[i].Touch()
			}
		}
		if !targetFound {
			return nil, apperrors.NotFoundf("user %q not found", targetID)
		}
		return users, nil
	})
	if err != nil {
		return err
	}

	if delta > 0 && s.analytics != nil {
		if err := s.analytics.Record(ctx, analytics.EventFollow, "", targetID); err != nil && s.logger != nil {
			s.logger.Warn("failed to record follow event", "error", err)
		}
	}
	return nil
}
