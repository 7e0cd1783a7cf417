package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storysphere/storysphere-server/internal/domain"
	"github.com/storysphere/storysphere-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns the community roster",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the acting user's profile",
		Tags:        []string{"Users"},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update profile",
		Description: "Applies partial edits to the acting user's profile",
		Tags:        []string{"Users"},
	}, s.handleUpdateProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserByUsername",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/by-username/{username}",
		Summary:     "Get user by username",
		Description: "Returns a user by username, case-insensitive",
		Tags:        []string{"Users"},
	}, s.handleGetUserByUsername)

	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Follow user",
		Description: "The acting user follows the target user",
		Tags:        []string{"Users"},
	}, s.handleFollowUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/{id}/follow",
		Summary:     "Unfollow user",
		Description: "The acting user unfollows the target user",
		Tags:        []string{"Users"},
	}, s.handleUnfollowUser)
}

// === DTOs ===

type ListUsersResponse struct {
	Users []domain.User `json:"users" doc:"Community roster"`
}

type ListUsersOutput struct {
	Body ListUsersResponse
}

type CurrentUserInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
}

type UserOutput struct {
	Body domain.User
}

type UpdateProfileInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	Body   service.UpdateProfileInput
}

type GetUserInput struct {
	ID string `path:"id" doc:"User ID"`
}

type GetUserByUsernameInput struct {
	Username string `path:"username" doc:"Username"`
}

type FollowInput struct {
	UserID string `header:"X-User-Id" doc:"Acting user ID"`
	ID     string `path:"id" doc:"Target user ID"`
}

type FollowResponse struct {
	IsFollowing bool   `json:"isFollowing" doc:"Whether the acting user now follows the target"`
	Followers   int    `json:"followers" doc:"Target's follower count after the toggle"`
	State       string `json:"state" doc:"Mutation state, always pending on response"`
}

type FollowOutput struct {
	Body FollowResponse
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, _ *struct{}) (*ListUsersOutput, error) {
	users, err := s.services.User.List(ctx)
	if err != nil {
		return nil, err
	}
	return &ListUsersOutput{Body: ListUsersResponse{Users: users}}, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, input *CurrentUserInput) (*UserOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	user, err := s.services.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	user, err := s.services.User.UpdateProfile(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	user, err := s.services.User.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleGetUserByUsername(ctx context.Context, input *GetUserByUsernameInput) (*UserOutput, error) {
	user, err := s.services.User.GetByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleFollowUser(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	state, _, err := s.services.User.Follow(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: FollowResponse{
		IsFollowing: state.IsFollowing,
		Followers:   state.Followers,
		State:       "pending",
	}}, nil
}

func (s *Server) handleUnfollowUser(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := requireViewer(input.UserID)
	if err != nil {
		return nil, err
	}

	state, _, err := s.services.User.Unfollow(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: FollowResponse{
		IsFollowing: state.IsFollowing,
		Followers:   state.Followers,
		State:       "pending",
	}}, nil
}
