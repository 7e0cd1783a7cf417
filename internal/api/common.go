package api

import "github.com/danielgtaylor/huma/v2"

// headerUserID carries the acting user's identity. The platform runs on
// a fixed fixture roster, so a header stands in for a full auth stack.
const headerUserID = "X-User-Id"

// MessageResponse is a simple confirmation body.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps MessageResponse for huma.
type MessageOutput struct {
	Body MessageResponse
}

// requireViewer rejects requests missing the user identity header.
func requireViewer(userID string) (string, error) {
	if userID == "" {
		return "", huma.Error401Unauthorized("Missing " + headerUserID + " header")
	}
	return userID, nil
}
