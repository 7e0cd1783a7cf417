package domain

// Bookmark marks a story as saved by a user. At most one bookmark exists
// per (user, story) pair; adding a duplicate is a no-op at the service
// layer rather than an error.
type Bookmark struct {
	Record
	UserID  string `json:"userId"`
	StoryID string `json:"storyId"`
}

// BookmarkKey is the unique key for a (user, story) pair.
func BookmarkKey(userID, storyID string) string {
	return userID + "/" + storyID
}

// Key returns the bookmark's unique (user, story) key.
func (b *Bookmark) Key() string {
	return BookmarkKey(b.UserID, b.StoryID)
}
