package domain

// Tag categorizes stories. Slug doubles as the tag's stable key; stories
// reference tags by slug rather than by ID so renames stay explicit.
type Tag struct {
	Record
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
	Featured    bool   `json:"featured,omitempty"`
	StoryCount  int    `json:"storyCount"`
}
