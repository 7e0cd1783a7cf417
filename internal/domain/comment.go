package domain

import (
	"slices"
	"sort"
)

// Comment is a reader response on a story. ParentID links a reply to the
// comment it answers; an empty ParentID marks a top-level comment. The
// tree helpers below handle any depth; the service layer caps how deep
// new replies may go.
type Comment struct {
	Record
	StoryID     string   `json:"storyId"`
	ParentID    string   `json:"parentId,omitempty"`
	AuthorID    string   `json:"authorId"`
	AuthorName  string   `json:"authorName"`
	AuthorColor string   `json:"authorColor,omitempty"`
	Content     string   `json:"content"`
	LikedBy     []string `json:"likedBy,omitempty"`
	Likes       int      `json:"likes"`
}

// LikedByUser reports whether the given user has liked the comment.
func (c *Comment) LikedByUser(userID string) bool {
	return slices.Contains(c.LikedBy, userID)
}

// AddLike records a like from the given user. Returns false if already liked.
func (c *Comment) AddLike(userID string) bool {
	if c.LikedByUser(userID) {
		return false
	}
	c.LikedBy = append(c.LikedBy, userID)
	c.Likes = len(c.LikedBy)
	return true
}

// RemoveLike removes the given user's like. Returns false if not liked.
func (c *Comment) RemoveLike(userID string) bool {
	i := slices.Index(c.LikedBy, userID)
	if i < 0 {
		return false
	}
	c.LikedBy = slices.Delete(c.LikedBy, i, i+1)
	c.Likes = len(c.LikedBy)
	return true
}

// CommentNode is a comment with its replies resolved into a tree.
type CommentNode struct {
	Comment
	IsLiked bool           `json:"isLiked"`
	Replies []*CommentNode `json:"replies"`
}

// BuildThread projects a story's flat comment list into a nested tree.
// Top-level comments are ordered newest first; replies within a branch
// read chronologically. Comments whose parent is missing (already
// deleted) are promoted to top level rather than dropped.
func BuildThread(comments []Comment, viewerID string) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	for i := range comments {
		c := comments[i]
		nodes[c.ID] = &CommentNode{
			Comment: c,
			IsLiked: viewerID != "" && c.LikedByUser(viewerID),
			Replies: []*CommentNode{},
		}
	}

	var roots []*CommentNode
	for _, n := range nodes {
		if n.ParentID != "" {
			if parent, ok := nodes[n.ParentID]; ok {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}

	sort.Slice(roots, func(i, j int) bool {
		return roots[i].CreatedAt.After(roots[j].CreatedAt)
	})
	var sortReplies func(n *CommentNode)
	sortReplies = func(n *CommentNode) {
		sort.Slice(n.Replies, func(i, j int) bool {
			return n.Replies[i].CreatedAt.Before(n.Replies[j].CreatedAt)
		})
		for _, r := range n.Replies {
			sortReplies(r)
		}
	}
	for _, r := range roots {
		sortReplies(r)
	}
	return roots
}

// CollectThreadIDs returns the IDs of the comment and every descendant
// reply, for cascade deletion.
func CollectThreadIDs(comments []Comment, rootID string) []string {
	children := make(map[string][]string, len(comments))
	for i := range comments {
		if comments[i].ParentID != "" {
			children[comments[i].ParentID] = append(children[comments[i].ParentID], comments[i].ID)
		}
	}

	ids := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids
}
