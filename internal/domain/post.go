// Package domain defines the core types shared across the balancer service.
package domain

import "time"

// Post is a target social-media post under monitoring.
type Post struct {
	ID        string    `db:"id"         json:"id"`
	AuthorID  string    `db:"author_id"  json:"author_id"`
	Content   string    `db:"content"    json:"content"`
	Likes     int       `db:"likes"      json:"likes"`
	Comments  int       `db:"comments"   json:"comments"`
	Shares    int       `db:"shares"     json:"shares"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Comment is a single comment on a post.
type Comment struct {
	ID        string    `db:"id"         json:"id"`
	PostID    string    `db:"post_id"    json:"post_id"`
	AuthorID  string    `db:"author_id"  json:"author_id"`
	Content   string    `db:"content"    json:"content"`
	Likes     int       `db:"likes"      json:"likes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// EngagementData captures a post's aggregate counters at a point in time.
type EngagementData struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
	Shares   int `json:"shares"`
}
