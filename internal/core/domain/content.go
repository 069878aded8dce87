package domain

import "time"

// Category groups articles.
type Category struct {
	ID          string `json:"id" xml:"id"`
	Name        string `json:"name" xml:"name"`
	Description string `json:"description,omitempty" xml:"description,omitempty"`
}

// Article is a published news item.
type Article struct {
	ID         string    `json:"id" xml:"id"`
	Title      string    `json:"title" xml:"title"`
	Summary    string    `json:"summary,omitempty" xml:"summary,omitempty"`
	Content    string    `json:"content" xml:"content"`
	CategoryID string    `json:"category_id,omitempty" xml:"categoryId,omitempty"`
	Author     string    `json:"author,omitempty" xml:"author,omitempty"`
	CreatedAt  time.Time `json:"created_at" xml:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" xml:"updatedAt"`
}

// ArticlePage is one page of articles, newest first.
type ArticlePage struct {
	Items      []*Article `json:"items" xml:"items>article"`
	Page       int        `json:"page" xml:"page"`
	Size       int        `json:"size" xml:"size"`
	Total      int64      `json:"total" xml:"total"`
	TotalPages int        `json:"total_pages" xml:"totalPages"`
}
