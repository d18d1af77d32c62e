package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type User struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	FavoriteBook datatypes.JSON `json:"favoriteBook"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Book is a single hit from the external book search. A user's favorite
// book is stored in the same shape.
type Book struct {
	Key              string   `json:"key" validate:"required,max=200"`
	Title            string   `json:"title" validate:"required,max=500"`
	AuthorName       []string `json:"author_name,omitempty"`
	FirstPublishYear *int     `json:"first_publish_year,omitempty"`
}

// FavoriteBook is a user's selected book.
type FavoriteBook = Book

type Session struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	TokenHash string    `json:"-" gorm:"uniqueIndex;not null"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthContext is the identity attached to a request once its session
// token has been resolved. It lives for one request only.
type AuthContext struct {
	UserID uuid.UUID
	Token  string
}

// Book decodes the stored favorite book. It returns nil when none is set.
func (u *User) Book() (*Book, error) {
	if len(u.FavoriteBook) == 0 || string(u.FavoriteBook) == "null" {
		return nil, nil
	}
	var book Book
	if err := json.Unmarshal(u.FavoriteBook, &book); err != nil {
		return nil, err
	}
	return &book, nil
}
