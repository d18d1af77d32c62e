package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	username     string
	password     string
	favoriteBook *domain.Book
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		username: fmt.Sprintf("testuser_%s", uuid.New().String()[:8]),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithUsername(name string) *UserBuilder {
	b.username = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

func (b *UserBuilder) WithFavoriteBook(book *domain.Book) *UserBuilder {
	b.favoriteBook = book
	return b
}

// Build stores the user directly and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, users repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &domain.User{
		ID:           uuid.New(),
		Username:     b.username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if b.favoriteBook != nil {
		encoded, err := json.Marshal(b.favoriteBook)
		if err != nil {
			t.Fatalf("failed to encode favorite book: %v", err)
		}
		user.FavoriteBook = datatypes.JSON(encoded)
	}

	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the API auth response
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

// BuildAndAuthenticate registers the user via the API and returns its id
// and session token
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) (uuid.UUID, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{
		"username": b.username,
		"password": b.password,
	})

	resp, err := http.Post(ts.URL("/users"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	userID, err := uuid.Parse(authResp.UserID)
	if err != nil {
		t.Fatalf("invalid user id %q: %v", authResp.UserID, err)
	}

	return userID, authResp.Token
}

// PostBuilder creates test posts with a builder pattern
type PostBuilder struct {
	title    string
	content  string
	authorID uuid.UUID
	created  time.Time
}

func NewPostBuilder() *PostBuilder {
	return &PostBuilder{
		title:    "Test post",
		content:  "Test content",
		authorID: uuid.New(),
		created:  time.Now().UTC().Truncate(time.Microsecond),
	}
}

func (b *PostBuilder) WithTitle(title string) *PostBuilder {
	b.title = title
	return b
}

func (b *PostBuilder) WithContent(content string) *PostBuilder {
	b.content = content
	return b
}

func (b *PostBuilder) WithAuthor(id uuid.UUID) *PostBuilder {
	b.authorID = id
	return b
}

func (b *PostBuilder) WithCreatedAt(at time.Time) *PostBuilder {
	b.created = at.UTC().Truncate(time.Microsecond)
	return b
}

// Build stores the post directly
func (b *PostBuilder) Build(t *testing.T, posts repository.PostRepository) *domain.Post {
	t.Helper()

	post := &domain.Post{
		ID:        uuid.New(),
		Title:     b.title,
		Content:   b.content,
		AuthorID:  b.authorID,
		CreatedAt: b.created,
		UpdatedAt: b.created,
	}

	if err := posts.Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create post: %v", err)
	}

	return post
}

// NewRequest creates an HTTP request with a JSON body and the raw session
// token as the Authorization header. body may be a string, which is sent
// verbatim.
func NewRequest(t *testing.T, method, url string, body any, token string) *http.Request {
	t.Helper()

	bodyReader := bytes.NewBuffer(nil)
	switch v := body.(type) {
	case nil:
	case string:
		bodyReader.WriteString(v)
	default:
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader.Write(jsonBody)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	return req
}

// Do sends req and registers closing of the response body.
func Do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", req.Method, req.URL.Path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}
