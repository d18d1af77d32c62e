package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// APIClient handles HTTP communication with the backend
type APIClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPIClient creates a new API client
func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"authorId"`
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Status, e.Body)
}

func (c *APIClient) Register(username, password string) (*AuthResponse, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/users", map[string]string{
		"username": username,
		"password": password,
	}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Login(username, password string) (*AuthResponse, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "", &result)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &result, nil
}

func (c *APIClient) Logout(token string) error {
	if err := c.do(http.MethodPost, "/auth/logout", nil, token, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *APIClient) ListPosts(token string) ([]Post, error) {
	var posts []Post
	if err := c.do(http.MethodGet, "/posts", nil, token, &posts); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (c *APIClient) CreatePost(token, title, content string) (*Post, error) {
	var post Post
	err := c.do(http.MethodPost, "/posts", map[string]string{
		"title":   title,
		"content": content,
	}, token, &post)
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return &post, nil
}

func (c *APIClient) do(method, path string, body any, token string, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
