package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dom/qa-assessment/internal/domain"
	"go.uber.org/zap"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
	searchFields       = "key,title,author_name,first_publish_year"
)

// BookService looks up books on an Open Library compatible search
// endpoint for the profile's favorite book picker.
type BookService struct {
	searchURL  string
	httpClient *http.Client
	log        *zap.Logger
}

func NewBookService(searchURL string, timeout time.Duration, log *zap.Logger) *BookService {
	return &BookService{
		searchURL: searchURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.Named("books"),
	}
}

type bookSearchResponse struct {
	NumFound int           `json:"numFound"`
	Docs     []domain.Book `json:"docs"`
}

// Search returns at most limit hits for query. A limit outside 1..50 falls
// back to the default of 10.
func (s *BookService) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError(domain.FieldError{
			Code:    "too_small",
			Message: "String must contain at least 1 character(s)",
			Path:    []string{"q"},
		})
	}
	if limit <= 0 || limit > maxSearchLimit {
		limit = defaultSearchLimit
	}

	u, err := url.Parse(s.searchURL)
	if err != nil {
		return nil, fmt.Errorf("parse book search url: %w", err)
	}
	params := u.Query()
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build book search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("book search request failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("book search returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: book search returned status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var result bookSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode book search response: %v", domain.ErrUpstream, err)
	}

	books := result.Docs
	if books == nil {
		books = []domain.Book{}
	}
	if len(books) > limit {
		books = books[:limit]
	}
	return books, nil
}
