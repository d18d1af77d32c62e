package handlers_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dom/qa-assessment/internal/api/handlers"
	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response, uuid.UUID)
	}{
		{
			name:           "valid post",
			body:           map[string]string{"title": "Hello", "content": "First post"},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response, author uuid.UUID) {
				var post handlers.PostResponse
				testutil.AssertJSONResponse(t, resp, &post)
				assert.NotEmpty(t, post.ID)
				assert.Equal(t, "Hello", post.Title)
				assert.Equal(t, "First post", post.Content)
				assert.Equal(t, author.String(), post.AuthorID)
			},
		},
		{
			name:           "missing title",
			body:           map[string]string{"content": "No title"},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, resp *http.Response, _ uuid.UUID) {
				testutil.AssertValidationErrors(t, resp, []domain.FieldError{{
					Code: "invalid_type", Expected: "string", Received: "undefined",
					Message: "Required", Path: []string{"title"},
				}})
			},
		},
		{
			name:           "empty title",
			body:           map[string]string{"title": "", "content": "Blank title"},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, resp *http.Response, _ uuid.UUID) {
				testutil.AssertValidationErrors(t, resp, []domain.FieldError{{
					Code: "too_small", Message: "String must contain at least 1 character(s)", Path: []string{"title"},
				}})
			},
		},
		{
			name:           "empty body",
			body:           map[string]string{},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, resp *http.Response, _ uuid.UUID) {
				testutil.AssertValidationErrors(t, resp, []domain.FieldError{
					{Code: "invalid_type", Expected: "string", Received: "undefined", Message: "Required", Path: []string{"title"}},
					{Code: "invalid_type", Expected: "string", Received: "undefined", Message: "Required", Path: []string{"content"}},
				})
			},
		},
		{
			name:           "title too long",
			body:           map[string]string{"title": strings.Repeat("x", 201), "content": "body"},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, resp *http.Response, _ uuid.UUID) {
				testutil.AssertValidationErrors(t, resp, []domain.FieldError{{
					Code: "too_big", Message: "String must contain at most 200 character(s)", Path: []string{"title"},
				}})
			},
		},
		{
			name:           "malformed json",
			body:           `{"title": "x",`,
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			author, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

			resp := testutil.Do(t, testutil.NewRequest(t, http.MethodPost, ts.URL("/posts"), tt.body, token))

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.checkResponse != nil {
				tt.checkResponse(t, resp, author)
			}
		})
	}
}

func TestPostHandler_CreateRequiresAuth(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp := testutil.Do(t, testutil.NewRequest(t, http.MethodPost, ts.URL("/posts"),
		map[string]string{"title": "t", "content": "c"}, ""))
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Unauthorized")

	posts, err := ts.Repos.Post.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, posts, "unauthenticated request must not reach the handler")
}

func TestPostHandler_ListAndGet(t *testing.T) {
	ts := testutil.NewTestServer(t)
	author, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	base := time.Now().Add(-time.Hour)
	older := testutil.NewPostBuilder().WithTitle("older").WithAuthor(author).WithCreatedAt(base).Build(t, ts.Repos.Post)
	newer := testutil.NewPostBuilder().WithTitle("newer").WithAuthor(author).WithCreatedAt(base.Add(time.Minute)).Build(t, ts.Repos.Post)

	t.Run("list is newest first", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.URL("/posts"), nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var posts []handlers.PostResponse
		testutil.AssertJSONResponse(t, resp, &posts)
		require.Len(t, posts, 2)
		assert.Equal(t, newer.ID.String(), posts[0].ID)
		assert.Equal(t, older.ID.String(), posts[1].ID)
	})

	t.Run("get existing", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.URL("/posts/"+older.ID.String()), nil, token))
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var post handlers.PostResponse
		testutil.AssertJSONResponse(t, resp, &post)
		assert.Equal(t, "older", post.Title)
	})

	t.Run("get missing", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.URL("/posts/"+uuid.NewString()), nil, token))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Post not found")
	})

	t.Run("get malformed id", func(t *testing.T) {
		resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.URL("/posts/abc"), nil, token))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Post not found")
	})
}

func TestPostHandler_ListEmptyIsArray(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, token := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)

	resp := testutil.Do(t, testutil.NewRequest(t, http.MethodGet, ts.URL("/posts"), nil, token))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var posts []handlers.PostResponse
	testutil.AssertJSONResponse(t, resp, &posts)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostHandler_UpdateAndDelete(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		body           any
		asOther        bool
		missing        bool
		expectedStatus int
		expectedMsg    string
	}{
		{name: "author updates title", method: http.MethodPut, body: map[string]string{"title": "Edited"}, expectedStatus: http.StatusOK},
		{name: "empty title rejected", method: http.MethodPut, body: map[string]string{"title": ""}, expectedStatus: http.StatusUnprocessableEntity},
		{name: "other user cannot update", method: http.MethodPut, body: map[string]string{"title": "Mine now"}, asOther: true, expectedStatus: http.StatusForbidden, expectedMsg: "Forbidden"},
		{name: "update missing post", method: http.MethodPut, body: map[string]string{"title": "x"}, missing: true, expectedStatus: http.StatusNotFound, expectedMsg: "Post not found"},
		{name: "author deletes", method: http.MethodDelete, expectedStatus: http.StatusOK, expectedMsg: "Post deleted"},
		{name: "other user cannot delete", method: http.MethodDelete, asOther: true, expectedStatus: http.StatusForbidden, expectedMsg: "Forbidden"},
		{name: "delete missing post", method: http.MethodDelete, missing: true, expectedStatus: http.StatusNotFound, expectedMsg: "Post not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := testutil.NewTestServer(t)
			author, authorToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
			_, otherToken := testutil.NewUserBuilder().BuildAndAuthenticate(t, ts)
			post := testutil.NewPostBuilder().WithTitle("Original").WithAuthor(author).Build(t, ts.Repos.Post)

			token := authorToken
			if tt.asOther {
				token = otherToken
			}
			id := post.ID
			if tt.missing {
				id = uuid.New()
			}

			resp := testutil.Do(t, testutil.NewRequest(t, tt.method, ts.URL("/posts/"+id.String()), tt.body, token))

			if tt.expectedMsg != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedMsg)
			} else {
				assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			}

			stored, err := ts.Repos.Post.GetByID(t.Context(), post.ID)
			switch {
			case tt.method == http.MethodDelete && tt.expectedStatus == http.StatusOK:
				assert.ErrorIs(t, err, domain.ErrNotFound)
			case tt.expectedStatus == http.StatusOK:
				require.NoError(t, err)
				assert.Equal(t, "Edited", stored.Title)
			default:
				require.NoError(t, err)
				assert.Equal(t, "Original", stored.Title)
			}
		})
	}
}
