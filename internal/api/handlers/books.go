package handlers

import (
	"net/http"
	"strconv"

	"github.com/dom/qa-assessment/internal/domain"
	"github.com/dom/qa-assessment/internal/service"
	"go.uber.org/zap"
)

type BookHandler struct {
	bookService *service.BookService
	log         *zap.Logger
}

func NewBookHandler(bookService *service.BookService, log *zap.Logger) *BookHandler {
	return &BookHandler{bookService: bookService, log: log.Named("handlers.books")}
}

// Search proxies GET /books/search?q=...&limit=... to the book catalogue.
func (h *BookHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, h.log, domain.NewValidationError(domain.FieldError{
				Code:     "invalid_type",
				Expected: "number",
				Received: "string",
				Message:  "Expected number, received string",
				Path:     []string{"limit"},
			}), "")
			return
		}
		limit = n
	}

	books, err := h.bookService.Search(r.Context(), query.Get("q"), limit)
	if err != nil {
		writeError(w, h.log, err, "")
		return
	}

	writeJSON(w, http.StatusOK, books)
}
