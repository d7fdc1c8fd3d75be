package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"mailpilot-be/internal/repository"
	"mailpilot-be/internal/search"
	"mailpilot-be/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/sahilm/fuzzy"
)

// SearchHandler serves semantic search over the email index and fuzzy
// autocomplete suggestions over stored subjects and senders.
type SearchHandler struct {
	index *search.Index
	store *repository.Store
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(index *search.Index, store *repository.Store) *SearchHandler {
	return &SearchHandler{index: index, store: store}
}

// SemanticSearchRequest is the payload for a semantic search.
type SemanticSearchRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// SemanticSearchResponse wraps scored semantic matches.
type SemanticSearchResponse struct {
	Results []search.Result `json:"results"`
}

// Semantic godoc
// @Summary Semantic search over stored emails
// @Description Ranks stored emails against the query by embedding similarity
// @Tags search
// @Accept json
// @Produce json
// @Param payload body SemanticSearchRequest true "Search query"
// @Success 200 {object} SemanticSearchResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /search/semantic [post]
func (h *SearchHandler) Semantic(c *gin.Context) {
	var req SemanticSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := h.index.Search(c.Request.Context(), req.Query, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Search failed: " + err.Error()})
		return
	}
	if results == nil {
		results = []search.Result{}
	}

	c.JSON(http.StatusOK, SemanticSearchResponse{Results: results})
}

// Suggestions godoc
// @Summary Autocomplete suggestions
// @Description Fuzzy-matches the prefix against stored subjects and sender names, ignoring accents
// @Tags search
// @Produce json
// @Param q query string true "Prefix to complete"
// @Param limit query int false "Maximum suggestions" default(8)
// @Success 200 {object} map[string][]string
// @Failure 500 {object} models.ErrorResponse
// @Router /search/suggestions [get]
func (h *SearchHandler) Suggestions(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "8"))
	if err != nil || limit <= 0 {
		limit = 8
	}

	if query == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	emails, err := h.store.FetchAllEmails(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load suggestion candidates: " + err.Error()})
		return
	}

	// Candidates are deduplicated subjects and sender display strings; matching
	// runs over their accent-folded forms so "Jose" finds "José".
	seen := make(map[string]struct{})
	var candidates, folded []string
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		key := strings.ToLower(utils.FoldAccents(value))
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		candidates = append(candidates, value)
		folded = append(folded, key)
	}
	for _, email := range emails {
		add(email.Subject)
		add(email.Sender())
	}

	matches := fuzzy.Find(strings.ToLower(utils.FoldAccents(query)), folded)

	suggestions := make([]string, 0, limit)
	for _, m := range matches {
		suggestions = append(suggestions, candidates[m.Index])
		if len(suggestions) >= limit {
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}
