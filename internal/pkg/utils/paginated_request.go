package utils

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kollektive-hackathon/morra-backend/internal/pkg/reject"
)

const (
	pageSizeInvalid  string = "error.request.page-size-invalid"
	pageTokenInvalid string = "error.request.page-token-invalid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PageRequest struct {
	Size   int
	Token  int
	Offset int
}

// NewPageRequest reads page_size and page_token from the query. Both are
// optional; sizes above MaxPageSize are clamped.
func NewPageRequest(c *gin.Context) (PageRequest, *reject.ProblemWithTrace) {
	pageSize, err := queryInt(c, "page_size", DefaultPageSize)
	if err != nil || pageSize < 1 {
		return PageRequest{}, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Page size must be a positive number").
				WithStatus(http.StatusBadRequest).
				WithCode(pageSizeInvalid).
				WithParam("page_size", c.Query("page_size")).
				Build(),
			Cause: err,
		}
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	pageToken, err := queryInt(c, "page_token", 0)
	if err != nil || pageToken < 0 {
		return PageRequest{}, &reject.ProblemWithTrace{
			Problem: reject.NewProblem().
				WithTitle("Page token must be a non-negative number").
				WithStatus(http.StatusBadRequest).
				WithCode(pageTokenInvalid).
				WithParam("page_token", c.Query("page_token")).
				Build(),
			Cause: err,
		}
	}

	return PageRequest{
		Size:   pageSize,
		Token:  pageToken,
		Offset: pageSize * pageToken,
	}, nil
}

// NextToken returns the token of the following page, or nil on the last one.
func (p PageRequest) NextToken(itemCount int64) *int64 {
	if itemCount > int64(p.Offset+p.Size) {
		next := int64(p.Token + 1)
		return &next
	}
	return nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
