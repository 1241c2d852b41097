package handler

import (
	"context"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// requestContext derives the bounded context used for database calls in
// every handler.
func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// joinFileIDs normalizes a client-supplied attachment list into the
// comma-joined form stored on posts and chat messages.  Blank entries are
// dropped.
func joinFileIDs(ids []string) string {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			clean = append(clean, id)
		}
	}
	return strings.Join(clean, ",")
}

// splitFileIDs is the inverse of joinFileIDs for responses.
func splitFileIDs(joined string) []string {
	if joined == "" {
		return []string{}
	}
	return strings.Split(joined, ",")
}
