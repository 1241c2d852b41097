// Package queue defines message payloads exchanged over the message broker.
package queue

// ContentEvent is published when a post, announcement or chat message is
// successfully persisted.  It contains enough information for downstream
// consumers to build an audit trail or trigger analytics without querying
// the primary database.
type ContentEvent struct {
    Kind       string `json:"kind"` // "post" | "announcement" | "chat"
    ID         uint64 `json:"id"`
    AuthorID   string `json:"author_id"`
    AuthorName string `json:"author_name"`
    Summary    string `json:"summary"`
    CreatedAt  string `json:"created_at"`
}
