package model

import "time"

// ChatMessage is a message in the single shared chat room.  The whole table
// is purged once per day by the retention job, and admins may delete
// individual messages at any time.
//
// Fields:
//  ID        – monotonic primary key.
//  AuthorID  – user who sent the message.
//  Content   – message text.
//  FileIDs   – comma-joined uploaded file ids ('' when none).
//  CreatedAt – creation timestamp.
type ChatMessage struct {
    ID        uint64    // chat_messages.id
    AuthorID  string    // chat_messages.author_id
    Content   string    // chat_messages.content
    FileIDs   string    // chat_messages.file_ids
    CreatedAt time.Time // chat_messages.created_at
}
