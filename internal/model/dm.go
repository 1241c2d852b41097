package model

import "time"

// DirectMessage is a private message between two users.  A conversation is
// the time-ordered set of rows whose (sender, recipient) pair matches a
// given unordered user pair in either direction.
//
// Fields:
//  ID          – monotonic primary key.
//  SenderID    – user who wrote the message.
//  RecipientID – user who receives it.
//  Content     – message text.
//  CreatedAt   – creation timestamp.
type DirectMessage struct {
    ID          uint64    // direct_messages.id
    SenderID    string    // direct_messages.sender_id
    RecipientID string    // direct_messages.recipient_id
    Content     string    // direct_messages.content
    CreatedAt   time.Time // direct_messages.created_at
}
