package model

import "time"

// Post is a feed entry or, when IsAdminPost is set, an announcement.  The
// Title is only meaningful for announcements; regular feed posts carry an
// empty title.  FileIDs holds a comma-joined list of uploaded file ids
// attached to the post.
//
// Fields:
//  ID          – monotonic primary key.
//  AuthorID    – user who created the post.
//  Title       – announcement title ('' for feed posts).
//  Content     – body text, non-empty after trimming.
//  IsAdminPost – true for announcements (owner/admin-access only).
//  FileIDs     – comma-joined uploaded file ids ('' when none).
//  CreatedAt   – creation timestamp.
type Post struct {
    ID          uint64    // posts.id
    AuthorID    string    // posts.author_id
    Title       string    // posts.title
    Content     string    // posts.content
    IsAdminPost bool      // posts.is_admin_post
    FileIDs     string    // posts.file_ids
    CreatedAt   time.Time // posts.created_at
}

// Comment belongs to a post and is removed together with it through the
// schema's cascade.
type Comment struct {
    ID        uint64    // comments.id
    PostID    uint64    // comments.post_id
    AuthorID  string    // comments.author_id
    Content   string    // comments.content
    CreatedAt time.Time // comments.created_at
}

// Like records that a user liked a post.  The (PostID, UserID) pair is the
// primary key; the data layer guarantees at most one like per pair.
type Like struct {
    PostID    uint64    // likes.post_id
    UserID    string    // likes.user_id
    CreatedAt time.Time // likes.created_at
}
