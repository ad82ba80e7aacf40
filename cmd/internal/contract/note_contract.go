package contract

const (
	MaxNoteTitleLength   = 200
	MaxNoteContentLength = 100000
)

type NoteResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	OwnerID   int64  `json:"owner_id"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// NoteRequest is the body of both note creation and full replacement.
// Any "id" or "owner_id" sent by the client is ignored.
type NoteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"max=100000" sanitize:"-"`
}

type NoteQuery struct {
	Q string `query:"q"`
}
