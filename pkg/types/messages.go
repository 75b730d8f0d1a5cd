package types

// Wire protocol: JSON text frames over a persistent websocket.
//
// Client -> Server
//   join-board:     boardId, user
//   cursor-move:    boardId, user, x, y
//   element_update: userId, boardId, action, element
//   register-user:  userId (private notification room, outside the sync core)
//
// Server -> Client
//   cursors-update: cursors (always the full presence set for the board)
//   element_update: userId, boardId, action, element
//   error:          error

const (
	MsgJoinBoard     = "join-board"
	MsgCursorMove    = "cursor-move"
	MsgCursorsUpdate = "cursors-update"
	MsgElementUpdate = "element_update"
	MsgRegisterUser  = "register-user"
	MsgError         = "error"
)

type ClientMessage struct {
	Type    string           `json:"type"`
	BoardID string           `json:"boardId,omitempty"`
	User    *User            `json:"user,omitempty"`
	X       float64          `json:"x,omitempty"`
	Y       float64          `json:"y,omitempty"`
	UserID  string           `json:"userId,omitempty"`
	Action  Action           `json:"action,omitempty"`
	Element *ElementSnapshot `json:"element,omitempty"`
}

type ServerMessage struct {
	Type    string           `json:"type"`
	BoardID string           `json:"boardId,omitempty"`
	Cursors []CursorSample   `json:"cursors,omitempty"`
	UserID  string           `json:"userId,omitempty"`
	Action  Action           `json:"action,omitempty"`
	Element *ElementSnapshot `json:"element,omitempty"`
	Error   string           `json:"error,omitempty"`
}
