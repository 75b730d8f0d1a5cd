package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/hub"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/metrics"
	"github.com/Madhu0614/Ai-task-hub-madhu/internal/room"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

const (
	// joinTimeout bounds how long a socket may sit idle before sending
	// join-board.
	joinTimeout = 10 * time.Second
	// idleTimeout bounds a single read. Viewers can be quiet for a long
	// time; stale presence is handled by the room's inactivity sweep, not
	// by killing the socket.
	idleTimeout = 5 * time.Minute

	writeTimeout = 3 * time.Second
)

// Handler upgrades to a websocket and runs the session: join handshake,
// reader loop feeding the board room, writer goroutine draining the room's
// fan-out. One handler invocation is one Session (boardID, userID, socketID).
func Handler(h *hub.Hub, log *zap.Logger, m *metrics.Metrics) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		m.SocketOpened()
		defer m.SocketClosed()

		socketID := uuid.NewString()
		log := log.With(zap.String("socket_id", socketID))

		join, ok := awaitJoin(r, conn, log)
		if !ok {
			return
		}

		out := make(chan types.ServerMessage, 16)
		rm := h.Join(join.BoardID, socketID, *join.User, out)
		defer h.Leave(join.BoardID, socketID)

		log = log.With(zap.String("board_id", join.BoardID), zap.String("user_id", join.User.ID))
		log.Info("socket joined board")

		// Writer goroutine: drains the room's fan-out until the outbox
		// closes (room shutdown or this socket dropped as slow), then
		// closes the conn to unblock the reader.
		go func() {
			for msg := range out {
				payload, _ := json.Marshal(msg)
				ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
			conn.Close(websocket.StatusNormalClosure, "room closed")
		}()

		readLoop(r, conn, rm, socketID, join.BoardID, log)
	}
}

// awaitJoin reads frames until the client sends join-board. register-user is
// accepted here because clients may register for private notifications
// before joining any board; it carries no board state, so it is a no-op for
// the sync core.
func awaitJoin(r *http.Request, conn *websocket.Conn, log *zap.Logger) (types.ClientMessage, bool) {
	deadline := time.Now().Add(joinTimeout)
	for time.Now().Before(deadline) {
		ctx, cancel := context.WithDeadline(r.Context(), deadline)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			return types.ClientMessage{}, false
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			writeError(r, conn, "bad json")
			continue
		}

		switch cm.Type {
		case types.MsgJoinBoard:
			if cm.BoardID == "" || cm.User == nil || cm.User.ID == "" {
				writeError(r, conn, "join-board requires boardId and user")
				continue
			}
			return cm, true
		case types.MsgRegisterUser:
			log.Debug("register-user before join", zap.String("user_id", cm.UserID))
		default:
			writeError(r, conn, "join required")
		}
	}
	return types.ClientMessage{}, false
}

func readLoop(r *http.Request, conn *websocket.Conn, rm *room.Room, socketID, boardID string, log *zap.Logger) {
	for {
		ctx, cancel := context.WithTimeout(r.Context(), idleTimeout)
		_, data, err := conn.Read(ctx)
		cancel()
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			// Otherwise, just exit (hub.Leave in defer):
			return
		}

		var cm types.ClientMessage
		if err := json.Unmarshal(data, &cm); err != nil {
			// Malformed frames never crash the handler.
			log.Debug("dropping malformed frame", zap.Error(err))
			writeError(r, conn, "bad json")
			continue
		}

		switch cm.Type {
		case types.MsgCursorMove:
			if cm.User == nil || cm.User.ID == "" {
				continue
			}
			rm.Inbox() <- room.CursorMove{User: *cm.User, X: cm.X, Y: cm.Y}

		case types.MsgElementUpdate:
			if cm.Element == nil || cm.Element.ID == "" {
				writeError(r, conn, "element_update requires element")
				continue
			}
			switch cm.Action {
			case types.ActionCreate, types.ActionUpdate, types.ActionDelete:
			default:
				writeError(r, conn, "unknown action")
				continue
			}
			el := *cm.Element
			el.BoardID = boardID
			rm.Inbox() <- room.Mutation{
				SocketID: socketID,
				Event: types.MutationEvent{
					UserID:  cm.UserID,
					BoardID: boardID,
					Action:  cm.Action,
					Element: el,
				},
			}

		case types.MsgRegisterUser:
			// Private notification rooms live outside the sync core.
			log.Debug("register-user", zap.String("user_id", cm.UserID))

		default:
			writeError(r, conn, "unknown type")
		}
	}
}

func writeError(r *http.Request, conn *websocket.Conn, msg string) {
	payload, _ := json.Marshal(types.ServerMessage{Type: types.MsgError, Error: msg})
	ctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
	_ = conn.Write(ctx, websocket.MessageText, payload)
	cancel()
}
