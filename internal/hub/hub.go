package hub

import (
	"context"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/room"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

type HubMsg interface{ isHubMsg() }

// JoinBoard subscribes a socket to a board, creating the room on first join.
// The hub owns room lifecycle: it counts sockets per board and tears the
// room down when the last one leaves, so a join can never land in a room
// that is being shut down.
type JoinBoard struct {
	BoardID  string
	SocketID string
	User     types.User
	Outbox   chan types.ServerMessage
	Reply    chan *room.Room
}

type LeaveBoard struct {
	BoardID  string
	SocketID string
}

type GetRoom struct {
	BoardID string
	Reply   chan *room.Room
}

type ShutdownHub struct{}

func (JoinBoard) isHubMsg()   {}
func (LeaveBoard) isHubMsg()  {}
func (GetRoom) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

// Hub is the registry of live board rooms. It owns the boardID -> room map
// and the per-board socket counts; all access goes through the inbox so
// connection handlers never share them directly.
type Hub struct {
	inbox    chan HubMsg
	rooms    map[string]*room.Room
	sockets  map[string]int
	roomOpts room.Options
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewHub(parent context.Context, roomOpts room.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		rooms:    make(map[string]*room.Room),
		sockets:  make(map[string]int),
		roomOpts: roomOpts,
		ctx:      ctx,
		cancel:   cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Join is a convenience wrapper around the JoinBoard message.
func (h *Hub) Join(boardID, socketID string, user types.User, outbox chan types.ServerMessage) *room.Room {
	reply := make(chan *room.Room, 1)
	h.inbox <- JoinBoard{BoardID: boardID, SocketID: socketID, User: user, Outbox: outbox, Reply: reply}
	return <-reply
}

// Leave is a convenience wrapper around the LeaveBoard message.
func (h *Hub) Leave(boardID, socketID string) {
	h.inbox <- LeaveBoard{BoardID: boardID, SocketID: socketID}
}

// Get returns the live room for a board, or nil.
func (h *Hub) Get(boardID string) *room.Room {
	reply := make(chan *room.Room, 1)
	h.inbox <- GetRoom{BoardID: boardID, Reply: reply}
	return <-reply
}

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case JoinBoard:
				r := h.rooms[msg.BoardID]
				if r == nil {
					r = room.New(h.ctx, msg.BoardID, h.roomOpts)
					h.rooms[msg.BoardID] = r
				}
				h.sockets[msg.BoardID]++
				r.Inbox() <- room.Join{SocketID: msg.SocketID, User: msg.User, Outbox: msg.Outbox}
				msg.Reply <- r

			case LeaveBoard:
				r := h.rooms[msg.BoardID]
				if r == nil {
					break
				}
				r.Inbox() <- room.Leave{SocketID: msg.SocketID}
				h.sockets[msg.BoardID]--
				if h.sockets[msg.BoardID] <= 0 {
					delete(h.sockets, msg.BoardID)
					delete(h.rooms, msg.BoardID)
					r.Inbox() <- room.Shutdown{}
				}

			case GetRoom:
				msg.Reply <- h.rooms[msg.BoardID] // May be nil

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, r := range h.rooms {
		r.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	clear(h.sockets)
	h.cancel()
}
