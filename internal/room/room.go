package room

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"

	"github.com/Madhu0614/Ai-task-hub-madhu/internal/metrics"
	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

// DefaultPresenceTTL is how long a cursor entry survives without a fresh
// sample. It covers the case where the disconnect event itself is lost, so
// presence never shows a permanently-stuck ghost cursor.
const DefaultPresenceTTL = 10 * time.Second

type Msg interface{ isRoomMsg() }

// Join registers a socket in the room. The room immediately sends the full
// current presence set to the joiner's outbox and rebroadcasts to everyone
// else.
type Join struct {
	SocketID string
	User     types.User
	Outbox   chan types.ServerMessage
}

type Leave struct{ SocketID string }

// CursorMove overwrites the single presence entry for the user. The room
// rebroadcasts the full set, not a delta: full-state relays self-heal after
// any dropped message.
type CursorMove struct {
	User types.User
	X    float64
	Y    float64
}

// Mutation is a document-mutation event to fan out. The sender socket is
// excluded; it already applied the change optimistically.
type Mutation struct {
	SocketID string
	Event    types.MutationEvent
}

type GetState struct {
	Reply chan View
}

type Shutdown struct{}

// presenceExpired is fed back into the inbox by the ttl cache when an entry
// goes stale without an explicit leave.
type presenceExpired struct{ userID string }

func (Join) isRoomMsg()            {}
func (Leave) isRoomMsg()           {}
func (CursorMove) isRoomMsg()      {}
func (Mutation) isRoomMsg()        {}
func (GetState) isRoomMsg()        {}
func (Shutdown) isRoomMsg()        {}
func (presenceExpired) isRoomMsg() {}

// View is a race-free reflection of room internals for tests and admin
// handlers.
type View struct {
	BoardID    string
	NumMembers int
	Cursors    []types.CursorSample
}

type member struct {
	userID string
	outbox chan types.ServerMessage
}

type Options struct {
	PresenceTTL time.Duration
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
}

// Room owns all mutable state for one board: the member set and the presence
// table. Everything flows through the inbox, so no locks are needed.
type Room struct {
	boardID string
	inbox   chan Msg
	members map[string]member
	cursors *ttlcache.Cache[string, types.CursorSample]
	opts    Options
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(parent context.Context, boardID string, opts Options) *Room {
	if opts.PresenceTTL <= 0 {
		opts.PresenceTTL = DefaultPresenceTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		boardID: boardID,
		inbox:   make(chan Msg, 64),
		members: make(map[string]member),
		cursors: ttlcache.New[string, types.CursorSample](
			ttlcache.WithTTL[string, types.CursorSample](opts.PresenceTTL),
			ttlcache.WithDisableTouchOnHit[string, types.CursorSample](),
		),
		opts:   opts,
		log:    opts.Logger.With(zap.String("board_id", boardID)),
		ctx:    ctx,
		cancel: cancel,
	}

	r.cursors.OnEviction(func(_ context.Context, reason ttlcache.EvictionReason, item *ttlcache.Item[string, types.CursorSample]) {
		if reason != ttlcache.EvictionReasonExpired {
			return
		}
		select {
		case r.inbox <- presenceExpired{userID: item.Key()}:
		case <-r.ctx.Done():
		}
	})
	go r.cursors.Start()

	opts.Metrics.RoomOpened()
	go r.loop()
	return r
}

func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) BoardID() string { return r.boardID }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.members[msg.SocketID] = member{userID: msg.User.ID, outbox: msg.Outbox}
				r.setPresence(types.CursorSample{
					User:       msg.User,
					BoardID:    r.boardID,
					LastUpdate: time.Now(),
				})
				r.broadcastCursors()

			case Leave:
				r.removeMember(msg.SocketID)
				r.broadcastCursors()

			case CursorMove:
				r.setPresence(types.CursorSample{
					User:       msg.User,
					BoardID:    r.boardID,
					X:          msg.X,
					Y:          msg.Y,
					LastUpdate: time.Now(),
				})
				r.broadcastCursors()

			case Mutation:
				r.relay(msg)

			case presenceExpired:
				// The cache already dropped the entry; tell the room.
				r.opts.Metrics.PresenceRemoved()
				r.log.Debug("presence entry expired", zap.String("user_id", msg.userID))
				r.broadcastCursors()

			case GetState:
				msg.Reply <- View{
					BoardID:    r.boardID,
					NumMembers: len(r.members),
					Cursors:    r.presenceSet(),
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) setPresence(s types.CursorSample) {
	if !r.cursors.Has(s.User.ID) {
		r.opts.Metrics.PresenceAdded()
	}
	r.cursors.Set(s.User.ID, s, ttlcache.DefaultTTL)
}

func (r *Room) deletePresence(userID string) {
	if r.cursors.Has(userID) {
		r.opts.Metrics.PresenceRemoved()
	}
	r.cursors.Delete(userID)
}

// removeMember drops a socket, closing its outbox so the connection's writer
// goroutine unblocks, and if it was that user's last socket in the room their
// presence entry goes with it.
func (r *Room) removeMember(socketID string) {
	m, ok := r.members[socketID]
	if !ok {
		return
	}
	delete(r.members, socketID)
	close(m.outbox)
	for _, other := range r.members {
		if other.userID == m.userID {
			return
		}
	}
	r.deletePresence(m.userID)
}

func (r *Room) presenceSet() []types.CursorSample {
	items := r.cursors.Items()
	set := make([]types.CursorSample, 0, len(items))
	for _, item := range items {
		set = append(set, item.Value())
	}
	slices.SortFunc(set, func(a, b types.CursorSample) int {
		return strings.Compare(a.User.ID, b.User.ID)
	})
	return set
}

func (r *Room) broadcastCursors() {
	msg := types.ServerMessage{
		Type:    types.MsgCursorsUpdate,
		BoardID: r.boardID,
		Cursors: r.presenceSet(),
	}
	r.opts.Metrics.RelayedMessage(types.MsgCursorsUpdate)
	for id, m := range r.members {
		r.send(id, m, msg)
	}
}

func (r *Room) relay(mut Mutation) {
	el := mut.Event.Element
	msg := types.ServerMessage{
		Type:    types.MsgElementUpdate,
		BoardID: r.boardID,
		UserID:  mut.Event.UserID,
		Action:  mut.Event.Action,
		Element: &el,
	}
	r.opts.Metrics.RelayedMessage(types.MsgElementUpdate)
	for id, m := range r.members {
		if id == mut.SocketID {
			continue
		}
		r.send(id, m, msg)
	}
}

func (r *Room) send(socketID string, m member, msg types.ServerMessage) {
	select {
	case m.outbox <- msg:
	default:
		// Member is slow/full - drop them.
		r.log.Warn("dropping slow member", zap.String("socket_id", socketID))
		r.removeMember(socketID)
	}
}

func (r *Room) shutdown() {
	for id := range r.members {
		r.removeMember(id)
	}
	for range r.cursors.Items() {
		r.opts.Metrics.PresenceRemoved()
	}
	r.cursors.Stop()
	r.opts.Metrics.RoomClosed()
	r.cancel()
}
