package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/Madhu0614/Ai-task-hub-madhu/pkg/types"
)

// ConnectionState drives UI and gates whether outbound sends are attempted.
type ConnectionState string

const (
	StateConnecting ConnectionState = "connecting"
	StateOpen       ConnectionState = "open"
	StateClosed     ConnectionState = "closed"
	StateError      ConnectionState = "error"
)

var ErrNotOpen = errors.New("socket not open")

// PersistenceBridge is the durable store consulted on load and written on
// every mutation, independent of the realtime path.
type PersistenceBridge interface {
	LoadElements(ctx context.Context, boardID string) ([]types.ElementSnapshot, error)
	SaveElement(ctx context.Context, el types.ElementSnapshot, isUpdate bool) error
}

// ElementDeleter is an optional upgrade for bridges that can delete rows.
// Bridges without it simply leave deleted elements in the durable store
// until the next full save.
type ElementDeleter interface {
	DeleteElement(ctx context.Context, id string) error
}

type Config struct {
	// Endpoint is the websocket URL, externally injected.
	Endpoint string
	BoardID  string
	User     types.User

	// Bridge may be nil; the client then skips the bootstrap load and
	// durable writes.
	Bridge PersistenceBridge
	Logger *zap.Logger

	// CursorInterval overrides the trailing-throttle window.
	CursorInterval time.Duration

	// Callbacks run on the socket read goroutine; keep them fast.
	OnStateChange   func(ConnectionState)
	OnCursors       func([]types.CursorSample)
	OnElementUpdate func(types.MutationEvent)
	OnError         func(error)
}

// Client owns exactly one live connection per (board, user): dials, joins,
// reconnects with capped exponential backoff, translates intents into wire
// messages and inbound frames into typed callbacks.
type Client struct {
	cfg      Config
	log      *zap.Logger
	doc      *Document
	throttle *cursorThrottle

	mu    sync.Mutex
	conn  *websocket.Conn
	state ConnectionState

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Dial bootstraps the document from the bridge, then starts the connection
// loop. Connection failures are not fatal: they surface as StateError via
// OnStateChange/OnError and the loop keeps retrying until Close.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.BoardID == "" || cfg.User.ID == "" {
		return nil, errors.New("client: endpoint, board id and user id are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var initial []types.ElementSnapshot
	if cfg.Bridge != nil {
		els, err := cfg.Bridge.LoadElements(ctx, cfg.BoardID)
		if err != nil {
			return nil, fmt.Errorf("bootstrap load: %w", err)
		}
		initial = els
	}

	cctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	c := &Client{
		cfg:    cfg,
		log:    cfg.Logger.With(zap.String("board_id", cfg.BoardID)),
		doc:    NewDocument(initial),
		state:  StateConnecting,
		ctx:    cctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	c.throttle = newCursorThrottle(cfg.CursorInterval, c.sendCursorNow)

	go c.run()
	return c, nil
}

func (c *Client) run() {
	defer close(c.done)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxInterval = 15 * time.Second
	bo.MaxElapsedTime = 0 // retry until Close

	for {
		c.setState(StateConnecting)

		conn, _, err := websocket.Dial(c.ctx, c.cfg.Endpoint, nil)
		if err != nil {
			if c.ctx.Err() != nil {
				c.setState(StateClosed)
				return
			}
			c.setState(StateError)
			c.report(fmt.Errorf("dial: %w", err))
			if !c.sleep(bo.NextBackOff()) {
				c.setState(StateClosed)
				return
			}
			continue
		}

		// Resume is just re-joining; the server's full-state presence
		// relay makes a late (re)joiner whole without any delta replay.
		if err := c.join(conn); err != nil {
			conn.Close(websocket.StatusInternalError, "join failed")
			c.setState(StateError)
			c.report(err)
			if !c.sleep(bo.NextBackOff()) {
				c.setState(StateClosed)
				return
			}
			continue
		}

		c.setConn(conn)
		c.setState(StateOpen)
		bo.Reset()

		c.readLoop(conn)
		c.setConn(nil)

		if c.ctx.Err() != nil {
			c.setState(StateClosed)
			return
		}
		c.setState(StateError)
		if !c.sleep(bo.NextBackOff()) {
			c.setState(StateClosed)
			return
		}
	}
}

func (c *Client) join(conn *websocket.Conn) error {
	msg := types.ClientMessage{
		Type:    types.MsgJoinBoard,
		BoardID: c.cfg.BoardID,
		User:    &c.cfg.User,
	}
	payload, _ := json.Marshal(msg)
	ctx, cancel := context.WithTimeout(c.ctx, 3*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(c.ctx)
		if err != nil {
			return
		}

		var sm types.ServerMessage
		if err := json.Unmarshal(data, &sm); err != nil {
			// Parse failures are swallowed, never crash the handler.
			c.log.Debug("dropping malformed frame", zap.Error(err))
			continue
		}

		switch sm.Type {
		case types.MsgCursorsUpdate:
			if c.cfg.OnCursors != nil {
				c.cfg.OnCursors(sm.Cursors)
			}

		case types.MsgElementUpdate:
			if sm.Element == nil {
				continue
			}
			ev := types.MutationEvent{
				UserID:  sm.UserID,
				BoardID: sm.BoardID,
				Action:  sm.Action,
				Element: *sm.Element,
			}
			c.doc.Apply(ev)
			if c.cfg.OnElementUpdate != nil {
				c.cfg.OnElementUpdate(ev)
			}

		case types.MsgError:
			c.report(fmt.Errorf("server: %s", sm.Error))
		}
	}
}

// SendCursor queues a throttled cursor sample. Samples sent while the socket
// is not open are dropped, never queued; cursor loss is acceptable.
func (c *Client) SendCursor(x, y float64) {
	if c.State() != StateOpen {
		return
	}
	c.throttle.sample(x, y)
}

func (c *Client) sendCursorNow(x, y float64) {
	msg := types.ClientMessage{
		Type:    types.MsgCursorMove,
		BoardID: c.cfg.BoardID,
		User:    &c.cfg.User,
		X:       x,
		Y:       y,
	}
	_ = c.writeMsg(msg)
}

// SendElementUpdate applies the mutation optimistically, broadcasts it, and
// independently writes it to the bridge. Every mutation is significant, so
// unlike cursors it is never throttled. A failed durable write is reported
// through OnError but the broadcast is not rolled back; a reload reconciles
// against the store.
func (c *Client) SendElementUpdate(el types.ElementSnapshot, action types.Action) {
	el.BoardID = c.cfg.BoardID
	el.UpdatedAt = time.Now()

	ev := types.MutationEvent{
		UserID:  c.cfg.User.ID,
		BoardID: c.cfg.BoardID,
		Action:  action,
		Element: el,
	}
	c.doc.Apply(ev)

	if err := c.writeMsg(types.ClientMessage{
		Type:    types.MsgElementUpdate,
		BoardID: c.cfg.BoardID,
		UserID:  c.cfg.User.ID,
		Action:  action,
		Element: &el,
	}); err != nil {
		c.log.Debug("broadcast skipped", zap.Error(err))
	}

	if c.cfg.Bridge == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		var err error
		if action == types.ActionDelete {
			if d, ok := c.cfg.Bridge.(ElementDeleter); ok {
				err = d.DeleteElement(ctx, el.ID)
			}
		} else {
			err = c.cfg.Bridge.SaveElement(ctx, el, action == types.ActionUpdate)
		}
		if err != nil {
			c.report(fmt.Errorf("save element %s: %w", el.ID, err))
		}
	}()
}

// Elements returns the reconciled local collection.
func (c *Client) Elements() []types.ElementSnapshot {
	return c.doc.Elements()
}

func (c *Client) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Close tears the session down: the throttle timer is cancelled before the
// socket closes, so no in-flight cursor sample fires after teardown. Nothing
// buffered is flushed first.
func (c *Client) Close() {
	c.cancel()
	c.throttle.stop()

	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()
	if conn != nil {
		conn.Close(websocket.StatusNormalClosure, "bye")
	}

	<-c.done
}

func (c *Client) writeMsg(msg types.ClientMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateOpen || c.conn == nil {
		return ErrNotOpen
	}
	ctx, cancel := context.WithTimeout(c.ctx, 3*time.Second)
	defer cancel()
	return c.conn.Write(ctx, websocket.MessageText, payload)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
}

func (c *Client) setState(s ConnectionState) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed && c.cfg.OnStateChange != nil {
		c.cfg.OnStateChange(s)
	}
}

func (c *Client) report(err error) {
	if c.cfg.OnError != nil {
		c.cfg.OnError(err)
	}
}

func (c *Client) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-c.ctx.Done():
		return false
	}
}
