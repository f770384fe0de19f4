package net

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/shape"
	"ColoringBoard/internal/state"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 64 << 10
)

// Message is a client to server websocket message.
type Message struct {
	Type  string  `json:"type"`
	Phase string  `json:"phase,omitempty"`
	ID    int     `json:"id,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	W     float64 `json:"w,omitempty"`
	H     float64 `json:"h,omitempty"`
	Delta float64 `json:"delta,omitempty"`
	Size  float64 `json:"size,omitempty"`
	Value string  `json:"value,omitempty"`
	Page  string  `json:"page,omitempty"`
}

// Reply is a server to client JSON message. Rendered frames go out as
// binary PNG messages instead.
type Reply struct {
	Type    string        `json:"type"`
	State   *editor.State `json:"state,omitempty"`
	Name    string        `json:"name,omitempty"`
	Mime    string        `json:"mime,omitempty"`
	Data    string        `json:"data,omitempty"`
	Message string        `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 64 << 10,
}

// conn is one websocket editor session. Messages are handled in order on
// the reader goroutine; writes are serialized by mu.
type conn struct {
	ws      *websocket.Conn
	session *editor.Session
	remote  string
	log     *slog.Logger

	mu      sync.Mutex
	sentRev uint64
	frames  bool
	closed  bool
	pageID  string
}

func (c *conn) peer() Peer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Peer{SessionID: c.session.ID, Remote: c.remote, PageID: c.pageID}
}

func (c *conn) write(kind int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteMessage(kind, data)
}

func (c *conn) send(r Reply) {
	data, err := json.Marshal(r)
	if err != nil {
		c.log.Error("encode reply", "err", err)
		return
	}
	if err := c.write(websocket.TextMessage, data); err != nil {
		c.log.Debug("write reply", "type", r.Type, "err", err)
	}
}

func (c *conn) sendError(err error) {
	c.send(Reply{Type: "error", Message: err.Error()})
}

func (c *conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
		time.Now().Add(time.Second))
	_ = c.ws.Close()
}

// flush sends the state and, when the content changed since the last
// frame, a new PNG frame.
func (c *conn) flush() {
	st := c.session.State()
	c.mu.Lock()
	c.pageID = st.PageID
	c.mu.Unlock()
	c.send(Reply{Type: "state", State: &st})
	if !st.Ready || (c.frames && st.Revision == c.sentRev) {
		return
	}
	var buf bytes.Buffer
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(&buf, c.session.Composite()); err != nil {
		c.log.Error("encode frame", "err", err)
		return
	}
	if err := c.write(websocket.BinaryMessage, buf.Bytes()); err != nil {
		c.log.Debug("write frame", "err", err)
		return
	}
	c.frames = true
	c.sentRev = st.Revision
}

func (s *HTTPServer) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.log.Debug("websocket upgrade", "err", err)
		return
	}

	c := &conn{ws: ws, remote: r.RemoteAddr}
	c.session = editor.New(s.Editor, editor.SoundFunc(func(name string) error {
		c.send(Reply{Type: "sound", Name: name})
		return nil
	}))
	c.log = s.log.With("session", c.session.ID[:8], "remote", c.remote)

	if err := s.peers.add(c); err != nil {
		c.log.Warn("session refused", "err", err)
		_ = ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()),
			time.Now().Add(writeWait))
		_ = ws.Close()
		return
	}
	c.log.Info("session opened", "peers", s.peers.Len())
	defer func() {
		s.peers.remove(c)
		c.close()
		c.log.Info("session closed", "peers", s.peers.Len())
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go c.keepalive(ctx)

	pageID := r.URL.Query().Get("page")
	if pageID == "" {
		pageID = state.BlankPageID
	}
	s.load(ctx, c, pageID)
	c.flush()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		var msg Message
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("read", "err", err)
			}
			return
		}
		if err := s.dispatch(ctx, c, msg); err != nil {
			c.sendError(err)
		}
		c.flush()
	}
}

func (c *conn) keepalive(ctx context.Context) {
	t := time.NewTicker(pingPeriod)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.mu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

// load switches the session to pageID. Failures leave the session not
// ready and are reported to the client.
func (s *HTTPServer) load(ctx context.Context, c *conn, pageID string) {
	page, err := s.Catalog.Page(pageID)
	if err != nil {
		c.session.BeginLoad(state.Page{ID: pageID})
		c.session.FailLoad(err)
		c.sendError(err)
		return
	}
	if page.Blank() {
		c.session.LoadBlank(shape.Organic)
		return
	}
	c.session.BeginLoad(page)
	c.flush()
	img, err := s.Loader.Load(ctx, page.Image)
	if err != nil {
		c.session.FailLoad(err)
		c.sendError(fmt.Errorf("could not load %s", page.Title))
		return
	}
	if err := c.session.LoadPage(page, img); err != nil {
		c.sendError(err)
	}
}

func (s *HTTPServer) dispatch(ctx context.Context, c *conn, m Message) error {
	ses := c.session
	switch m.Type {
	case "pointer":
		switch m.Phase {
		case "down":
			ses.PointerDown(m.ID, m.X, m.Y)
		case "move":
			ses.PointerMove(m.ID, m.X, m.Y)
		case "up":
			ses.PointerUp(m.ID, m.X, m.Y)
		case "cancel":
			ses.PointerCancel()
		default:
			return fmt.Errorf("unknown pointer phase %q", m.Phase)
		}
	case "wheel":
		ses.Wheel(m.Delta, m.X, m.Y)
	case "resize":
		ses.Resize(m.W, m.H)
	case "tool":
		t, err := editor.ParseTool(m.Value)
		if err != nil {
			return err
		}
		ses.SetTool(t)
	case "color":
		return ses.SetColor(m.Value)
	case "size":
		ses.SetBrushSize(m.Size)
	case "undo":
		ses.Undo()
	case "redo":
		ses.Redo()
	case "clear":
		ses.Clear()
	case "shape":
		kind, err := shape.ParseKind(m.Value)
		if err != nil {
			return err
		}
		if ses.Page().Blank() && !ses.Ready() {
			ses.LoadBlank(kind)
			return nil
		}
		return ses.NewShape(kind)
	case "rotate":
		ses.RotateShape()
	case "flip":
		ses.FlipShape()
	case "reset_view":
		ses.ResetView()
	case "load":
		s.load(ctx, c, m.Page)
	case "export":
		return c.sendFile(ses.ExportPNG, "image/png")
	case "print":
		return c.sendFile(ses.Print, "application/pdf")
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

func (c *conn) sendFile(render func(w io.Writer) (string, error), mime string) error {
	var buf bytes.Buffer
	name, err := render(&buf)
	if errors.Is(err, editor.ErrNotReady) {
		return errors.New("nothing to save yet")
	}
	if err != nil {
		return err
	}
	c.send(Reply{Type: "file", Name: name, Mime: mime, Data: base64.StdEncoding.EncodeToString(buf.Bytes())})
	return nil
}
