package net

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/pageload"
	"ColoringBoard/internal/state"
)

func boxDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	for i := 8; i < 56; i++ {
		for _, p := range []image.Point{{i, 8}, {i, 55}, {8, i}, {55, i}} {
			img.Set(p.X, p.Y, color.NRGBA{A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testServer(t *testing.T) (*HTTPServer, *httptest.Server) {
	t.Helper()
	catalog := state.NewCatalog("", []state.Category{{
		ID:    "shapes",
		Title: "Shapes",
		Pages: []state.Page{
			{ID: "shapes/box", Title: "Box", Image: boxDataURI(t)},
			{ID: "shapes/broken", Title: "Broken", Image: "missing.png"},
		},
	}})
	favs, err := state.NewFavorites(&state.MemoryStore{})
	require.NoError(t, err)

	opts := editor.DefaultOptions()
	opts.PageWidth, opts.PageHeight = 64, 64
	opts.DoodleWidth, opts.DoodleHeight = 80, 60
	opts.FitRatio = 1
	opts.Seed = 3

	srv := NewHTTPServer("127.0.0.1:0", catalog, favs, pageload.New(t.TempDir()), opts)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	return resp.StatusCode
}

func TestCatalogAPI(t *testing.T) {
	_, ts := testServer(t)
	var cat catalogResponse
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/v1/catalog", &cat))
	require.Len(t, cat.Categories, 1)
	assert.Len(t, cat.Categories[0].Pages, 2)
	assert.Empty(t, cat.Favorites)
}

func TestFavoritesAPI(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/favorites/shapes/box", "", nil)
	require.NoError(t, err)
	var toggled toggleResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&toggled))
	resp.Body.Close()
	assert.Equal(t, toggleResponse{ID: "shapes/box", Favorite: true}, toggled)

	var favs favoritesResponse
	getJSON(t, ts.URL+"/api/v1/favorites", &favs)
	assert.Equal(t, []string{"shapes/box"}, favs.Favorites)

	resp, err = http.Post(ts.URL+"/api/v1/favorites/nope", "", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestThumbnailAPI(t *testing.T) {
	_, ts := testServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/pages/shapes/box/thumbnail")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	img, err := png.Decode(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	for path, want := range map[string]int{
		"/api/v1/pages/unknown/thumbnail":       http.StatusNotFound,
		"/api/v1/pages/shapes/box":              http.StatusNotFound,
		"/api/v1/pages/shapes/broken/thumbnail": http.StatusBadGateway,
	} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, want, resp.StatusCode, path)
	}
}

func TestStaticClient(t *testing.T) {
	_, ts := testServer(t)
	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.Contains(t, body.String(), "ColoringBoard")
}

type wsClient struct {
	t  *testing.T
	ws *websocket.Conn
}

func dial(t *testing.T, ts *httptest.Server, page string) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?page=" + page
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return &wsClient{t: t, ws: ws}
}

func (c *wsClient) send(m Message) {
	require.NoError(c.t, c.ws.WriteJSON(m))
}

// next returns the next JSON reply of the given type, or the next frame for
// typ "frame", skipping everything else.
func (c *wsClient) next(typ string) (Reply, []byte) {
	c.t.Helper()
	_ = c.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		kind, data, err := c.ws.ReadMessage()
		require.NoError(c.t, err)
		if kind == websocket.BinaryMessage {
			if typ == "frame" {
				return Reply{Type: "frame"}, data
			}
			continue
		}
		var r Reply
		require.NoError(c.t, json.Unmarshal(data, &r))
		if r.Type == typ {
			return r, nil
		}
	}
}

func TestWebsocketColoringSession(t *testing.T) {
	srv, ts := testServer(t)
	c := dial(t, ts, "shapes/box")

	_, frame := c.next("frame")
	img, err := png.Decode(bytes.NewReader(frame))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 64), img.Bounds())
	assert.Equal(t, 1, srv.Peers().Len())

	c.send(Message{Type: "color", Value: "#FF0000"})
	c.send(Message{Type: "pointer", Phase: "down", ID: 1, X: 32, Y: 32})
	c.send(Message{Type: "pointer", Phase: "up", ID: 1, X: 32, Y: 32})

	// The sound arrives from its own goroutine, so its position relative to
	// the state and frame is not fixed.
	var sound string
	var after *editor.State
	var frame2 []byte
	_ = c.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	for sound == "" || frame2 == nil {
		kind, data, err := c.ws.ReadMessage()
		require.NoError(t, err)
		if kind == websocket.BinaryMessage {
			if after != nil {
				frame2 = data
			}
			continue
		}
		var r Reply
		require.NoError(t, json.Unmarshal(data, &r))
		switch {
		case r.Type == "sound":
			sound = r.Name
		case r.Type == "state" && r.State.CanUndo:
			after = r.State
		}
	}
	assert.Equal(t, "fill", sound)
	assert.Equal(t, "#FF0000", after.Color)

	img, err = png.Decode(bytes.NewReader(frame2))
	require.NoError(t, err)
	r, g, _, _ := img.At(32, 32).RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Zero(t, g)

	c.send(Message{Type: "export"})
	file, _ := c.next("file")
	assert.Equal(t, "box-colored.png", file.Name)
	assert.Equal(t, "image/png", file.Mime)
	data, err := base64.StdEncoding.DecodeString(file.Data)
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	c.send(Message{Type: "bogus"})
	e, _ := c.next("error")
	assert.Contains(t, e.Message, "bogus")
}

func TestWebsocketPeerLimit(t *testing.T) {
	srv, ts := testServer(t)
	srv.SetMaxPeers(1)

	first := dial(t, ts, "shapes/box")
	first.next("state")
	require.Equal(t, 1, srv.Peers().Len())

	second := dial(t, ts, "shapes/box")
	_ = second.ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := second.ws.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseTryAgainLater), "got %v", err)
	assert.Equal(t, 1, srv.Peers().Len())

	first.ws.Close()
	require.Eventually(t, func() bool { return srv.Peers().Len() == 0 }, 5*time.Second, 10*time.Millisecond)

	third := dial(t, ts, "shapes/box")
	third.next("state")
	assert.Equal(t, 1, srv.Peers().Len())
}

func TestWebsocketDoodleAndFailedLoad(t *testing.T) {
	_, ts := testServer(t)

	c := dial(t, ts, "")
	st, _ := c.next("state")
	assert.Equal(t, "doodle", st.State.Mode)
	assert.Equal(t, "pen", st.State.Tool)

	c.send(Message{Type: "shape", Value: "geometric"})
	c.send(Message{Type: "rotate"})
	c.send(Message{Type: "print"})
	file, _ := c.next("file")
	assert.Equal(t, "application/pdf", file.Mime)
	assert.True(t, strings.HasSuffix(file.Name, ".pdf"))

	c.send(Message{Type: "load", Page: "shapes/broken"})
	e, _ := c.next("error")
	assert.Contains(t, e.Message, "Broken")
	for {
		st, _ = c.next("state")
		if !st.State.Loading {
			break
		}
	}
	assert.False(t, st.State.Ready)
	assert.NotEmpty(t, st.State.Error)

	c.send(Message{Type: "export"})
	e, _ = c.next("error")
	assert.Equal(t, "nothing to save yet", e.Message)
}

func TestStartStop(t *testing.T) {
	srv, _ := testServer(t)
	require.NoError(t, srv.Start(t.Context()))
	addr := srv.ListenAddr()
	require.NotEmpty(t, addr)

	share, err := srv.ShareURL()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(share, "http://127.0.0.1:"))

	resp, err := http.Get("http://" + addr + "/api/v1/status")
	require.NoError(t, err)
	var status statusResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	resp.Body.Close()
	assert.Equal(t, 2, status.Pages)

	resp, err = http.Get("http://" + addr + "/api/v1/qrcode")
	require.NoError(t, err)
	_, err = png.Decode(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	require.NoError(t, srv.Stop())
	require.NoError(t, srv.Stop())
	assert.Error(t, srv.Start(t.Context()))
}

func TestShareURL(t *testing.T) {
	u, err := ShareURL("192.168.1.20:8080")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8080/", u)

	u, err = ShareURL(":8080")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u, ":8080/"))

	_, err = ShareURL("nonsense")
	assert.Error(t, err)
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("http://192.168.1.20:8080/", 128)
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	img, err = QRCode("", 0)
	assert.NoError(t, err)
	assert.Nil(t, img)
}
