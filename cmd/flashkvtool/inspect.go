package main

import (
	"errors"
	"flag"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/browser"
	"github.com/valyala/fasttemplate"

	"flashkv/internal/lrucache"
	"flashkv/internal/ratelimit"
	"flashkv/store"
	"flashkv/utils/config"
)

// inspector is the HTTP/WebSocket console bound to one flashkvtool
// session. It caches read payloads with an LRU keyed by record id, and
// fans out a lightweight "the log changed" notice to every connected
// tail client, debounced so a burst of writes only triggers one push.
type inspector struct {
	sess   *session
	cache  *lrucache.Cache[uint64, []byte]
	writes *ratelimit.Bucket

	tailMu  sync.Mutex
	tailers map[string]*websocket.Conn

	notify func(f func())
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func runInspect(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	image := fs.String("image", "flashkv.img", "disk image path")
	listen := fs.String("listen", cfg.Inspector.ListenAddr, "HTTP listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sess, err := openSession(cfg, *image)
	if err != nil {
		return err
	}

	insp := &inspector{
		sess:    sess,
		cache:   lrucache.New[uint64, []byte](cfg.Store.CacheCapacity),
		writes:  ratelimit.New(20, time.Second, 4),
		tailers: make(map[string]*websocket.Conn),
	}
	insp.notify = debounce.New(150 * time.Millisecond)

	e := echo.New()
	e.HideBanner = true
	e.GET("/", insp.handleIndex)
	e.GET("/records", insp.handleListRecords)
	e.POST("/records", insp.handleWriteRecord)
	e.GET("/records/:id", insp.handleReadRecord)
	e.GET("/cursor", insp.handleCursor)
	e.GET("/ws/tail", insp.handleTail)

	logger.Info("inspector listening", "addr", *listen)
	if cfg.Inspector.AutoOpenBrowser {
		go func() {
			time.Sleep(200 * time.Millisecond)
			_ = browser.OpenURL("http://" + *listen + "/")
		}()
	}
	return e.Start(*listen)
}

const indexTemplate = `<!doctype html>
<html><head><title>flashkv inspector</title></head>
<body>
<h1>flashkv - {{image}}</h1>
<p>Records: <a href="/records">/records</a> - Cursor: <a href="/cursor">/cursor</a></p>
<script>
  const ws = new WebSocket("ws://" + location.host + "/ws/tail");
  ws.onmessage = (ev) => console.log("log changed:", ev.data);
</script>
</body></html>`

func (insp *inspector) handleIndex(c echo.Context) error {
	body := fasttemplate.ExecuteString(indexTemplate, "{{", "}}", map[string]interface{}{
		"image": insp.sess.imagePath,
	})
	return c.HTML(http.StatusOK, body)
}

func (insp *inspector) handleListRecords(c echo.Context) error {
	events, err := walkAll(insp.sess)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, events)
}

type writeRequest struct {
	ID   uint64 `json:"id"`
	Data string `json:"data"`
}

func (insp *inspector) handleWriteRecord(c echo.Context) error {
	if !insp.writes.Allow() {
		return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "write rate limit exceeded"})
	}

	var req writeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if req.Data == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "data must be nonempty"})
	}

	if err := insp.sess.handle.Write(req.ID, []byte(req.Data)); err != nil && !errors.Is(err, store.ErrEndOfMedium) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	if err := insp.sess.persist(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	insp.cache.Remove(req.ID)
	insp.notifyChanged()
	return c.JSON(http.StatusCreated, echo.Map{"id": req.ID})
}

func (insp *inspector) handleReadRecord(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	if cached, err := insp.cache.Get(id); err == nil {
		return c.Blob(http.StatusOK, "application/octet-stream", cached)
	}

	size, err := insp.sess.handle.Open(id, store.OptFirstMatch, insp.sess.geometry.Length/insp.sess.geometry.PageSize)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	}
	buf := make([]byte, size)
	if err := insp.sess.handle.Read(0, size, buf); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	insp.cache.Put(id, buf)
	return c.Blob(http.StatusOK, "application/octet-stream", buf)
}

func (insp *inspector) handleCursor(c echo.Context) error {
	h := insp.sess.handle
	return c.JSON(http.StatusOK, echo.Map{
		"found_id": h.GetFoundID(),
		"addr":     h.GetCurrentAddr(),
		"next":     h.GetNextAddr(),
	})
}

// handleTail upgrades to a WebSocket and registers the connection for
// change notifications; it otherwise just blocks reading (and discarding)
// client frames until the socket closes, the same minimal half-duplex
// tail shape a `tail -f`-style console needs.
func (insp *inspector) handleTail(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	id := uuid.New().String()

	insp.tailMu.Lock()
	insp.tailers[id] = conn
	insp.tailMu.Unlock()

	defer func() {
		insp.tailMu.Lock()
		delete(insp.tailers, id)
		insp.tailMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// notifyChanged pushes a tiny "changed" frame to every connected tailer,
// debounced so a rapid sequence of writes collapses into one push.
func (insp *inspector) notifyChanged() {
	insp.notify(func() {
		insp.tailMu.Lock()
		defer insp.tailMu.Unlock()
		for _, conn := range insp.tailers {
			_ = conn.WriteMessage(websocket.TextMessage, []byte("changed"))
		}
	})
}
