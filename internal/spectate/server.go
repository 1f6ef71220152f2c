package spectate

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RequestMessage is what clients send, over the socket or as a POST body.
//
//	{"action":"submit","unit":0,"kind":"attack","dir":"right","slot":0}
//	{"action":"set_speed","multiplier":2}
//	{"action":"toggle_pause"}
type RequestMessage struct {
	Action     string  `json:"action"`
	Unit       int     `json:"unit"`
	Kind       string  `json:"kind"`
	Dir        string  `json:"dir"`
	Slot       int     `json:"slot"`
	Multiplier float64 `json:"multiplier"`
}

// ActionRequest decodes the submit payload.
func (m RequestMessage) ActionRequest() (game.ActionRequest, error) {
	kind, err := game.ParseActionKind(m.Kind)
	if err != nil {
		return game.ActionRequest{}, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err)
	}
	req := game.ActionRequest{Kind: kind, Slot: game.WeaponSlot(m.Slot)}
	if req.Directed() {
		req.Dir, err = game.ParseDirection(m.Dir)
		if err != nil {
			return game.ActionRequest{}, fmt.Errorf("%w: %v", game.ErrInvalidRequest, err)
		}
	}
	return req, req.Validate()
}

// NewRouter wires the spectator endpoints.
func NewRouter(b *Broadcaster) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(b.log))

	r.GET("/state", stateHandler(b))
	r.POST("/units/:id/requests", submitHandler(b))
	r.GET("/ws", HandleWebsocket(b))
	return r
}

func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("http request")
	}
}

func stateHandler(b *Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, b.Latest())
	}
}

func submitHandler(b *Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unit id must be an integer"})
			return
		}
		var msg RequestMessage
		if err := c.ShouldBindJSON(&msg); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req, err := msg.ActionRequest()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := b.Submit(c.Request.Context(), game.UnitID(id), req); err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"unit": id, "request": req.String()})
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownUnit):
		return http.StatusNotFound
	case errors.Is(err, ErrNotPlayerUnit):
		return http.StatusForbidden
	case errors.Is(err, game.ErrActionPending):
		return http.StatusConflict
	case errors.Is(err, game.ErrUnitDefeated):
		return http.StatusGone
	case errors.Is(err, game.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// HandleWebsocket upgrades the connection, registers it for frames and feeds
// its messages to the broadcaster.
func HandleWebsocket(b *Broadcaster) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			b.log.Warn().Err(err).Msg("ws upgrade failed")
			return
		}
		if err := b.Register(conn); err != nil {
			_ = conn.Close()
			return
		}

		for {
			var msg RequestMessage
			if err := conn.ReadJSON(&msg); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					b.log.Debug().Err(err).Msg("ws read failed")
				}
				b.Unregister(conn)
				return
			}

			switch msg.Action {
			case "submit":
				req, err := msg.ActionRequest()
				if err != nil {
					b.log.Debug().Err(err).Msg("ws bad request")
					b.rejectFrom(conn, err)
					continue
				}
				b.submitFrom(conn, game.UnitID(msg.Unit), req)
			case "set_speed":
				if msg.Multiplier >= 0 {
					b.SetSpeed(msg.Multiplier)
				}
			case "toggle_pause":
				b.TogglePause()
			default:
				b.log.Debug().Str("action", msg.Action).Msg("ws unknown action")
			}
		}
	}
}
