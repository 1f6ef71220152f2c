package spectate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Grid-Tactics/internal/game"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestServer runs a duel: unit 0 is the player, unit 1 an idle NPC.
func newTestServer(t *testing.T, opts ...Option) (*Broadcaster, *httptest.Server) {
	t.Helper()
	s := game.ScenarioSpec{
		Name:     "duel",
		Width:    6,
		Height:   3,
		Factions: []game.Faction{{ID: 1, Name: "Red"}, {ID: 2, Name: "Blue"}},
		Units: []game.UnitConfig{
			{Label: "P", Faction: 1, Controller: "player", X: 0, Y: 0, HP: 50, Energy: 100, MoveCost: 4},
			{Label: "N", Faction: 2, X: 5, Y: 2, HP: 50, Energy: 100, MoveCost: 4},
		},
	}
	w, err := game.BuildWorld(s)
	require.NoError(t, err)
	d, err := game.NewDriver(w, game.NewScriptedPolicy(), game.WithStep(5*time.Millisecond))
	require.NoError(t, err)

	b := NewBroadcaster(d, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = b.Run(ctx)
		close(stopped)
	}()
	srv := httptest.NewServer(NewRouter(b))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-stopped
	})
	return b, srv
}

func postRequest(t *testing.T, srv *httptest.Server, unit, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/units/"+unit+"/requests", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func getState(t *testing.T, srv *httptest.Server) Frame {
	t.Helper()
	resp, err := http.Get(srv.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f Frame
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&f))
	return f
}

func TestState_ServesSnapshot(t *testing.T) {
	_, srv := newTestServer(t, StartPaused())

	f := getState(t, srv)
	assert.Equal(t, "snapshot", f.Type)
	assert.True(t, f.Paused)
	require.NotNil(t, f.Snapshot)
	assert.Equal(t, 6, f.Snapshot.Width)
	assert.Len(t, f.Snapshot.Units, 2)
	assert.Equal(t, "player", f.Snapshot.Units[0].Controller)
}

func TestSubmit_PlayerRequestIsQueued(t *testing.T) {
	_, srv := newTestServer(t, StartPaused())

	resp := postRequest(t, srv, "0", `{"kind":"move","dir":"up"}`)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	f := getState(t, srv)
	assert.Equal(t, "move up", f.Snapshot.Units[0].Pending)

	resp = postRequest(t, srv, "0", `{"kind":"wait"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSubmit_Rejections(t *testing.T) {
	_, srv := newTestServer(t, StartPaused())

	assert.Equal(t, http.StatusForbidden, postRequest(t, srv, "1", `{"kind":"wait"}`).StatusCode)
	assert.Equal(t, http.StatusNotFound, postRequest(t, srv, "9", `{"kind":"wait"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, postRequest(t, srv, "x", `{"kind":"wait"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, postRequest(t, srv, "0", `{"kind":"fly"}`).StatusCode)
	assert.Equal(t, http.StatusBadRequest, postRequest(t, srv, "0", `{"kind":"move","dir":"sideways"}`).StatusCode)
}

func TestWebsocket_StreamsTicksAndAcceptsRequests(t *testing.T) {
	_, srv := newTestServer(t, StartPaused())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Frame
	require.NoError(t, conn.ReadJSON(&first))
	assert.True(t, first.Paused)
	assert.Equal(t, 0, first.Snapshot.Tick)

	require.NoError(t, conn.WriteJSON(RequestMessage{Action: "submit", Unit: 0, Kind: "move", Dir: "right"}))
	require.NoError(t, conn.WriteJSON(RequestMessage{Action: "toggle_pause"}))

	// Frames arrive in loop order: the queued request, the unpause, then ticks.
	moved := false
	for !moved {
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		if f.Snapshot == nil || f.Snapshot.Tick == 0 {
			continue
		}
		for _, u := range f.Snapshot.Units {
			if u.Label == "P" && u.Pos == (game.GridPos{X: 1, Y: 0}) {
				moved = true
			}
		}
		require.True(t, moved, "tick %d ran without the player's move", f.Snapshot.Tick)
		assert.NotEmpty(t, f.Events)
	}
}

func TestWebsocket_RejectedRequestGetsErrorFrame(t *testing.T) {
	_, srv := newTestServer(t, StartPaused())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Frame
	require.NoError(t, conn.ReadJSON(&first))

	require.NoError(t, conn.WriteJSON(RequestMessage{Action: "submit", Unit: 1, Kind: "wait"}))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	assert.Equal(t, "error", f.Type)
	assert.Contains(t, f.Error, ErrNotPlayerUnit.Error())
}

func TestWebsocket_MalformedSubmitGetsErrorFrame(t *testing.T) {
	b, srv := newTestServer(t, StartPaused())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first Frame
	require.NoError(t, conn.ReadJSON(&first))

	for _, msg := range []RequestMessage{
		{Action: "submit", Unit: 0, Kind: "teleport"},
		{Action: "submit", Unit: 0, Kind: "move", Dir: "sideways"},
	} {
		require.NoError(t, conn.WriteJSON(msg))
		var f Frame
		require.NoError(t, conn.ReadJSON(&f))
		assert.Equal(t, "error", f.Type, "kind=%s dir=%s", msg.Kind, msg.Dir)
		assert.Contains(t, f.Error, game.ErrInvalidRequest.Error())
	}

	u, ok := b.driver.World().Unit(0)
	require.True(t, ok)
	assert.True(t, u.Idle(), "malformed submit must not queue anything")
}

func TestRequestMessage_ActionRequest(t *testing.T) {
	req, err := RequestMessage{Kind: "attack", Dir: "left", Slot: 1}.ActionRequest()
	require.NoError(t, err)
	assert.Equal(t, game.AttackRequest(game.DirLeft, game.SlotSecondary), req)

	req, err = RequestMessage{Kind: "dodge", Dir: "nonsense"}.ActionRequest()
	require.NoError(t, err)
	assert.Equal(t, game.DodgeRequest(), req)

	_, err = RequestMessage{Kind: "attack", Dir: "up", Slot: 5}.ActionRequest()
	assert.ErrorIs(t, err, game.ErrInvalidRequest)
}
