package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(req *http.Request) bool {
		return true
	},
}

const wsWriteTimeout = 10 * time.Second

// @Summary	Open websocket for realtime stats and brightness changes
// @Router		/api/ws [get]
// @Param		Upgrade	header	string	true	"websocket"
// @Tags		base
// @Success	101
func (a *Api) handleWebsocket(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		http.Error(w, fmt.Sprintf("couldn't make websocket: %s", err), 400)
		return
	}
	defer func(ws *websocket.Conn) {
		err := ws.Close()
		if err != nil {
			a.logger.Debug("could not close websocket", slog.String("error", err.Error()))
		}
	}(ws)

	a.wsMutex.Lock()
	a.wsClients[ws] = true
	n := len(a.wsClients)
	a.wsMutex.Unlock()
	a.pipeline.Stats.SetWsClients(n)

	stop := make(chan struct{})
	go a.websocketWriter(ws, stop)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			break
		}
		a.logger.Debug("received websocket message", slog.String("msg", string(msg)))
	}

	close(stop)
	a.wsMutex.Lock()
	delete(a.wsClients, ws)
	n = len(a.wsClients)
	a.wsMutex.Unlock()
	a.pipeline.Stats.SetWsClients(n)
}

func (a *Api) websocketWriter(ws *websocket.Conn, stop chan struct{}) {
	pingTicker := time.NewTicker(2 * time.Second)
	defer pingTicker.Stop()

	for {
		packet, err := json.Marshal(a.pipeline.Report())
		if err != nil {
			return
		}
		if err := a.send(ws, packet); err != nil {
			return
		}

		select {
		case <-stop:
			return
		case <-pingTicker.C:
		}
	}
}

func (a *Api) send(ws *websocket.Conn, packet []byte) error {
	a.wsMutex.Lock()
	defer a.wsMutex.Unlock()

	err := ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err != nil {
		return err
	}
	return ws.WriteMessage(websocket.TextMessage, packet)
}

func (a *Api) broadcast(packet []byte) {
	a.wsMutex.Lock()
	defer a.wsMutex.Unlock()

	for ws := range a.wsClients {
		err := ws.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err != nil {
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, packet); err != nil {
			a.logger.Debug("could not send event", slog.String("error", err.Error()))
		}
	}
}
