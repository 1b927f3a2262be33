package wsevents

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"

	"github.com/cogniscale/cortex/api/auth"
)

// HTTPHandler upgrades GET /ws to a WebSocket connection, reads an initial
// JSON Filter frame (an empty object subscribes to everything except the
// opt-in system-health/resource-alert streams), and serves it via Serve.
// The connecting identity (from auth's context, when the route runs behind
// api/auth's middleware) seeds the client ID.
func (h *Hub) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()

		clientID, ok := auth.UserIDFromContext(ctx)
		if !ok || clientID == "" {
			clientID = r.RemoteAddr
		}

		var filter Filter
		_, data, err := conn.Read(ctx)
		if err == nil {
			_ = json.Unmarshal(data, &filter)
		}

		_ = h.Serve(ctx, conn, clientID, filter)
	}
}
