package websocket

import (
	"net/http"
	"strings"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades the request and streams change events until the
// client leaves. ?entities=commands,potty_logs narrows the feed.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true, // trackers on the home LAN connect from any origin
		})
		if err != nil {
			hub.logger.Warn("websocket accept", "error", err, "remote", r.RemoteAddr)
			return
		}

		var entities []string
		if q := r.URL.Query().Get("entities"); q != "" {
			entities = strings.Split(q, ",")
		}
		NewClient(hub, conn, entities).Run(r.Context())
	}
}
