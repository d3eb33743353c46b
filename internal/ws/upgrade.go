package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"gasdepot/internal/domain"
	"gasdepot/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusLookup loads the stored transaction for a reference.
type StatusLookup func(c *gin.Context, reference string) (*models.Transaction, error)

// PaymentStatus streams status updates for :reference. The current status is
// sent first; the socket closes once the transaction is terminal.
func PaymentStatus(hub *Hub, lookup StatusLookup, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		ref := c.Param("reference")
		// Subscribe before reading the snapshot so a transition landing in
		// between is still delivered.
		client := NewClient(ref)
		hub.Register(client)
		defer client.Close()

		tx, err := lookup(c, ref)
		if err != nil {
			c.JSON(domain.HTTPStatus(err), gin.H{"error": domain.PublicMessage(err)})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Debug("websocket upgrade failed", zap.String("reference", ref), zap.Error(err))
			return
		}
		defer conn.Close()

		initial, _ := json.Marshal(statusMessage{Type: "status", StatusUpdate: domain.StatusUpdate{
			Reference:         tx.Reference,
			TransactionStatus: tx.Status,
			OrderID:           tx.OrderID,
			At:                tx.UpdatedAt,
		}})
		select {
		case client.Send <- initial:
		default:
		}
		if tx.IsTerminal() {
			client.Close()
		}

		done := make(chan struct{})
		go func() {
			readPump(conn)
			close(done)
		}()
		writePump(client, conn, done)
	}
}

// writePump copies messages from client.Send to the connection until the
// client is closed or a terminal status was sent. It also stops when the peer
// goes away.
func writePump(c *Client, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
			if isTerminal(msg) {
				// Anything queued behind a terminal status is stale.
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func isTerminal(msg []byte) bool {
	var m statusMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return false
	}
	return m.TransactionStatus != "" && m.TransactionStatus != domain.TransactionStatusPending
}
