package network

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 4 * 1024
	wsWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWS upgrades the request and registers the connection with the client manager
// until the peer goes away. Pings from the peer are answered with pongs.
func HandleWS(clientManager *ClientManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("Failed to upgrade to WebSocket: %v", err)
			return
		}
		conn.SetReadLimit(wsReadLimit)
		log.Debug("New WebSocket connection from %s", conn.RemoteAddr().String())

		clientID, err := clientManager.ConnectClient(conn)
		if err != nil {
			log.Error("Failed to connect client: %v", err)
			conn.Close()
			return
		}
		handleWSConnection(clientManager, clientID, conn)
	}
}

// handleWSConnection handles a WebSocket connection.
func handleWSConnection(clientManager *ClientManager, clientID uint32, conn *websocket.Conn) {
	defer func() {
		clientManager.DisconnectClient(clientID)
		conn.Close()
	}()

	for {
		message, err := ReadMessageFromWS(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Error("Error reading WebSocket message from %s: %v", conn.RemoteAddr().String(), err)
			}
			log.Trace("Connection closed for %s", conn.RemoteAddr().String())
			return
		}

		switch message.Type {
		case messages.MessageTypeClientPing:
			client, ok := clientManager.GetClient(clientID)
			if !ok {
				return
			}
			if err := client.Send(&messages.Message{Type: messages.MessageTypeServerPong}); err != nil {
				log.Warn("Failed to send pong to client %d: %v", clientID, err)
				return
			}
		default:
			log.Warn("Unexpected message type %s from client %d", message.Type, clientID)
		}
	}
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(conn *websocket.Conn) (*messages.Message, error) {
	_, message, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(message)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
