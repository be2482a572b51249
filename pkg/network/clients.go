package network

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/cbodonnell/wordfall/pkg/log"
	"github.com/cbodonnell/wordfall/pkg/messages"
	"github.com/gorilla/websocket"
)

const (
	// ClientIDMaxRetries represents the maximum number of retries when generating a unique ID
	ClientIDMaxRetries = 1024
	// ClientEventChannelSize represents the size of the client event channel
	ClientEventChannelSize = 1024
)

// Client is one leaderboard feed subscriber
type Client struct {
	ID        uint32
	conn      *websocket.Conn
	writeLock sync.Mutex
}

// Send writes msg to the client. Writes to one connection are serialized.
func (c *Client) Send(msg *messages.Message) error {
	c.writeLock.Lock()
	defer c.writeLock.Unlock()
	return WriteMessageToWS(c.conn, msg)
}

// ClientEvent represents an event that happened to a client
type ClientEvent struct {
	ClientID uint32
	Type     ClientEventType
}

// ClientEventType represents the type of a client event
type ClientEventType int

const (
	ClientEventTypeConnect ClientEventType = iota
	ClientEventTypeDisconnect
)

// ClientManager manages connected feed clients
type ClientManager struct {
	clients         map[uint32]*Client
	clientsLock     sync.RWMutex
	clientEventChan chan ClientEvent
}

// NewClientManager creates a new ClientManager
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:         make(map[uint32]*Client),
		clientEventChan: make(chan ClientEvent, ClientEventChannelSize),
	}
}

// GetClientEventChan returns a one-way channel for receiving client events
func (cm *ClientManager) GetClientEventChan() <-chan ClientEvent {
	return cm.clientEventChan
}

// GetClients returns a snapshot of the connected clients.
func (cm *ClientManager) GetClients() []*Client {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	clients := make([]*Client, 0, len(cm.clients))
	for _, client := range cm.clients {
		clients = append(clients, client)
	}
	return clients
}

func (cm *ClientManager) GetClient(clientID uint32) (*Client, bool) {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	client, ok := cm.clients[clientID]
	return client, ok
}

func (cm *ClientManager) Count() int {
	cm.clientsLock.RLock()
	defer cm.clientsLock.RUnlock()
	return len(cm.clients)
}

// ConnectClient adds a new client to the manager and returns its ID
func (cm *ClientManager) ConnectClient(conn *websocket.Conn) (uint32, error) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	clientID, err := cm.generateUniqueID(ClientIDMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("failed to generate a unique ID: %v", err)
	}
	cm.clients[clientID] = &Client{
		ID:   clientID,
		conn: conn,
	}
	cm.emit(ClientEvent{ClientID: clientID, Type: ClientEventTypeConnect})

	return clientID, nil
}

// DisconnectClient removes a client from the manager and closes its connection
func (cm *ClientManager) DisconnectClient(clientID uint32) {
	cm.clientsLock.Lock()
	defer cm.clientsLock.Unlock()

	client, ok := cm.clients[clientID]
	if !ok {
		return
	}
	delete(cm.clients, clientID)
	client.conn.Close()
	cm.emit(ClientEvent{ClientID: clientID, Type: ClientEventTypeDisconnect})
}

// Broadcast sends msg to every client and returns the IDs of the clients it failed to reach
func (cm *ClientManager) Broadcast(msg *messages.Message) []uint32 {
	var failed []uint32
	for _, client := range cm.GetClients() {
		if err := client.Send(msg); err != nil {
			log.Warn("Failed to send %s to client %d: %v", msg.Type, client.ID, err)
			failed = append(failed, client.ID)
		}
	}
	return failed
}

// emit must be called with clientsLock held. Events are dropped when nobody drains the channel.
func (cm *ClientManager) emit(event ClientEvent) {
	select {
	case cm.clientEventChan <- event:
	default:
		log.Warn("Client event channel full, dropping event for client %d", event.ClientID)
	}
}

// generateUniqueID generates a unique client ID with a maximum number of retries
// it reads from the clients, so it needs to be locked before calling
func (cm *ClientManager) generateUniqueID(maxRetries int) (uint32, error) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		id := rand.Uint32()
		if id == 0 {
			continue
		}
		if _, ok := cm.clients[id]; !ok {
			return id, nil
		}
	}

	return 0, fmt.Errorf("failed to generate a unique ID after %d attempts", maxRetries)
}
