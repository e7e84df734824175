package services

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// WSManager WebSocket连接管理器：按连接ID登记活跃的对话socket。
// 写socket不是并发安全的，发送时按连接加锁。
type WSManager struct {
	connections map[string]*wsConnection
	mutex       sync.RWMutex
}

type wsConnection struct {
	conn      *websocket.Conn
	writeLock sync.Mutex
}

// GlobalWSManager 全局连接管理器
var GlobalWSManager = NewWSManager()

// NewWSManager 创建连接管理器
func NewWSManager() *WSManager {
	return &WSManager{
		connections: make(map[string]*wsConnection),
	}
}

// Register 登记一个新连接
func (m *WSManager) Register(connectionID string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.connections[connectionID] = &wsConnection{conn: conn}
	log.Printf("🔗 [WebSocket] 连接已登记: %s (当前%d个)", connectionID, len(m.connections))
}

// Unregister 注销连接
func (m *WSManager) Unregister(connectionID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[connectionID]; exists {
		delete(m.connections, connectionID)
		log.Printf("🔗 [WebSocket] 连接已注销: %s (剩余%d个)", connectionID, len(m.connections))
	}
}

// SendJSON 向指定连接发送JSON消息
func (m *WSManager) SendJSON(connectionID string, payload interface{}) error {
	m.mutex.RLock()
	wc, exists := m.connections[connectionID]
	m.mutex.RUnlock()
	if !exists {
		return websocket.ErrCloseSent
	}

	wc.writeLock.Lock()
	defer wc.writeLock.Unlock()
	return wc.conn.WriteJSON(payload)
}

// ConnectionIDs 返回当前活跃连接ID列表
func (m *WSManager) ConnectionIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	ids := make([]string, 0, len(m.connections))
	for id := range m.connections {
		ids = append(ids, id)
	}
	return ids
}

// Count 活跃连接数
func (m *WSManager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.connections)
}
