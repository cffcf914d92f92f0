package chat

import "sync"

// Registry 维护在线用户表：用户ID到当前活跃连接ID的映射。
// 除正向索引外同时维护反向索引（连接ID到用户ID），
// 使断开连接时的清理是 O(1) 而不是全表扫描。
// 注册表只存在于进程内存中，进程重启后状态全部丢失，
// 客户端重连后需要重新发送 join
type Registry struct {
	mu     sync.RWMutex
	byUser map[int]string // user_id -> conn_id
	byConn map[string]int // conn_id -> user_id
}

func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[int]string),
		byConn: make(map[string]int),
	}
}

// Join 登记用户的活跃连接。同一用户重复 join 时后者覆盖前者；
// 被覆盖的旧连接在注册表中不再可达
func (r *Registry) Join(userID int, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// 清理该用户的旧连接映射
	if old, ok := r.byUser[userID]; ok {
		delete(r.byConn, old)
	}
	// 极端情况：连接ID已被另一个用户占用，后写者胜出
	if prev, ok := r.byConn[connID]; ok {
		delete(r.byUser, prev)
	}

	r.byUser[userID] = connID
	r.byConn[connID] = userID
}

// Lookup 查找用户的活跃连接ID
func (r *Registry) Lookup(userID int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.byUser[userID]
	return connID, ok
}

// Remove 按连接ID移除登记。断开连接的一方不会再次报告自己的
// 用户ID，所以移除只能以连接为键；未登记的连接ID是空操作
func (r *Registry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[connID]
	if !ok {
		return
	}
	delete(r.byConn, connID)

	// 仅当正向索引仍指向该连接时才删除，
	// 避免误删同一用户重新 join 后的新连接
	if r.byUser[userID] == connID {
		delete(r.byUser, userID)
	}
}

// Count 返回当前在线用户数
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
