package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRegistryJoinLookup 测试登记与查找
func TestRegistryJoinLookup(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Lookup(1)
	assert.False(t, ok)

	r.Join(1, "connA")
	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "connA", connID)
	assert.Equal(t, 1, r.Count())
}

// TestRegistryLastJoinWins 测试重复 join 后者覆盖前者
func TestRegistryLastJoinWins(t *testing.T) {
	r := NewRegistry()

	r.Join(1, "connA")
	r.Join(1, "connB")

	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "connB", connID)
	assert.Equal(t, 1, r.Count())

	// 旧连接已不再映射到任何用户，移除它是空操作
	r.Remove("connA")
	connID, ok = r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "connB", connID)

	// 移除当前连接后用户下线
	r.Remove("connB")
	_, ok = r.Lookup(1)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Count())
}

// TestRegistryRemoveByConn 测试按连接ID移除
func TestRegistryRemoveByConn(t *testing.T) {
	r := NewRegistry()

	r.Join(1, "connA")
	r.Join(2, "connB")

	r.Remove("connA")

	_, ok := r.Lookup(1)
	assert.False(t, ok)

	connID, ok := r.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, "connB", connID)
}

// TestRegistryRemoveUnknownConn 测试移除未登记的连接
func TestRegistryRemoveUnknownConn(t *testing.T) {
	r := NewRegistry()

	r.Join(1, "connA")
	r.Remove("no-such-conn")

	connID, ok := r.Lookup(1)
	assert.True(t, ok)
	assert.Equal(t, "connA", connID)
}

// TestRegistryConnIDReuse 测试同一连接ID被另一个用户占用时后写者胜出
func TestRegistryConnIDReuse(t *testing.T) {
	r := NewRegistry()

	r.Join(1, "connA")
	r.Join(2, "connA")

	_, ok := r.Lookup(1)
	assert.False(t, ok)

	connID, ok := r.Lookup(2)
	assert.True(t, ok)
	assert.Equal(t, "connA", connID)
	assert.Equal(t, 1, r.Count())
}
