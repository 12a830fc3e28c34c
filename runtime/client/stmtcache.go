package client

import (
	"context"
	"database/sql"
	"sync"
)

// stmtCacheSize bounds the number of prepared statements kept per client.
const stmtCacheSize = 128

// CacheStats reports prepared statement cache effectiveness.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Size      int
	Evictions int64
}

// stmtCache is an LRU of prepared statements keyed by SQL text. Repeated
// executions of the same compiled statement skip the prepare round trip.
type stmtCache struct {
	mu      sync.Mutex
	db      *sql.DB
	maxSize int
	entries map[string]*stmtNode
	head    *stmtNode
	tail    *stmtNode
	stats   CacheStats
}

type stmtNode struct {
	key  string
	stmt *sql.Stmt
	prev *stmtNode
	next *stmtNode
}

func newStmtCache(db *sql.DB, maxSize int) *stmtCache {
	return &stmtCache{
		db:      db,
		maxSize: maxSize,
		entries: make(map[string]*stmtNode),
	}
}

// get returns a prepared statement for the query, preparing and caching it
// on first use. The returned statement is shared; callers must not close it.
func (c *stmtCache) get(ctx context.Context, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	if node, ok := c.entries[query]; ok {
		c.moveToFront(node)
		c.stats.Hits++
		stmt := node.stmt
		c.mu.Unlock()
		return stmt, nil
	}
	c.stats.Misses++
	c.mu.Unlock()

	// Prepare outside the lock; a concurrent miss on the same query just
	// prepares twice and the loser is discarded.
	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if node, ok := c.entries[query]; ok {
		go stmt.Close()
		c.moveToFront(node)
		return node.stmt, nil
	}

	node := &stmtNode{key: query, stmt: stmt}
	c.entries[query] = node
	c.pushFront(node)

	if len(c.entries) > c.maxSize {
		c.evictTail()
	}
	return stmt, nil
}

// invalidate drops every cached statement. Used after reconnects and on
// close.
func (c *stmtCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, node := range c.entries {
		go node.stmt.Close()
	}
	c.entries = make(map[string]*stmtNode)
	c.head = nil
	c.tail = nil
	c.stats.Size = 0
}

// Stats returns a snapshot of the cache counters.
func (c *stmtCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.Size = len(c.entries)
	return stats
}

func (c *stmtCache) pushFront(node *stmtNode) {
	node.next = c.head
	node.prev = nil
	if c.head != nil {
		c.head.prev = node
	}
	c.head = node
	if c.tail == nil {
		c.tail = node
	}
}

func (c *stmtCache) moveToFront(node *stmtNode) {
	if node == c.head {
		return
	}
	c.unlink(node)
	c.pushFront(node)
}

func (c *stmtCache) unlink(node *stmtNode) {
	if node.prev != nil {
		node.prev.next = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	}
	if node == c.head {
		c.head = node.next
	}
	if node == c.tail {
		c.tail = node.prev
	}
	node.prev = nil
	node.next = nil
}

func (c *stmtCache) evictTail() {
	node := c.tail
	if node == nil {
		return
	}
	c.unlink(node)
	delete(c.entries, node.key)
	go node.stmt.Close()
	c.stats.Evictions++
}
