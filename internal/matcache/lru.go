package matcache

// lruList is a doubly-linked list ordering keys from most to least
// recently used. Not safe for concurrent use; the owning shard's lock
// protects it.
type lruList struct {
	head *lruNode
	tail *lruNode
	len  int
}

type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

func (l *lruList) pushFront(key string) *lruNode {
	n := &lruNode{key: key}
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
	return n
}

func (l *lruList) moveToFront(n *lruNode) {
	if n == l.head {
		return
	}
	l.unlink(n)
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
	l.len++
}

// removeOldest unlinks and returns the least recently used key.
func (l *lruList) removeOldest() (string, bool) {
	if l.tail == nil {
		return "", false
	}
	n := l.tail
	l.unlink(n)
	return n.key, true
}

func (l *lruList) unlink(n *lruNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
