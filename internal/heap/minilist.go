package heap

import "unsafe"

// miniList is the singly-linked LIFO free list holding every free
// 16-byte block. A mini block only has room for a header and one
// pointer, so unlike the segregated classes (seglist.go) removal is
// a linear scan rather than O(1).
type miniList struct {
	head unsafe.Pointer
}

func (m *miniList) push(b unsafe.Pointer) {
	writePtr(nextFieldAddr(b), m.head)
	m.head = b
}

// remove unlinks b from the mini list. It is a no-op if b is not on
// the list, which should never happen for well-formed callers.
func (m *miniList) remove(b unsafe.Pointer) {
	if m.head == b {
		m.head = readPtr(nextFieldAddr(b))
		return
	}

	prev := m.head
	for prev != nil {
		next := readPtr(nextFieldAddr(prev))
		if next == b {
			writePtr(nextFieldAddr(prev), readPtr(nextFieldAddr(b)))
			return
		}

		prev = next
	}
}

func (m *miniList) count() int {
	n := 0
	for b := m.head; b != nil; b = readPtr(nextFieldAddr(b)) {
		n++
	}

	return n
}
