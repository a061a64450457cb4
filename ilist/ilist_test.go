package ilist

import (
	"testing"
)

type testEntry struct {
	Entry
	value int
}

func TestListFIFO(t *testing.T) {
	var l List
	if !l.Empty() || l.Len() != 0 {
		t.Fatalf("zero List is not empty")
	}

	for i := 0; i < 5; i++ {
		l.PushBack(&testEntry{value: i})
	}
	if l.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", l.Len())
	}

	for i := 0; i < 5; i++ {
		e := l.PopFront()
		if e == nil {
			t.Fatalf("PopFront() = nil at %d", i)
		}
		if v := e.(*testEntry).value; v != i {
			t.Errorf("PopFront() = %d, want %d", v, i)
		}
	}

	if e := l.PopFront(); e != nil {
		t.Errorf("PopFront() on empty list = %v, want nil", e)
	}
	if !l.Empty() || l.Back() != nil {
		t.Errorf("list not empty after draining")
	}
}

func TestListRemoveMiddle(t *testing.T) {
	var l List
	a, b, c := &testEntry{value: 1}, &testEntry{value: 2}, &testEntry{value: 3}
	l.PushBack(a)
	l.PushBack(b)
	l.PushBack(c)

	l.Remove(b)
	if l.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", l.Len())
	}
	if l.Front() != a || l.Front().Next() != c || l.Back() != c || c.Prev() != a {
		t.Errorf("list links are wrong after removing the middle element")
	}
	if b.Next() != nil || b.Prev() != nil {
		t.Errorf("removed element still linked")
	}

	l.Reset()
	if !l.Empty() || l.Len() != 0 {
		t.Errorf("Reset() left elements behind")
	}
}
