package waiter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelEntryNotify(t *testing.T) {
	var q Queue
	e, ch := NewChannelEntry(nil)
	q.EventRegister(&e, EventIn)

	q.Notify(EventOut)
	assert.Len(t, ch, 0, "notified for an event outside the mask")

	q.Notify(EventIn)
	assert.Len(t, ch, 1)

	// A second notification must not block on the full channel
	q.Notify(EventIn | EventOut)
	assert.Len(t, ch, 1)
	<-ch

	q.EventUnregister(&e)
	q.Notify(EventIn)
	assert.Len(t, ch, 0, "notified after unregistering")
}
