package ws

import "testing"

// Shutdown can land between a client registering and its connect snapshot
// being queued; the send must fail instead of hitting a closed channel.
func TestSend_AfterShutdownDoesNotPanic(t *testing.T) {
	h := New(nil)
	c := &client{send: make(chan []byte, 1)}
	h.register(c)
	h.closeAll()

	if h.send(c, []byte("{}")) {
		t.Error("send to a removed client should report failure")
	}
}

func TestSend_DeliversToRegisteredClient(t *testing.T) {
	h := New(nil)
	c := &client{send: make(chan []byte, 1)}
	h.register(c)

	if !h.send(c, []byte("{}")) {
		t.Fatal("send to a registered client failed")
	}
	if h.send(c, []byte("{}")) {
		t.Error("send should fail when the client buffer is full")
	}
}
