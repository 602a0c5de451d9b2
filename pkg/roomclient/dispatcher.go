package roomclient

import "github.com/quacklabs/quack/pkg/protocol"

// Dispatcher routes reconciled events to registered callbacks. Callbacks
// run on the read loop goroutine; keep them quick.
type Dispatcher struct {
	onPeerJoined  func(protocol.Profile)
	onPeerUpdated func(protocol.Profile)
	onPeerLeft    func()
	onPeerMessage func(content string, dir TypeDirection)
	onPing        func()
	onReaction    func(reaction string)
	onTyping      func(TypingState)
	onError       func(error)
}

func (d *Dispatcher) SetOnPeerJoined(fn func(protocol.Profile))           { d.onPeerJoined = fn }
func (d *Dispatcher) SetOnPeerUpdated(fn func(protocol.Profile))          { d.onPeerUpdated = fn }
func (d *Dispatcher) SetOnPeerLeft(fn func())                             { d.onPeerLeft = fn }
func (d *Dispatcher) SetOnPeerMessage(fn func(string, TypeDirection))     { d.onPeerMessage = fn }
func (d *Dispatcher) SetOnPing(fn func())                                 { d.onPing = fn }
func (d *Dispatcher) SetOnReaction(fn func(string))                       { d.onReaction = fn }
func (d *Dispatcher) SetOnTyping(fn func(TypingState))                    { d.onTyping = fn }
func (d *Dispatcher) SetOnError(fn func(error))                           { d.onError = fn }

func (d *Dispatcher) firePeerJoined(p protocol.Profile) {
	if d.onPeerJoined != nil {
		d.onPeerJoined(p)
	}
}

func (d *Dispatcher) firePeerUpdated(p protocol.Profile) {
	if d.onPeerUpdated != nil {
		d.onPeerUpdated(p)
	}
}

func (d *Dispatcher) firePeerLeft() {
	if d.onPeerLeft != nil {
		d.onPeerLeft()
	}
}

func (d *Dispatcher) firePeerMessage(content string, dir TypeDirection) {
	if d.onPeerMessage != nil {
		d.onPeerMessage(content, dir)
	}
}

func (d *Dispatcher) firePing() {
	if d.onPing != nil {
		d.onPing()
	}
}

func (d *Dispatcher) fireReaction(reaction string) {
	if d.onReaction != nil {
		d.onReaction(reaction)
	}
}

func (d *Dispatcher) fireTyping(s TypingState) {
	if d.onTyping != nil {
		d.onTyping(s)
	}
}

func (d *Dispatcher) fireError(err error) {
	if d.onError != nil && err != nil {
		d.onError(err)
	}
}
