package emu

// NoEvent is returned by next-event queries when nothing is scheduled.
const NoEvent = -1

// IRQ is a bit in the interrupt request register.
type IRQ uint16

const (
	IRQVBlank IRQ = 1 << iota
	IRQHBlank
	IRQVCounter
)

// IRQLine receives interrupt requests raised by the PPU.
type IRQLine interface {
	RequestIRQ(irq IRQ)
}

// EventSource is any unit that can report the cycles until its next
// interrupt-relevant event.
type EventSource interface {
	NextEventTime() int
}

// minEventTime returns the earlier of two event times, ignoring NoEvent.
func minEventTime(a, b int) int {
	if a == NoEvent {
		return b
	}
	if b == NoEvent {
		return a
	}
	if a < b {
		return a
	}
	return b
}

// NextEventTime returns the earliest event among sources, or NoEvent.
func NextEventTime(sources ...EventSource) int {
	next := NoEvent
	for _, s := range sources {
		next = minEventTime(next, s.NextEventTime())
	}
	return next
}
