//go:build egbadebug

package emu

// debugChecks enables contract assertions such as scanline ordering.
const debugChecks = true
