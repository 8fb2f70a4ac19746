//go:build !egbadebug

package emu

const debugChecks = false
