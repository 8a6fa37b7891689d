// Package connstate infers a connection phase from the exact TCP flag
// pattern carried by a single segment.
package connstate

import "Go2NetWindow/internal/model"

var table = map[model.ControlBits]model.ConnState{
	model.FlagSYN:                 model.StateAttempt,
	model.FlagSYN | model.FlagACK: model.StateAccepted,
	model.FlagACK:                 model.StateEstablished,
	model.FlagPSH | model.FlagACK: model.StateEstablished,
	model.FlagFIN:                 model.StateEstablished,
	model.FlagRST:                 model.StateReset,
	model.FlagRST | model.FlagACK: model.StateReset,
}

// Map returns the connection state for bits. Patterns outside the table,
// including supersets of a listed pattern, report false.
func Map(bits model.ControlBits) (model.ConnState, bool) {
	s, ok := table[bits]
	return s, ok
}
