package command

import "strings"

// Opcode identifies the operation a command performs.
type Opcode uint8

const (
	// OpNop does nothing. Useful as a fence with NewSync.
	OpNop Opcode = iota
	// OpSetContext binds a render target and surfaces.
	OpSetContext
	// OpSyncSurfaceData moves pixels between a backend and guest memory.
	OpSyncSurfaceData
	// OpDraw draws indexed primitives.
	OpDraw

	opcodeCount
)

var opcodeNames = [...]string{
	OpNop:             "Nop",
	OpSetContext:      "SetContext",
	OpSyncSurfaceData: "SyncSurfaceData",
	OpDraw:            "Draw",
}

// String returns the string representation of an Opcode.
func (o Opcode) String() string {
	if int(o) < len(opcodeNames) {
		return opcodeNames[o]
	}
	return "Unknown"
}

// Valid reports whether o is a known opcode.
func (o Opcode) Valid() bool {
	return o < opcodeCount
}

// Opcodes returns all known opcodes in numeric order.
func Opcodes() []Opcode {
	ops := make([]Opcode, 0, opcodeCount)
	for o := OpNop; o < opcodeCount; o++ {
		ops = append(ops, o)
	}
	return ops
}

// Status is the result code returned to a producer waiting on a
// synchronous command.
type Status int32

const (
	// StatusSuccess means the command ran to completion.
	StatusSuccess Status = 0
	// StatusNotApplicable means the command was skipped, for example a
	// surface sync on a null surface.
	StatusNotApplicable Status = 1
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusNotApplicable:
		return "not-applicable"
	default:
		return "unknown"
	}
}

// ParseOpcode returns the opcode named s, case-insensitively.
func ParseOpcode(s string) (Opcode, bool) {
	for o, name := range opcodeNames {
		if strings.EqualFold(name, s) {
			return Opcode(o), true
		}
	}
	return 0, false
}
