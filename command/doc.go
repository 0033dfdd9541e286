// Package command defines the command protocol between the emulated
// application (producer) and the renderer dispatcher (consumer).
//
// A Command is an opcode plus an argument Stack. Arguments are pushed by
// New in reverse so that the handler pops them in the order they were
// listed:
//
//	cmd := command.New(command.OpDraw, prim, format, indices, count, instances)
//
//	prim, _ := command.Pop[gxm.PrimitiveType](&cmd.Args)
//	format, _ := command.Pop[gxm.IndexFormat](&cmd.Args)
//
// Commands created with NewSync carry a one-shot Completion. The producer
// may block on it with Queue.SubmitSync; the handler signals it exactly
// once with a Status.
package command
