// Package sequencer implements the generic driver loop of the
// pipeline.
//
// ARCHITECTURE:
//
// Single-consumer loop:
//
//	config = sem.Initial()
//	loop:
//	  input = buffer.Read()            // blocks; end-of-stream exits
//	  notify input listeners (input, config)
//	  action = sem.Actions(input, config)   // absent halts
//	  (output, config) = sem.Execute(action, input, config)
//	  notify output listeners (output)
//
// All semantics evaluation happens on the one goroutine that calls
// Run. The semantics is pure, the listeners are synchronous, so the
// only cross-goroutine state in the whole pipeline is the ring buffer
// the loop reads from.
//
// The loop is the only place that decides HOW to stop: end of stream,
// semantics halt, or cancellation. Nothing below it terminates the
// process.
package sequencer
