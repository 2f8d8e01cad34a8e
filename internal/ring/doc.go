// Package ring implements the bounded overwrite-on-full ring buffer
// coupling the trace producer to the sequencer.
//
// The buffer is the sole mutable state shared between the producer and
// consumer goroutines. Everything else in the pipeline is goroutine-
// local, so the happens-before edge established by the buffer's lock is
// the only ordering the rest of the system needs: the consumer always
// observes fully constructed measurements.
//
// Drop policy: under overload the OLDEST data is lost, never the
// newest. Ordering: any two writes that are both eventually read come
// back in producer order; reads are a subsequence of writes.
package ring
