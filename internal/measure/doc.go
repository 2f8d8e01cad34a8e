// Package measure provides the immutable measurement record flowing
// through the pipeline.
//
// A measurement is an indexed, ordered column→value mapping. Cells are
// a sealed tagged variant (Int, Float, Str, Null) rather than any -
// downstream guard evaluation and duration extraction switch on the
// concrete cell type and must not meet unexpected shapes.
//
// This package contains type definitions only. Every other internal
// package imports measure; measure imports nothing internal.
package measure
