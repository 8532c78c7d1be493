// Package statsview serves runtime statistics of the emulator process over HTTP.
// It is only functional when built with the statsview tag:
//
//	go build -tags statsview
//
// Graphs are then available at localhost:12600/debug/statsview and the standard
// pprof endpoints at localhost:12600/debug/pprof/.
package statsview
