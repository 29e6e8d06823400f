// Package lifecycle tracks the run state of the hub.
//
// The state is written by the process entry point and the shutdown handler
// and read concurrently by every request, so it is held in an atomic.
package lifecycle

import "sync/atomic"

// CoreState is a stage in the lifetime of the hub process.
type CoreState int32

const (
	NotRunning CoreState = iota
	Starting
	Running
	Stopping
	FinalWrite
	Stopped
)

// String returns the state name used in logs and API responses.
func (s CoreState) String() string {
	switch s {
	case NotRunning:
		return "not_running"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case FinalWrite:
		return "final_write"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// State holds the current CoreState. The zero value is NotRunning.
type State struct {
	v atomic.Int32
}

// NewState returns a State initialised to s.
func NewState(s CoreState) *State {
	st := &State{}
	st.Set(s)
	return st
}

// Set moves to s.
func (st *State) Set(s CoreState) {
	st.v.Store(int32(s))
}

// Get returns the current state.
func (st *State) Get() CoreState {
	return CoreState(st.v.Load())
}

// IsRunning reports whether requests should be served: the hub is either
// starting up or fully running.
func (st *State) IsRunning() bool {
	switch st.Get() {
	case Starting, Running:
		return true
	default:
		return false
	}
}
