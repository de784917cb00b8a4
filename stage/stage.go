package stage

import (
	"sync/atomic"
)

type Stage string

const (
	Init         Stage = "Init"         // The default stage of a scene
	Loading      Stage = "Loading"      // Scene is moved to this stage while a document is being loaded
	Ready        Stage = "Ready"        // Scene is moved to this stage when it can accept mutations
	ShuttingDown Stage = "ShuttingDown" // Scene is moved to this stage when Shutdown() is called
	ShutDown     Stage = "ShutDown"     // Scene is moved to this stage when it has successfully shut down
)

type Manager struct {
	current *atomic.Value
}

func NewManager() *Manager {
	m := &Manager{
		current: &atomic.Value{},
	}
	m.Store(Init)
	return m
}

func (m *Manager) CompareAndSwap(oldStage, newStage Stage) (swapped bool) {
	return m.current.CompareAndSwap(oldStage, newStage)
}

func (m *Manager) Current() Stage {
	return m.current.Load().(Stage)
}

func (m *Manager) Store(val Stage) {
	m.current.Store(val)
}

func (m *Manager) Swap(newStage Stage) (oldStage Stage) {
	return m.current.Swap(newStage).(Stage)
}
