package core

// ModuleID uniquely identifies a module, namespaced by concern
// (e.g. "channel.telegram", "store.bindings").
type ModuleID string

// ModuleInfo describes a registered module: its ID and a constructor
// returning a fresh, unconfigured instance.
type ModuleInfo struct {
	ID  ModuleID
	New func() Module
}

// Module is the minimal interface every craftbridge module implements.
// Modules opt into lifecycle phases by additionally implementing the
// interfaces in lifecycle.go.
type Module interface {
	ModuleInfo() ModuleInfo
}
