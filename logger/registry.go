package logger

import "sync"

// components caches one logger per component name. Init clears it so
// loggers derived from a previous global pick up the new configuration.
var components = struct {
	sync.RWMutex
	byName map[string]*Logger
}{byName: make(map[string]*Logger)}

// Register installs l as the logger for component name, replacing the
// derived one. Tests use it to capture a component's output.
func Register(name string, l *Logger) {
	components.Lock()
	defer components.Unlock()
	components.byName[name] = l
}

// Get returns the logger for component name, deriving it from the global
// logger on first use.
func Get(name string) *Logger {
	components.RLock()
	l, ok := components.byName[name]
	components.RUnlock()
	if ok {
		return l
	}

	components.Lock()
	defer components.Unlock()
	if l, ok := components.byName[name]; ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	components.byName[name] = l
	return l
}

func resetRegistry() {
	components.Lock()
	defer components.Unlock()
	components.byName = make(map[string]*Logger)
}
