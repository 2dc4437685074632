package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps command names and aliases to commands. Commands add
// themselves from init, so the set is fixed by the time main runs.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds a command under its name and every alias. A name or
// alias that is already taken is an error; nothing is registered then.
func (r *Registry) Register(c Command) error {
	names := append([]string{c.Name()}, c.Aliases()...)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, taken := r.cmds[name]; taken {
			return fmt.Errorf("command already registered: %s", name)
		}
	}
	for _, name := range names {
		r.cmds[name] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns every registered command once, sorted by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]Command)
	for _, cmd := range r.cmds {
		byName[cmd.Name()] = cmd
	}

	all := make([]Command, 0, len(byName))
	for _, cmd := range byName {
		all = append(all, cmd)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name() < all[j].Name() })
	return all
}

// DefaultRegistry holds the commands this binary ships with.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry, panicking on a name
// collision. Collisions are programmer errors caught at init.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
