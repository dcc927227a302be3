package sim

import (
	"log"
	"strings"
	"sync"
)

// Named things have a name that is unique in the simulation.
type Named interface {
	Name() string
}

// A Component is a simulated hardware block. It handles events and owns
// ports.
type Component interface {
	Named
	Handler
	Hookable

	AddPort(name string, port Port)
	GetPortByName(name string) Port
	Ports() []Port

	NotifyRecv(port Port)
	NotifyPortFree(port Port)
}

// ComponentBase keeps the name and the ports of a component.
type ComponentBase struct {
	HookableBase
	sync.Mutex

	name      string
	ports     map[string]Port
	portOrder []string
}

// NewComponentBase creates a ComponentBase without ports.
func NewComponentBase(name string) *ComponentBase {
	c := new(ComponentBase)
	c.name = name
	c.ports = make(map[string]Port)

	return c
}

func (c *ComponentBase) Name() string { return c.name }

// AddPort registers a port under a local name.
func (c *ComponentBase) AddPort(name string, port Port) {
	if _, found := c.ports[name]; found {
		log.Panicf("port %s already exists on component %s", name, c.name)
	}

	c.ports[name] = port
	c.portOrder = append(c.portOrder, name)
}

// GetPortByName returns the port added under name. Unknown names panic.
func (c *ComponentBase) GetPortByName(name string) Port {
	port, found := c.ports[name]
	if !found {
		log.Panicf("component %s has no port %s, it has [%s]",
			c.name, name, strings.Join(c.portOrder, " "))
	}

	return port
}

// Ports returns all the ports of the component in the order they were added.
func (c *ComponentBase) Ports() []Port {
	ports := make([]Port, 0, len(c.portOrder))
	for _, n := range c.portOrder {
		ports = append(ports, c.ports[n])
	}

	return ports
}
