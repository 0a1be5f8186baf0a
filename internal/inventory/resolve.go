package inventory

import (
	"github.com/kevinburke/ssh_config"
)

// Address resolves a host's connection address. An ansible_host var wins;
// otherwise the user's ssh config may map the name to a HostName; failing
// both, the inventory name itself is the address.
func (c *Catalog) Address(name string) string {
	if h, ok := c.Hosts[name]; ok && h.Address != "" {
		return h.Address
	}
	if hostname := ssh_config.Get(name, "HostName"); hostname != "" {
		return hostname
	}
	return name
}
