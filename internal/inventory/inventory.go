// Package inventory loads Ansible-style YAML inventories into an in-memory
// Site → TargetType (group) → Host catalog. Hosts may live under
// all.children.* or under top-level groups; a host's site comes from its own
// `site` var, or is inherited from the nearest enclosing group's vars.site,
// defaulting to "other".
package inventory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pbdeck/pbdeck/internal/errors"
	"gopkg.in/yaml.v3"
)

// DefaultSite is assigned to hosts with no site var anywhere in their group chain.
const DefaultSite = "other"

// SiteAll is the pseudo-site that matches every host.
const SiteAll = "all"

// Host is a single inventory entry. Immutable once the catalog is built.
type Host struct {
	Name    string
	Address string   // ansible_host var; empty means unresolved (see Catalog.Address)
	Site    string
	Groups  []string // target-type groups this host belongs to
}

// Part is the parsed content of one inventory file, before merging.
type Part struct {
	Groups     []string
	GroupHosts map[string][]string
	HostSites  map[string]string
	HostAddrs  map[string]string
}

// Parse reads a single YAML inventory document.
func Parse(data []byte) (*Part, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCatalog,
			"Failed to parse inventory YAML",
			"Check the file is a valid YAML inventory")
	}
	return parseDoc(doc), nil
}

// ParseFile reads and parses one inventory file.
func ParseFile(path string) (*Part, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCatalog,
			"Cannot read inventory file: "+path,
			"Check the path and permissions")
	}
	part, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCatalog,
			fmt.Sprintf("Inventory %s is not valid YAML", path),
			"Fix the file or remove it from the inventory glob")
	}
	return part, nil
}

func parseDoc(doc map[string]interface{}) *Part {
	p := &Part{
		GroupHosts: make(map[string][]string),
		HostSites:  make(map[string]string),
		HostAddrs:  make(map[string]string),
	}
	if doc == nil {
		return p
	}

	root, _ := doc["all"].(map[string]interface{})
	collectSites(root, p, DefaultSite)

	// Top-level groups outside `all` also contribute hosts and sites.
	for name, raw := range doc {
		if name == "all" {
			continue
		}
		group, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		collectSites(group, p, DefaultSite)
	}

	// Target-type groups live under all.children.*.
	if children, ok := root["children"].(map[string]interface{}); ok {
		for name, raw := range children {
			group, _ := raw.(map[string]interface{})
			p.addGroup(name, collectHosts(group))
		}
	}

	for name, raw := range doc {
		if name == "all" {
			continue
		}
		group, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		if _, seen := p.GroupHosts[name]; !seen {
			p.addGroup(name, collectHosts(group))
		}
	}

	sort.Strings(p.Groups)
	return p
}

func (p *Part) addGroup(name string, hosts map[string]struct{}) {
	list := make([]string, 0, len(hosts))
	for h := range hosts {
		list = append(list, h)
	}
	sort.Strings(list)
	p.Groups = append(p.Groups, name)
	p.GroupHosts[name] = list
}

// collectHosts gathers host names under a group, recursing into children.
func collectHosts(group map[string]interface{}) map[string]struct{} {
	hosts := make(map[string]struct{})
	if group == nil {
		return hosts
	}
	if hs, ok := group["hosts"].(map[string]interface{}); ok {
		for name := range hs {
			hosts[name] = struct{}{}
		}
	}
	if children, ok := group["children"].(map[string]interface{}); ok {
		for _, raw := range children {
			child, _ := raw.(map[string]interface{})
			for name := range collectHosts(child) {
				hosts[name] = struct{}{}
			}
		}
	}
	return hosts
}

// collectSites walks a group subtree recording each host's site and address.
// A group's vars.site overrides the inherited site for its subtree; a
// host-level site var overrides the group. First non-default site wins when
// the same host appears twice.
func collectSites(group map[string]interface{}, p *Part, inherited string) {
	if group == nil {
		return
	}

	siteHere := inherited
	if vars, ok := group["vars"].(map[string]interface{}); ok {
		if s := stringVar(vars, "site"); s != "" {
			siteHere = s
		}
	}

	if hs, ok := group["hosts"].(map[string]interface{}); ok {
		for name, rawAttrs := range hs {
			hostSite := siteHere
			attrs, _ := rawAttrs.(map[string]interface{})
			if s := stringVar(attrs, "site"); s != "" {
				hostSite = s
			}
			if existing, seen := p.HostSites[name]; !seen || existing == DefaultSite {
				p.HostSites[name] = hostSite
			}
			if addr := stringVar(attrs, "ansible_host"); addr != "" {
				if _, seen := p.HostAddrs[name]; !seen {
					p.HostAddrs[name] = addr
				}
			}
		}
	}

	if children, ok := group["children"].(map[string]interface{}); ok {
		for _, raw := range children {
			child, _ := raw.(map[string]interface{})
			collectSites(child, p, siteHere)
		}
	}
}

func stringVar(m map[string]interface{}, key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m[key]; ok && v != nil {
		return strings.TrimSpace(fmt.Sprintf("%v", v))
	}
	return ""
}
