package inventory

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pbdeck/pbdeck/internal/errors"
)

// Catalog is the merged, read-only host catalog handed to the UI.
type Catalog struct {
	Files      []string
	Groups     []string            // target types, sorted
	GroupHosts map[string][]string // group -> sorted host names
	Hosts      map[string]Host     // by host name
}

// Merge combines parsed inventory parts: group host-sets union, and the
// first non-default site seen for a host wins.
func Merge(files []string, parts []*Part) *Catalog {
	c := &Catalog{
		Files:      files,
		GroupHosts: make(map[string][]string),
		Hosts:      make(map[string]Host),
	}

	groupSets := make(map[string]map[string]struct{})
	for _, p := range parts {
		for g, hosts := range p.GroupHosts {
			set, ok := groupSets[g]
			if !ok {
				set = make(map[string]struct{})
				groupSets[g] = set
			}
			for _, h := range hosts {
				set[h] = struct{}{}
			}
		}
		for h, site := range p.HostSites {
			existing, seen := c.Hosts[h]
			if !seen {
				c.Hosts[h] = Host{Name: h, Site: site, Address: p.HostAddrs[h]}
				continue
			}
			if existing.Site == DefaultSite && site != DefaultSite {
				existing.Site = site
			}
			if existing.Address == "" {
				existing.Address = p.HostAddrs[h]
			}
			c.Hosts[h] = existing
		}
	}

	for g, set := range groupSets {
		hosts := make([]string, 0, len(set))
		for h := range set {
			hosts = append(hosts, h)
		}
		sort.Strings(hosts)
		c.Groups = append(c.Groups, g)
		c.GroupHosts[g] = hosts

		for _, h := range hosts {
			entry, ok := c.Hosts[h]
			if !ok {
				entry = Host{Name: h, Site: DefaultSite}
			}
			entry.Groups = append(entry.Groups, g)
			c.Hosts[h] = entry
		}
	}
	sort.Strings(c.Groups)

	return c
}

// LoadGlob loads and merges every inventory file matching the pattern.
// Broken files are skipped and reported in errs; the catalog stays usable
// as long as at least one file parsed.
func LoadGlob(pattern string) (*Catalog, []error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, []error{errors.WrapWithCode(err, errors.ErrCatalog,
			"Invalid inventory glob: "+pattern,
			"Check the inventory_glob pattern in your config")}
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return nil, []error{errors.New(errors.ErrCatalog,
			"No inventories found matching "+pattern,
			"Create an inventory file or adjust inventory_glob")}
	}

	var errs []error
	var files []string
	var parts []*Part
	for _, path := range matches {
		part, err := ParseFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		files = append(files, path)
		parts = append(parts, part)
	}

	if len(parts) == 0 {
		errs = append(errs, errors.New(errors.ErrCatalog,
			"Failed to load any inventory matching "+pattern,
			"Fix the reported parse errors"))
		return nil, errs
	}

	return Merge(files, parts), errs
}

// Sites returns the distinct sites present in the catalog, sorted.
func (c *Catalog) Sites() []string {
	set := make(map[string]struct{})
	for _, h := range c.Hosts {
		set[h.Site] = struct{}{}
	}
	sites := make([]string, 0, len(set))
	for s := range set {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	return sites
}

// GroupsForSite returns the groups that contain at least one host in site.
// SiteAll matches every group.
func (c *Catalog) GroupsForSite(site string) []string {
	if site == SiteAll || site == "" {
		out := make([]string, len(c.Groups))
		copy(out, c.Groups)
		return out
	}
	var out []string
	for _, g := range c.Groups {
		for _, h := range c.GroupHosts[g] {
			if c.Hosts[h].Site == site {
				out = append(out, g)
				break
			}
		}
	}
	return out
}

// HostsIn returns the hosts of a group, optionally restricted to a site.
func (c *Catalog) HostsIn(group, site string) []string {
	var out []string
	for _, h := range c.GroupHosts[group] {
		if site == SiteAll || site == "" || c.Hosts[h].Site == site {
			out = append(out, h)
		}
	}
	return out
}

// FilterSite returns a catalog view restricted to hosts whose site matches
// (case folding is the caller's concern; see MatchSite). Groups left with no
// hosts disappear.
func (c *Catalog) FilterSite(site string) *Catalog {
	if site == SiteAll || site == "" {
		return c
	}
	out := &Catalog{
		Files:      c.Files,
		GroupHosts: make(map[string][]string),
		Hosts:      make(map[string]Host),
	}
	for name, h := range c.Hosts {
		if h.Site == site {
			out.Hosts[name] = h
		}
	}
	for _, g := range c.Groups {
		var hosts []string
		for _, h := range c.GroupHosts[g] {
			if _, ok := out.Hosts[h]; ok {
				hosts = append(hosts, h)
			}
		}
		if len(hosts) > 0 {
			out.Groups = append(out.Groups, g)
			out.GroupHosts[g] = hosts
		}
	}
	return out
}

// MatchSite finds the catalog site matching the given filter
// case-insensitively. Returns empty when nothing matches.
func (c *Catalog) MatchSite(filter string) string {
	want := strings.ToLower(strings.TrimSpace(filter))
	if want == "" {
		return ""
	}
	for _, s := range c.Sites() {
		if strings.ToLower(s) == want {
			return s
		}
	}
	return ""
}
