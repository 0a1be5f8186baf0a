package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleInventory = `
all:
  vars:
    site: dc1
  children:
    switches:
      hosts:
        sw1:
          ansible_host: 10.0.0.1
        sw2: {}
    routers:
      vars:
        site: dc2
      hosts:
        rt1: {}
        rt2:
          site: edge
`

func TestParseGroupsAndHosts(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	assert.Equal(t, []string{"routers", "switches"}, part.Groups)
	assert.Equal(t, []string{"sw1", "sw2"}, part.GroupHosts["switches"])
	assert.Equal(t, []string{"rt1", "rt2"}, part.GroupHosts["routers"])
}

func TestParseSiteInheritance(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	// Inherited from all.vars.site
	assert.Equal(t, "dc1", part.HostSites["sw1"])
	assert.Equal(t, "dc1", part.HostSites["sw2"])
	// Group vars.site overrides the inherited site
	assert.Equal(t, "dc2", part.HostSites["rt1"])
	// Host-level site overrides the group
	assert.Equal(t, "edge", part.HostSites["rt2"])
}

func TestParseAddressVar(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1", part.HostAddrs["sw1"])
	assert.Empty(t, part.HostAddrs["sw2"])
}

func TestParseDefaultSite(t *testing.T) {
	part, err := Parse([]byte(`
all:
  children:
    firewalls:
      hosts:
        fw1: {}
`))
	require.NoError(t, err)

	assert.Equal(t, DefaultSite, part.HostSites["fw1"])
}

func TestParseTopLevelGroup(t *testing.T) {
	part, err := Parse([]byte(`
loadbalancers:
  hosts:
    lb1:
      site: dc3
`))
	require.NoError(t, err)

	assert.Contains(t, part.Groups, "loadbalancers")
	assert.Equal(t, "dc3", part.HostSites["lb1"])
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("all: [unterminated"))
	assert.Error(t, err)
}

func TestParseEmptyDocument(t *testing.T) {
	part, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Empty(t, part.Groups)
}

func TestMergePrefersNamedSite(t *testing.T) {
	a, err := Parse([]byte(`
all:
  children:
    switches:
      hosts:
        sw1: {}
`))
	require.NoError(t, err)
	b, err := Parse([]byte(`
all:
  vars:
    site: dc9
  children:
    switches:
      hosts:
        sw1: {}
        sw9: {}
`))
	require.NoError(t, err)

	cat := Merge([]string{"a.yml", "b.yml"}, []*Part{a, b})

	// sw1 is "other" in file a; the named site from file b wins.
	assert.Equal(t, "dc9", cat.Hosts["sw1"].Site)
	assert.Equal(t, []string{"sw1", "sw9"}, cat.GroupHosts["switches"])
}

func TestMergeUnionsGroups(t *testing.T) {
	a, err := Parse([]byte(`
all:
  children:
    switches:
      hosts:
        sw1: {}
`))
	require.NoError(t, err)
	b, err := Parse([]byte(`
all:
  children:
    routers:
      hosts:
        rt1: {}
`))
	require.NoError(t, err)

	cat := Merge([]string{"a.yml", "b.yml"}, []*Part{a, b})

	assert.Equal(t, []string{"routers", "switches"}, cat.Groups)
	assert.Equal(t, []string{"switches"}, cat.Hosts["sw1"].Groups)
}

func TestCatalogSitesAndFilters(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)
	cat := Merge([]string{"inv.yml"}, []*Part{part})

	assert.Equal(t, []string{"dc1", "dc2", "edge"}, cat.Sites())
	assert.Equal(t, []string{"routers", "switches"}, cat.GroupsForSite(SiteAll))
	assert.Equal(t, []string{"switches"}, cat.GroupsForSite("dc1"))
	assert.Equal(t, []string{"rt2"}, cat.HostsIn("routers", "edge"))

	filtered := cat.FilterSite("dc2")
	assert.Equal(t, []string{"routers"}, filtered.Groups)
	assert.Equal(t, []string{"rt1"}, filtered.GroupHosts["routers"])
}

func TestMatchSiteCaseInsensitive(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)
	cat := Merge([]string{"inv.yml"}, []*Part{part})

	assert.Equal(t, "dc1", cat.MatchSite("DC1"))
	assert.Equal(t, "edge", cat.MatchSite(" Edge "))
	assert.Empty(t, cat.MatchSite("mars"))
}

func TestLoadGlobSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.yml"), []byte(sampleInventory), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yml"), []byte("all: [broken"), 0o644))

	cat, errs := LoadGlob(filepath.Join(dir, "*.yml"))

	require.NotNil(t, cat)
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{filepath.Join(dir, "good.yml")}, cat.Files)
	assert.Contains(t, cat.Groups, "switches")
}

func TestLoadGlobNoMatches(t *testing.T) {
	cat, errs := LoadGlob(filepath.Join(t.TempDir(), "*.yml"))

	assert.Nil(t, cat)
	require.Len(t, errs, 1)
}

func TestAddressFallsBackToName(t *testing.T) {
	part, err := Parse([]byte(sampleInventory))
	require.NoError(t, err)
	cat := Merge([]string{"inv.yml"}, []*Part{part})

	assert.Equal(t, "10.0.0.1", cat.Address("sw1"))
	// No ansible_host and (in a clean test env) no ssh_config entry:
	// ssh_config returns the token itself for HostName lookups.
	assert.NotEmpty(t, cat.Address("sw2"))
}
