package playbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlaybook(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGlobReadsMetadata(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "backup.yml", `---
metadata:
  description: Back up device configs
  device_types:
    - Switch
    - IOS
`)

	books, err := LoadGlob(filepath.Join(dir, "*.yml"))
	require.NoError(t, err)
	require.Len(t, books, 1)

	assert.Equal(t, "backup.yml", books[0].Name)
	assert.Equal(t, "Back up device configs", books[0].Description)
	assert.Equal(t, []string{"switch", "ios"}, books[0].Types)
}

func TestLoadGlobInfersTypesFromFilename(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "upgrade_switch_nxos.yml", "---\n- hosts: all\n")
	writePlaybook(t, dir, "generic_facts.yml", "---\n- hosts: all\n")

	books, err := LoadGlob(filepath.Join(dir, "*.yml"))
	require.NoError(t, err)
	require.Len(t, books, 2)

	generic, ok := Find(books, "generic_facts.yml")
	require.True(t, ok)
	assert.Empty(t, generic.Types)

	upgrade, ok := Find(books, "upgrade_switch_nxos.yml")
	require.True(t, ok)
	assert.Equal(t, []string{"switch", "nxos"}, upgrade.Types)
}

func TestLoadGlobMalformedHeadStillListed(t *testing.T) {
	dir := t.TempDir()
	writePlaybook(t, dir, "router_reset.yml", "{{ not yaml at all\n")

	books, err := LoadGlob(filepath.Join(dir, "*.yml"))
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, []string{"router"}, books[0].Types)
}

func TestRelevantFiltering(t *testing.T) {
	books := []Playbook{
		{Name: "backup_switch.yml", Types: []string{"switch"}},
		{Name: "router_bgp.yml", Types: []string{"router"}},
		{Name: "gather_facts.yml"},
	}

	switches := Relevant(books, "switches")
	require.Len(t, switches, 2)
	assert.Equal(t, "backup_switch.yml", switches[0].Name)
	assert.Equal(t, "gather_facts.yml", switches[1].Name)
}

func TestRelevantEmptyFilterFallsBack(t *testing.T) {
	books := []Playbook{
		{Name: "backup_switch.yml", Types: []string{"switch"}},
	}

	// No match for the group: the full list comes back rather than nothing.
	out := Relevant(books, "loadbalancers")
	assert.Equal(t, books, out)
}

func TestRelevantNoGroup(t *testing.T) {
	books := []Playbook{{Name: "a.yml"}, {Name: "b.yml"}}
	assert.Equal(t, books, Relevant(books, ""))
}

func TestMatchesByFilename(t *testing.T) {
	pb := Playbook{Name: "corefirewall_audit.yml", Types: []string{"asa"}}
	assert.True(t, pb.Matches("firewall"))
}

func TestFindMissing(t *testing.T) {
	_, ok := Find(nil, "nope.yml")
	assert.False(t, ok)
}
