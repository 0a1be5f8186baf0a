// Package playbook discovers automation playbooks and filters them by
// relevance to a target-type group. Relevance comes from an optional
// metadata.device_types list in the playbook's YAML head, or failing that
// from device keywords in the filename.
package playbook

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pbdeck/pbdeck/internal/errors"
	"gopkg.in/yaml.v3"
)

// headLines caps how much of a playbook is read looking for metadata.
const headLines = 80

// deviceKeywords are matched against filenames when no metadata is present.
var deviceKeywords = []string{
	"switch", "router", "firewall", "asa", "nxos", "ios", "iosxe", "iosxr", "pan", "forti",
}

// Playbook is one catalog entry. Immutable once loaded.
type Playbook struct {
	Name        string   // base filename
	Path        string
	Description string   // metadata.description, if present
	Types       []string // lowercase device types
}

// head is the subset of playbook YAML we care about.
type head struct {
	Metadata struct {
		Description string   `yaml:"description"`
		DeviceTypes []string `yaml:"device_types"`
	} `yaml:"metadata"`
}

// LoadGlob discovers playbooks matching the pattern, sorted by filename.
func LoadGlob(pattern string) ([]Playbook, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCatalog,
			"Invalid playbook glob: "+pattern,
			"Check the playbook_glob pattern in your config")
	}
	sort.Strings(matches)

	books := make([]Playbook, 0, len(matches))
	for _, path := range matches {
		books = append(books, load(path))
	}
	return books, nil
}

// load builds a catalog entry for one file. Metadata problems are not
// fatal: the playbook is still listed, with types inferred from its name.
func load(path string) Playbook {
	pb := Playbook{
		Name: filepath.Base(path),
		Path: path,
	}

	if h, ok := readHead(path); ok {
		pb.Description = h.Metadata.Description
		for _, t := range h.Metadata.DeviceTypes {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" {
				pb.Types = append(pb.Types, t)
			}
		}
	}

	if len(pb.Types) == 0 {
		lower := strings.ToLower(pb.Name)
		for _, kw := range deviceKeywords {
			if strings.Contains(lower, kw) {
				pb.Types = append(pb.Types, kw)
			}
		}
	}

	return pb
}

// readHead parses the first headLines lines of the file as YAML.
func readHead(path string) (head, bool) {
	var h head

	f, err := os.Open(path)
	if err != nil {
		return h, false
	}
	defer f.Close()

	var sb strings.Builder
	scanner := bufio.NewScanner(f)
	for i := 0; i < headLines && scanner.Scan(); i++ {
		sb.WriteString(scanner.Text())
		sb.WriteByte('\n')
	}

	if err := yaml.Unmarshal([]byte(sb.String()), &h); err != nil {
		return h, false
	}
	return h, true
}

// Relevant filters playbooks for a target-type group. Playbooks with no
// device types are generic and always match. When the filter would empty the
// list entirely, the full list is returned so the operator is never stuck.
func Relevant(books []Playbook, group string) []Playbook {
	if group == "" {
		return books
	}

	g := strings.ToLower(group)
	var out []Playbook
	for _, pb := range books {
		if pb.Matches(g) {
			out = append(out, pb)
		}
	}
	if len(out) == 0 {
		return books
	}
	return out
}

// Matches reports whether this playbook is relevant to a lowercase group name.
func (pb Playbook) Matches(group string) bool {
	if len(pb.Types) == 0 {
		return true
	}
	for _, t := range pb.Types {
		if t == group || strings.Contains(t, group) || strings.Contains(group, t) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(pb.Name), group)
}

// Find returns the playbook with the given base filename.
func Find(books []Playbook, name string) (Playbook, bool) {
	for _, pb := range books {
		if pb.Name == name {
			return pb, true
		}
	}
	return Playbook{}, false
}
