package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/pbdeck/pbdeck/internal/ui"
)

// modalKind enumerates the closed set of dialogs. While any modal is open
// it consumes every key; the panes behind it are rendered without focus
// highlighting so the operator keeps context.
type modalKind int

const (
	modalHosts modalKind = iota
	modalVault
	modalQuit
)

// modal is one entry on the modal stack.
type modal struct {
	kind modalKind

	// host selection state
	hosts   []string
	checked map[string]bool
	cursor  int

	// vault passphrase input
	input textinput.Model
}

// newHostModal builds the host picker seeded from the current selection.
// The selection itself is only mutated on confirm.
func newHostModal(hosts []string, selected map[string]bool) modal {
	checked := make(map[string]bool, len(selected))
	for h := range selected {
		checked[h] = true
	}
	return modal{kind: modalHosts, hosts: hosts, checked: checked}
}

// newVaultModal builds the masked passphrase prompt.
func newVaultModal() modal {
	ti := textinput.New()
	ti.Placeholder = "vault passphrase"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 256
	ti.Focus()
	return modal{kind: modalVault, input: ti}
}

// newQuitModal asks whether to cancel the live run before exiting.
func newQuitModal() modal {
	return modal{kind: modalQuit}
}

// takeSecret returns the typed passphrase as bytes and clears the input.
// The returned slice is the only live copy; the engine zeroizes it after
// handoff.
func (d *modal) takeSecret() []byte {
	secret := []byte(d.input.Value())
	d.input.Reset()
	return secret
}

// render draws the modal box for the given terminal width.
func (d modal) render(width int) string {
	boxWidth := width * 2 / 3
	if boxWidth > 60 {
		boxWidth = 60
	}
	if boxWidth < 30 {
		boxWidth = 30
	}
	inner := boxWidth - 6 // border + padding

	var sb strings.Builder
	switch d.kind {
	case modalHosts:
		sb.WriteString(modalTitleStyle.Render("Select hosts"))
		sb.WriteString("\n\n")
		if len(d.hosts) == 0 {
			sb.WriteString(dimStyle.Render("no hosts in this target type"))
			sb.WriteString("\n")
		}
		for i, h := range d.hosts {
			box := ui.SymbolUnchecked
			if d.checked[h] {
				box = checkedStyle.Render(ui.SymbolSelected)
			}
			line := fmt.Sprintf("%s %s", box, h)
			if i == d.cursor {
				line = cursorLineStyle.Render("▸ ") + line
			} else {
				line = "  " + line
			}
			sb.WriteString(truncate.String(line, uint(inner)))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("space toggle · a all · enter confirm · esc cancel"))

	case modalVault:
		sb.WriteString(modalTitleStyle.Render("Vault passphrase"))
		sb.WriteString("\n\n")
		sb.WriteString(d.input.View())
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("enter run · esc cancel"))

	case modalQuit:
		sb.WriteString(modalTitleStyle.Render("Run in progress"))
		sb.WriteString("\n\n")
		sb.WriteString("Cancel the running playbook and quit?")
		sb.WriteString("\n\n")
		sb.WriteString(dimStyle.Render("y cancel and quit · n/esc keep running"))
	}

	return modalStyle.Width(boxWidth).Render(sb.String())
}

// overlay splices the modal box over the center of the background view.
func overlay(bg, fg string, width, height int) string {
	bgLines := strings.Split(bg, "\n")
	fgLines := strings.Split(fg, "\n")

	top := (height - len(fgLines)) / 2
	if top < 0 {
		top = 0
	}
	for i, line := range fgLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		bgLines[row] = lipgloss.PlaceHorizontal(width, lipgloss.Center, line)
	}
	return strings.Join(bgLines, "\n")
}
