package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/pbdeck/pbdeck/internal/catalog"
	"github.com/pbdeck/pbdeck/internal/engine"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/outbuf"
	"github.com/pbdeck/pbdeck/internal/playbook"
)

var (
	runHostsFlag string
	runVaultFlag bool
)

// runCmd executes one playbook without the interactive console.
var runCmd = &cobra.Command{
	Use:   "run [playbook]",
	Short: "Run a playbook without the interactive console",
	Long: `Run a playbook headlessly, streaming output to stdout.

The playbook is looked up in the configured catalog by filename; a path
to a file outside the catalog also works. With --vault the passphrase is
read from the terminal (never from argv) and delivered to the engine
over its stdin pipe.

Examples:
  pbdeck run backup_switch.yml --hosts sw1,sw2
  pbdeck run site_upgrade.yml --hosts rt1 --vault`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runHeadless(args[0], runHostsFlag, runVaultFlag)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&runHostsFlag, "hosts", "", "comma-separated hosts to run against (required)")
	runCmd.Flags().BoolVar(&runVaultFlag, "vault", false, "prompt for a vault passphrase")
}

func runHeadless(name, hostsCSV string, useVault bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hosts := splitHosts(hostsCSV)
	if len(hosts) == 0 {
		return errors.New(errors.ErrRun,
			"No hosts given",
			"Pass --hosts with a comma-separated host list")
	}

	log := logger.NewEnvLogger("[run]")
	cat := catalog.New(cfg.InventoryGlob, cfg.PlaybookGlob, log)
	if err := cat.Load(); err != nil {
		return err
	}
	snap := cat.Snapshot()

	pb, ok := playbook.Find(snap.Playbooks, name)
	if !ok {
		// Fall back to a direct path outside the catalog.
		if _, statErr := os.Stat(name); statErr != nil {
			return errors.New(errors.ErrCatalog,
				"Playbook not found: "+name,
				"Use `pbdeck playbooks` to list the catalog, or pass a file path")
		}
		pb = playbook.Playbook{Name: name, Path: name}
	}

	var secret []byte
	if useVault {
		secret, err = promptPassphrase()
		if err != nil {
			return err
		}
	}

	buf := outbuf.New(cfg.Output.BufferLines)
	eng := engine.New(cfg.Engine, buf, log)

	printer := newLinePrinter(buf, cfg.Output.Color)
	eng.SetNotify(printer.drain)

	var files []string
	if snap.Inventory != nil {
		files = snap.Inventory.Files
	}
	if _, err := eng.Start(engine.Spec{
		Hosts:       hosts,
		Playbook:    pb.Path,
		Inventories: files,
		Secret:      secret,
	}); err != nil {
		return err
	}

	// Ctrl-C cancels the run; the engine escalates per config.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		<-sigChan
		eng.Cancel()
	}()

	final := eng.Wait()
	printer.drain()

	switch final.State {
	case engine.StateSucceeded:
		return nil
	case engine.StateCancelled:
		return errors.New(errors.ErrRun, "Run cancelled", "")
	default:
		return errors.New(errors.ErrRun,
			fmt.Sprintf("Run failed with exit code %d", final.ExitCode),
			"Inspect the output above for the failing task")
	}
}

func splitHosts(csv string) []string {
	var out []string
	for _, h := range strings.Split(csv, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// promptPassphrase reads a masked passphrase from the terminal. The caller
// hands the bytes to the engine, which zeroizes them after delivery.
func promptPassphrase() ([]byte, error) {
	fmt.Fprint(os.Stderr, "Vault passphrase: ")
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrVault,
			"Cannot read passphrase",
			"Run from an interactive terminal when using --vault")
	}
	if len(secret) == 0 {
		return nil, errors.New(errors.ErrVault,
			"Empty passphrase",
			"Type the vault passphrase at the prompt")
	}
	return secret, nil
}

// linePrinter streams buffer lines to stdout in sequence order. drain runs
// on engine goroutines and once more after Wait, so it is locked and keeps
// the next unprinted sequence number.
type linePrinter struct {
	mu   sync.Mutex
	buf  *outbuf.Buffer
	next uint64
	out  *termenv.Output
}

func newLinePrinter(buf *outbuf.Buffer, colorMode string) *linePrinter {
	out := termenv.NewOutput(os.Stdout)
	if colorMode == "never" {
		out = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.Ascii))
	}
	return &linePrinter{buf: buf, out: out}
}

func (p *linePrinter) drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, line := range p.buf.Snapshot() {
		if line.Seq < p.next {
			continue
		}
		p.next = line.Seq + 1
		switch line.Source {
		case outbuf.SourceStderr:
			fmt.Fprintln(p.out, p.out.String(line.Text).Foreground(termenv.ANSIYellow))
		case outbuf.SourceSystem:
			fmt.Fprintln(p.out, p.out.String(line.Text).Foreground(termenv.ANSICyan))
		default:
			fmt.Fprintln(p.out, line.Text)
		}
	}
}
