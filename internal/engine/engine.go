// Package engine spawns playbook runs as subprocesses and streams their
// output into the shared line buffer. At most one run is live at a time;
// a second Start while one is running is rejected.
//
// Secret hygiene: the vault passphrase is delivered to the child over a
// pipe (or the pty), never through argv, the environment, or a file, and
// the in-memory copy is zeroized as soon as the handoff completes.
package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/outbuf"
	"github.com/pbdeck/pbdeck/internal/ui"
	"github.com/pbdeck/pbdeck/internal/util"
)

// maxLineBytes bounds a single scanned output line. Ansible can emit very
// long JSON-ish lines for large device configs.
const maxLineBytes = 1 << 20

// Engine owns the single run slot. All methods are safe for concurrent use.
type Engine struct {
	cfg    config.EngineConfig
	buf    *outbuf.Buffer
	log    logger.Logger
	notify func()

	mu  sync.Mutex
	run *run
}

// run is the mutable backing state for one session. Fields past cmd are
// guarded by the owning Engine's mutex.
type run struct {
	view            SessionView
	cmd             *exec.Cmd
	done            chan struct{}
	cancelRequested bool
}

// New creates an engine that appends run output to buf.
func New(cfg config.EngineConfig, buf *outbuf.Buffer, log logger.Logger) *Engine {
	if log == nil {
		log = logger.Noop()
	}
	return &Engine{cfg: cfg, buf: buf, log: log}
}

// SetNotify registers a callback invoked after every buffer append and
// state change. The TUI uses this to wake its event loop; the callback
// must be safe to call from any goroutine.
func (e *Engine) SetNotify(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notify = fn
}

func (e *Engine) emit() {
	e.mu.Lock()
	fn := e.notify
	e.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Running reports whether a run is currently live.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.run != nil && !e.run.view.State.Terminal()
}

// Snapshot returns a copy of the current (or most recent) session view.
// The bool is false when no run has ever been started.
func (e *Engine) Snapshot() (SessionView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.run == nil {
		return SessionView{}, false
	}
	return e.run.view, true
}

// Wait blocks until the current run reaches a terminal state and returns
// the final view. Returns immediately when no run exists.
func (e *Engine) Wait() SessionView {
	e.mu.Lock()
	r := e.run
	e.mu.Unlock()
	if r == nil {
		return SessionView{}
	}
	<-r.done
	e.mu.Lock()
	defer e.mu.Unlock()
	return r.view
}

// Start launches a run. The spec's secret is consumed: it is written to the
// child and zeroized before Start returns, on every path including errors.
// A spawn failure does not return an error; it produces a session already
// in StateFailed with an explanatory line in the buffer.
func (e *Engine) Start(spec Spec) (SessionView, error) {
	defer Zeroize(spec.Secret)

	if len(spec.Hosts) == 0 {
		return SessionView{}, errors.New(errors.ErrRun,
			"No hosts selected for this run",
			"Select at least one host before starting")
	}
	if spec.Playbook == "" {
		return SessionView{}, errors.New(errors.ErrRun,
			"No playbook selected for this run",
			"Highlight a playbook in the playbook pane")
	}

	e.mu.Lock()
	if e.run != nil && !e.run.view.State.Terminal() {
		e.mu.Unlock()
		return SessionView{}, errors.New(errors.ErrRun,
			"A run is already in progress",
			"Cancel it with ctrl+k or wait for it to finish")
	}

	args := e.buildArgs(spec)
	cmd := exec.Command(e.cfg.Command, args...)
	cmd.Env = e.buildEnv()
	setProcGroup(cmd)

	r := &run{
		view: SessionView{
			Hosts:     append([]string(nil), spec.Hosts...),
			Playbook:  spec.Playbook,
			State:     StateRunning,
			VaultUsed: len(spec.Secret) > 0,
			StartedAt: time.Now(),
		},
		cmd:  cmd,
		done: make(chan struct{}),
	}
	e.run = r
	e.mu.Unlock()

	// Echo the command line. Args never carry the secret; vault mode only
	// adds the prompt flag.
	e.buf.Append(outbuf.SourceSystem,
		"$ "+e.cfg.Command+" "+util.QuoteJoin(args))
	e.emit()

	var spawnErr error
	if e.cfg.PTY {
		spawnErr = e.startPTY(r, spec.Secret)
	} else {
		spawnErr = e.startPipes(r, spec.Secret)
	}
	if spawnErr != nil {
		e.log.Error("engine: spawn failed: %v", spawnErr)
		e.failSpawn(r, spawnErr)
	}

	e.mu.Lock()
	view := r.view
	e.mu.Unlock()
	return view, nil
}

// startPipes wires separate stdout/stderr pipes, hands off the secret over
// stdin, and starts the reader and waiter goroutines.
func (e *Engine) startPipes(r *run, secret []byte) error {
	cmd := r.cmd

	var stdin io.WriteCloser
	if len(secret) > 0 {
		p, err := cmd.StdinPipe()
		if err != nil {
			return err
		}
		stdin = p
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	if stdin != nil {
		// The passphrase is small enough to fit in the pipe buffer, so
		// this write cannot block on the child. The newline goes out
		// separately: appending it to the slice could copy the secret
		// into a new array the zeroize pass would miss.
		_, werr := stdin.Write(secret)
		if werr == nil {
			_, werr = stdin.Write([]byte{'\n'})
		}
		Zeroize(secret)
		_ = stdin.Close()
		if werr != nil {
			e.buf.Append(outbuf.SourceSystem,
				ui.SymbolFail+" could not deliver vault passphrase: "+werr.Error())
			e.emit()
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go e.readStream(stdout, outbuf.SourceStdout, &wg)
	go e.readStream(stderr, outbuf.SourceStderr, &wg)

	go func() {
		wg.Wait()
		e.finalize(r, cmd.Wait())
	}()
	return nil
}

// readStream copies one output stream into the buffer line by line.
func (e *Engine) readStream(rd io.Reader, src outbuf.Source, wg *sync.WaitGroup) {
	defer wg.Done()
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	for sc.Scan() {
		// Malformed byte sequences become replacement runes instead of
		// aborting the run.
		e.buf.Append(src, strings.ToValidUTF8(sc.Text(), "�"))
		e.emit()
	}
	if err := sc.Err(); err != nil {
		e.buf.Append(outbuf.SourceSystem, "stream read error: "+err.Error())
		e.emit()
	}
}

// failSpawn marks the session Failed when the child never started.
func (e *Engine) failSpawn(r *run, err error) {
	e.mu.Lock()
	r.view.State = StateFailed
	r.view.ExitCode = -1
	r.view.EndedAt = time.Now()
	close(r.done)
	e.mu.Unlock()

	e.buf.Append(outbuf.SourceSystem, fmt.Sprintf(
		"%s cannot start %s: %v", ui.SymbolFail, e.cfg.Command, err))
	e.emit()
}

// finalize records the terminal state once the child has exited and all
// output has been drained. A requested cancel wins over the exit code, so
// a process that dies from our SIGTERM reports Cancelled, not Failed.
func (e *Engine) finalize(r *run, waitErr error) {
	exitCode := 0
	if waitErr != nil {
		exitCode = -1
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}

	e.mu.Lock()
	r.view.EndedAt = time.Now()
	r.view.ExitCode = exitCode
	switch {
	case r.cancelRequested:
		r.view.State = StateCancelled
	case exitCode == 0:
		r.view.State = StateSucceeded
	default:
		r.view.State = StateFailed
	}
	view := r.view
	close(r.done)
	e.mu.Unlock()

	elapsed := view.EndedAt.Sub(view.StartedAt).Round(100 * time.Millisecond)
	switch view.State {
	case StateSucceeded:
		e.buf.Append(outbuf.SourceSystem, fmt.Sprintf(
			"%s Run finished (exit 0) in %s", ui.SymbolSuccess, elapsed))
	case StateCancelled:
		e.buf.Append(outbuf.SourceSystem, fmt.Sprintf(
			"%s Run cancelled after %s", ui.SymbolCancelled, elapsed))
	default:
		e.buf.Append(outbuf.SourceSystem, fmt.Sprintf(
			"%s Run failed (exit %d) after %s", ui.SymbolFail, exitCode, elapsed))
	}
	e.log.Info("engine: run %s: %s exit=%d elapsed=%s",
		view.State, view.Playbook, exitCode, elapsed)
	e.emit()
}

// Cancel asks the live run to stop: SIGTERM to the process group now,
// SIGKILL after the grace period if it is still alive. Calling Cancel
// with no live run, or twice, is a no-op.
func (e *Engine) Cancel() {
	e.mu.Lock()
	r := e.run
	if r == nil || r.view.State.Terminal() || r.cancelRequested {
		e.mu.Unlock()
		return
	}
	r.cancelRequested = true
	grace := e.cfg.TerminateGrace
	e.mu.Unlock()

	e.buf.Append(outbuf.SourceSystem, fmt.Sprintf(
		"%s Cancelling run (grace %s)...", ui.SymbolCancelled, grace))
	e.emit()
	terminate(r.cmd)

	go func() {
		select {
		case <-r.done:
		case <-time.After(grace):
			e.buf.Append(outbuf.SourceSystem,
				ui.SymbolCancelled+" Grace period expired, killing process group")
			e.emit()
			kill(r.cmd)
		}
	}()
}

// buildArgs assembles the child argv: configured base args, one -i per
// inventory file, the host limit, the vault prompt flag when a passphrase
// was captured, then the playbook path.
func (e *Engine) buildArgs(spec Spec) []string {
	args := append([]string(nil), e.cfg.Args...)
	for _, inv := range spec.Inventories {
		args = append(args, "-i", inv)
	}
	args = append(args, "-l", strings.Join(spec.Hosts, ","))
	if len(spec.Secret) > 0 && e.cfg.VaultFlag != "" {
		args = append(args, e.cfg.VaultFlag)
	}
	return append(args, spec.Playbook)
}

// buildEnv layers the configured engine env over the parent environment,
// with deterministic ordering for the overrides.
func (e *Engine) buildEnv() []string {
	env := os.Environ()
	keys := make([]string, 0, len(e.cfg.Env))
	for k := range e.cfg.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+e.cfg.Env[k])
	}
	return env
}
