//go:build unix

package engine

import (
	"bufio"
	"strings"
	"sync"

	"github.com/creack/pty"
	"golang.org/x/term"

	"github.com/pbdeck/pbdeck/internal/outbuf"
	"github.com/pbdeck/pbdeck/internal/ui"
)

// startPTY runs the child on a pseudo-terminal so it emits the same
// colored, unbuffered output it would for an interactive operator.
// stdout and stderr arrive interleaved on the single pty stream, so
// every line is tagged SourceStdout.
func (e *Engine) startPTY(r *run, secret []byte) error {
	// pty.Start installs its own session/controlling-tty attributes;
	// they would conflict with the Setpgid attr used in pipe mode.
	// Setsid already gives the child its own process group.
	r.cmd.SysProcAttr = nil

	ptmx, err := pty.Start(r.cmd)
	if err != nil {
		return err
	}

	if len(secret) > 0 {
		// Kill echo before the passphrase goes in, otherwise the pty
		// line discipline would reflect it straight into the output.
		if _, err := term.MakeRaw(int(ptmx.Fd())); err != nil {
			e.log.Warn("engine: cannot disable pty echo: %v", err)
		}
		_, werr := ptmx.Write(secret)
		if werr == nil {
			_, werr = ptmx.Write([]byte{'\r'})
		}
		Zeroize(secret)
		if werr != nil {
			e.buf.Append(outbuf.SourceSystem,
				ui.SymbolFail+" could not deliver vault passphrase: "+werr.Error())
			e.emit()
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sc := bufio.NewScanner(ptmx)
		sc.Buffer(make([]byte, 64*1024), maxLineBytes)
		for sc.Scan() {
			e.buf.Append(outbuf.SourceStdout, strings.ToValidUTF8(sc.Text(), "�"))
			e.emit()
		}
		// A read error here (EIO on Linux) just means the child closed
		// its side of the pty.
	}()

	go func() {
		wg.Wait()
		waitErr := r.cmd.Wait()
		_ = ptmx.Close()
		e.finalize(r, waitErr)
	}()
	return nil
}
