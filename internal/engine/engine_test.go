//go:build unix

package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbdeck/pbdeck/internal/config"
	"github.com/pbdeck/pbdeck/internal/errors"
	"github.com/pbdeck/pbdeck/internal/logger"
	"github.com/pbdeck/pbdeck/internal/outbuf"
)

// scriptEngine builds an engine whose "playbook runner" is sh running the
// given script. The trailing -l/host/playbook args land in the script's
// positional parameters and are ignored.
func scriptEngine(script string, grace time.Duration) (*Engine, *outbuf.Buffer) {
	buf := outbuf.New(1000)
	cfg := config.EngineConfig{
		Command:        "sh",
		Args:           []string{"-c", script},
		VaultFlag:      "--ask-vault-pass",
		TerminateGrace: grace,
	}
	return New(cfg, buf, logger.Noop()), buf
}

func bufferText(b *outbuf.Buffer) string {
	lines := b.Snapshot()
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

func TestSuccessfulRun(t *testing.T) {
	e, buf := scriptEngine(`echo ok sw1; echo warn sw2 >&2`, time.Second)

	view, err := e.Start(Spec{Hosts: []string{"sw1", "sw2"}, Playbook: "backup.yml"})
	require.NoError(t, err)
	assert.Equal(t, StateRunning, view.State)

	final := e.Wait()
	assert.Equal(t, StateSucceeded, final.State)
	assert.Equal(t, 0, final.ExitCode)
	assert.False(t, final.EndedAt.IsZero())

	var sawStdout, sawStderr bool
	for _, line := range buf.Snapshot() {
		if line.Text == "ok sw1" {
			sawStdout = true
			assert.Equal(t, outbuf.SourceStdout, line.Source)
		}
		if line.Text == "warn sw2" {
			sawStderr = true
			assert.Equal(t, outbuf.SourceStderr, line.Source)
		}
	}
	assert.True(t, sawStdout)
	assert.True(t, sawStderr)
	assert.Contains(t, bufferText(buf), "Run finished (exit 0)")
}

func TestCommandLineEchoedFirst(t *testing.T) {
	e, buf := scriptEngine(`true`, time.Second)

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)
	e.Wait()

	lines := buf.Snapshot()
	require.NotEmpty(t, lines)
	assert.Equal(t, outbuf.SourceSystem, lines[0].Source)
	assert.True(t, strings.HasPrefix(lines[0].Text, "$ sh -c"))
	assert.Contains(t, lines[0].Text, "-l sw1")
	assert.Contains(t, lines[0].Text, "backup.yml")
}

func TestFailedRunKeepsExitCode(t *testing.T) {
	e, buf := scriptEngine(`echo before failure; exit 3`, time.Second)

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)

	final := e.Wait()
	assert.Equal(t, StateFailed, final.State)
	assert.Equal(t, 3, final.ExitCode)
	assert.Contains(t, bufferText(buf), "before failure")
	assert.Contains(t, bufferText(buf), "Run failed (exit 3)")
}

func TestSpawnFailureProducesFailedSession(t *testing.T) {
	buf := outbuf.New(100)
	cfg := config.EngineConfig{
		Command:        "/nonexistent/pbdeck-test-binary",
		TerminateGrace: time.Second,
	}
	e := New(cfg, buf, logger.Noop())

	view, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, view.State)

	final := e.Wait()
	assert.Equal(t, StateFailed, final.State)
	assert.Contains(t, bufferText(buf), "cannot start /nonexistent/pbdeck-test-binary")
}

func TestStartWhileRunningRejected(t *testing.T) {
	e, _ := scriptEngine(`sleep 30`, time.Second)

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)
	require.True(t, e.Running())

	secret := []byte("hunter2")
	_, err = e.Start(Spec{Hosts: []string{"sw2"}, Playbook: "other.yml", Secret: secret})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRun))
	// The rejected spec's secret must still be scrubbed.
	assert.Equal(t, make([]byte, len(secret)), secret)

	e.Cancel()
	assert.Equal(t, StateCancelled, e.Wait().State)
}

func TestStartValidation(t *testing.T) {
	e, _ := scriptEngine(`true`, time.Second)

	_, err := e.Start(Spec{Playbook: "backup.yml"})
	assert.True(t, errors.IsCode(err, errors.ErrRun))

	_, err = e.Start(Spec{Hosts: []string{"sw1"}})
	assert.True(t, errors.IsCode(err, errors.ErrRun))
}

func TestCancelWinsOverExitStatus(t *testing.T) {
	e, buf := scriptEngine(`sleep 30`, 2*time.Second)

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)

	start := time.Now()
	e.Cancel()
	e.Cancel() // idempotent

	final := e.Wait()
	assert.Equal(t, StateCancelled, final.State)
	assert.Less(t, time.Since(start), 10*time.Second)
	assert.Contains(t, bufferText(buf), "Run cancelled")
}

func TestCancelEscalatesToKill(t *testing.T) {
	// The shell ignores SIGTERM, so only the SIGKILL escalation ends it.
	e, buf := scriptEngine(`trap "" TERM; while :; do sleep 1; done`, 300*time.Millisecond)

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)

	time.Sleep(100 * time.Millisecond) // let the trap install
	e.Cancel()

	final := e.Wait()
	assert.Equal(t, StateCancelled, final.State)
	assert.Contains(t, bufferText(buf), "killing process group")
}

func TestCancelWithoutRunIsNoop(t *testing.T) {
	e, buf := scriptEngine(`true`, time.Second)

	e.Cancel()
	_, ok := e.Snapshot()
	assert.False(t, ok)
	assert.Zero(t, buf.Len())
}

func TestVaultSecretDeliveredAndScrubbed(t *testing.T) {
	e, buf := scriptEngine(`read pw; echo "len ${#pw}"`, time.Second)

	secret := []byte("hunter2")
	view, err := e.Start(Spec{
		Hosts:    []string{"sw1"},
		Playbook: "backup.yml",
		Secret:   secret,
	})
	require.NoError(t, err)
	assert.True(t, view.VaultUsed)

	final := e.Wait()
	assert.Equal(t, StateSucceeded, final.State)

	text := bufferText(buf)
	assert.Contains(t, text, "len 7", "child should have received the passphrase on stdin")
	assert.NotContains(t, text, "hunter2", "passphrase must never reach the output buffer")
	assert.Contains(t, text, "--ask-vault-pass")
	assert.Equal(t, make([]byte, len(secret)), secret, "secret must be zeroized after handoff")
}

func TestNotifyFiresOnOutput(t *testing.T) {
	e, _ := scriptEngine(`echo one; echo two`, time.Second)

	notified := make(chan struct{}, 64)
	e.SetNotify(func() {
		select {
		case notified <- struct{}{}:
		default:
		}
	})

	_, err := e.Start(Spec{Hosts: []string{"sw1"}, Playbook: "backup.yml"})
	require.NoError(t, err)
	e.Wait()

	assert.NotEmpty(t, notified)
}

func TestBuildArgsOrdering(t *testing.T) {
	buf := outbuf.New(10)
	cfg := config.EngineConfig{
		Command:   "ansible-playbook",
		Args:      []string{"-v"},
		VaultFlag: "--ask-vault-pass",
	}
	e := New(cfg, buf, logger.Noop())

	args := e.buildArgs(Spec{
		Hosts:       []string{"sw1", "rt9"},
		Playbook:    "playbooks/backup.yml",
		Inventories: []string{"inv/dc1.yml", "inv/dc2.yml"},
		Secret:      []byte("x"),
	})

	assert.Equal(t, []string{
		"-v",
		"-i", "inv/dc1.yml",
		"-i", "inv/dc2.yml",
		"-l", "sw1,rt9",
		"--ask-vault-pass",
		"playbooks/backup.yml",
	}, args)
}

func TestElapsedUsesEndWhenTerminal(t *testing.T) {
	now := time.Now()
	v := SessionView{StartedAt: now.Add(-5 * time.Second), EndedAt: now}
	assert.InDelta(t, 5.0, v.Elapsed().Seconds(), 0.1)
	assert.Zero(t, SessionView{}.Elapsed())
}
