//go:build windows

package engine

import "fmt"

func (e *Engine) startPTY(r *run, secret []byte) error {
	Zeroize(secret)
	return fmt.Errorf("pty mode is not supported on this platform")
}
