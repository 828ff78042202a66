//go:build !unix

package ytdlp

import "os/exec"

// setProcessGroup is a no-op; cmd.WaitDelay still bounds Run.
func setProcessGroup(*exec.Cmd) {}
