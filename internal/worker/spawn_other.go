//go:build !unix && !windows

package worker

import "os/exec"

func Detach(*exec.Cmd) {}
