// Package all registers all shell commands.
package all

import (
	_ "github.com/robotalks/ht12d/pkg/cli/cmds/decoder"
)
