// Package all registers all CLI commands.
package all

import (
	// Register commands.
	_ "github.com/robotalks/movebase.go/pkg/cli/cmds/base"
	_ "github.com/robotalks/movebase.go/pkg/cli/cmds/movebase"
)
