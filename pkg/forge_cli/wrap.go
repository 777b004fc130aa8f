// pkg/forge_cli/wrap.go

package forge_cli

import (
	"context"
	"time"

	"github.com/forgeworks/forge/pkg/forge_io"
	"github.com/forgeworks/forge/pkg/logger"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds a whole command run. Provisioning steps that
// legitimately run for minutes manage their own child-process timeouts below
// this ceiling.
const DefaultCommandTimeout = 45 * time.Minute

// Wrap adapts a RuntimeContext-style handler to cobra's RunE, adding panic
// recovery, span lifecycle and end-of-run logging.
func Wrap(fn func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return WrapExtended(DefaultCommandTimeout, fn)
}

// WrapExtended is Wrap with a caller-chosen command timeout.
func WrapExtended(timeout time.Duration, fn func(rc *forge_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		rc := forge_io.NewContext(ctx, cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		return fn(rc, cmd, args)
	}
}
