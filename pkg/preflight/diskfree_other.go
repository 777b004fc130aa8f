//go:build !unix

package preflight

import cerr "github.com/cockroachdb/errors"

func diskFree(path string) (uint64, error) {
	return 0, cerr.New("free-space query not supported on this platform")
}
