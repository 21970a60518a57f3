//go:build !linux && !windows

package entropy

import "fmt"

func openSession(c Caps, _ string) (Session, error) {
	return nil, fmt.Errorf("%w: no %s support on this platform", ErrSourceUnavailable, c)
}
