//go:build purego || !(386 || amd64)

package entropy

func hasRDRAND() bool { return false }

func rdrandWord() (uint32, error) {
	return 0, ErrSourceUnavailable
}
