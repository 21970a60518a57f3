//go:build windows

// TPM sessions on Windows go through TPM Base Services. TPM 1.2 needs a
// version-one TBS context, which go-tpm's transport does not open, so both
// families use tbs contexts directly.

package entropy

import (
	"fmt"

	"github.com/google/go-tpm/tpmutil/tbs"
)

type tbsSession struct {
	ctx tbs.Context
}

func (s *tbsSession) Submit(cmd, rsp []byte) (int, error) {
	n, err := s.ctx.SubmitCommand(tbs.NormalPriority, cmd, rsp)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *tbsSession) Close() error {
	return s.ctx.Close()
}

// openSession ignores device; TBS owns device selection.
func openSession(c Caps, _ string) (Session, error) {
	var (
		ctx tbs.Context
		err error
	)
	switch c {
	case CapTPM12:
		ctx, err = tbs.CreateContext(tbs.TPMVersion12, 0)
	case CapTPM20:
		ctx, err = tbs.CreateContext(tbs.TPMVersion20, tbs.IncludeTPM20)
	default:
		return nil, fmt.Errorf("%w: %s is not a tpm", ErrSourceUnavailable, c)
	}
	if err != nil {
		return nil, fmt.Errorf("entropy: tbs context for %s: %w", c, err)
	}
	return &tbsSession{ctx: ctx}, nil
}
