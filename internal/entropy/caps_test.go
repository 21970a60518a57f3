package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapsFirst(t *testing.T) {
	assert.Equal(t, CapNone, CapNone.First())
	assert.Equal(t, CapRDRAND, CapAll.First())
	assert.Equal(t, CapTPM12, (CapTPM12 | CapTPM20).First())
	assert.Equal(t, CapTPM20, CapTPM20.First())
}

func TestCapsEach(t *testing.T) {
	assert.Equal(t, []Caps{CapRDRAND, CapTPM12, CapTPM20}, CapAll.Each())
	assert.Equal(t, []Caps{CapRDRAND, CapTPM20}, (CapRDRAND | CapTPM20).Each())
	assert.Empty(t, CapNone.Each())
}

func TestCapsString(t *testing.T) {
	assert.Equal(t, "none", CapNone.String())
	assert.Equal(t, "rdrand", CapRDRAND.String())
	assert.Equal(t, "rdrand|tpm12|tpm20", CapAll.String())
	assert.Equal(t, "tpm20|0x8", (CapTPM20 | 8).String())
}

func TestParseCaps(t *testing.T) {
	tests := []struct {
		input string
		want  Caps
		err   bool
	}{
		{"", CapNone, false},
		{"none", CapNone, false},
		{"rdrand", CapRDRAND, false},
		{"RDRAND, tpm20", CapRDRAND | CapTPM20, false},
		{"tpm12|tpm20", CapTPM12 | CapTPM20, false},
		{"tpm", CapTPM12 | CapTPM20, false},
		{"all", CapAll, false},
		{"rdseed", CapNone, true},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseCaps(tc.input)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCapsHas(t *testing.T) {
	assert.True(t, CapAll.Has(CapTPM12))
	assert.True(t, CapAll.Has(CapRDRAND|CapTPM20))
	assert.False(t, CapRDRAND.Has(CapRDRAND|CapTPM12))
	assert.True(t, CapRDRAND.Has(CapNone))
}
