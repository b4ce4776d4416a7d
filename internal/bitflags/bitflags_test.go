package bitflags

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Gopher0727/Accounts/internal/errs"
)

type testFlags uint32

const (
	flagA testFlags = 1 << 0
	flagB testFlags = 1 << 1
	flagC testFlags = 1 << 5
)

type wideFlags int64

func TestHasInsertRemove(t *testing.T) {
	bits := Insert(testFlags(0), flagA)
	bits = Insert(bits, flagC)

	assert.True(t, Has(bits, flagA))
	assert.True(t, Has(bits, flagC))
	assert.False(t, Has(bits, flagB))
	assert.True(t, Has(bits, flagA|flagC))
	assert.False(t, Has(bits, flagA|flagB))

	bits = Remove(bits, flagA)
	assert.False(t, Has(bits, flagA))
	assert.Equal(t, flagC, bits)
}

func TestIndices(t *testing.T) {
	assert.Empty(t, Indices(testFlags(0)))
	assert.Equal(t, []uint{0, 5, 31}, Indices(flagA|flagC|testFlags(1<<31)))
	assert.Equal(t, []uint{63}, Indices(wideFlags(-1<<63)))
}

func TestDescribe(t *testing.T) {
	names := map[testFlags]string{flagA: "A", flagB: "B"}

	assert.Equal(t, "0", Describe(testFlags(0), names))
	assert.Equal(t, "A|B", Describe(flagA|flagB, names))
	assert.Equal(t, "A|0x20", Describe(flagA|flagC, names))
}

func TestDecode32(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  testFlags
	}{
		{"int64", int64(3), 3},
		{"uint64 above width truncates", uint64(1)<<33 | 7, 7},
		{"negative int64 keeps low bits", int64(-1), testFlags(0xFFFFFFFF)},
		{"integral float", float64(33), 33},
		{"bytes", []byte("42"), 42},
		{"string", " 9 ", 9},
		{"unknown bits are kept", int64(1 << 30), testFlags(1 << 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode32[testFlags](tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode32[testFlags](1.5)
	assert.True(t, errors.Is(err, errs.ErrInvalidFlagValue))

	_, err = Decode32[testFlags]("abc")
	assert.True(t, errors.Is(err, errs.ErrInvalidFlagValue))

	_, err = Decode64[wideFlags](struct{}{})
	assert.True(t, errors.Is(err, errs.ErrInvalidFlagValue))
}

func TestScan(t *testing.T) {
	var bits testFlags = flagB
	require.NoError(t, Scan32(&bits, nil))
	assert.Equal(t, testFlags(0), bits)

	require.NoError(t, Scan32(&bits, int64(flagA|flagC)))
	assert.Equal(t, flagA|flagC, bits)

	var wide wideFlags
	require.NoError(t, Scan64(&wide, int64(-5)))
	assert.Equal(t, wideFlags(-5), wide)

	v, err := Value32(flagC)
	require.NoError(t, err)
	assert.Equal(t, int64(32), v)
}

func TestJSON(t *testing.T) {
	data, err := MarshalJSON32(testFlags(0xFFFFFFFF))
	require.NoError(t, err)
	assert.Equal(t, "4294967295", string(data))

	var bits testFlags
	require.NoError(t, UnmarshalJSON32(&bits, []byte(`"17"`)))
	assert.Equal(t, testFlags(17), bits)

	require.NoError(t, UnmarshalJSON32(&bits, []byte(`null`)))
	assert.Equal(t, testFlags(17), bits)

	var wide wideFlags
	require.NoError(t, UnmarshalJSON64(&wide, []byte(`-9`)))
	assert.Equal(t, wideFlags(-9), wide)

	assert.Error(t, UnmarshalJSON32(&bits, []byte(`true`)))
}

func TestProperty_RoundTrip32(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bits := testFlags(rapid.Uint32().Draw(rt, "bits"))

		stored, err := Value32(bits)
		if err != nil {
			rt.Fatalf("value: %v", err)
		}
		var scanned testFlags
		if err := Scan32(&scanned, stored); err != nil {
			rt.Fatalf("scan: %v", err)
		}
		if scanned != bits {
			rt.Fatalf("storage round trip: got %d, want %d", scanned, bits)
		}

		wire, _ := MarshalJSON32(bits)
		var decoded testFlags
		if err := UnmarshalJSON32(&decoded, wire); err != nil {
			rt.Fatalf("unmarshal %s: %v", wire, err)
		}
		if decoded != bits {
			rt.Fatalf("wire round trip: got %d, want %d", decoded, bits)
		}
	})
}

func TestProperty_RoundTrip64(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		bits := wideFlags(rapid.Int64().Draw(rt, "bits"))

		wire, _ := MarshalJSON64(bits)
		var decoded wideFlags
		if err := UnmarshalJSON64(&decoded, wire); err != nil {
			rt.Fatalf("unmarshal %s: %v", wire, err)
		}
		if decoded != bits {
			rt.Fatalf("got %d, want %d", decoded, bits)
		}
	})
}

func TestProperty_DecodeTruncates(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.Uint64().Draw(rt, "raw")
		got, err := Decode32[testFlags](raw)
		if err != nil {
			rt.Fatalf("decode: %v", err)
		}
		if uint64(got) != raw&0xFFFFFFFF {
			rt.Fatalf("got %x, want low 32 bits of %x", got, raw)
		}
	})
}
