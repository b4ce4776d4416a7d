// Package bitflags encodes fixed-width capability bitmasks as a single integer
// scalar, both on the wire (JSON numbers) and in storage (INTEGER/BIGINT columns).
//
// Decoding never validates which bits are defined. Bits beyond the declared
// width are truncated; every bit inside the width round-trips unchanged.
package bitflags

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/Gopher0727/Accounts/internal/errs"
)

// Bits is any flags type backed by one of the supported scalar widths.
type Bits interface {
	~uint32 | ~int64
}

// Has reports whether every bit of flag is set in bits.
func Has[T Bits](bits, flag T) bool {
	return bits&flag == flag
}

// Insert returns bits with flag set.
func Insert[T Bits](bits, flag T) T {
	return bits | flag
}

// Remove returns bits with flag cleared.
func Remove[T Bits](bits, flag T) T {
	return bits &^ flag
}

// Indices lists the positions of the set bits in ascending order.
func Indices[T Bits](bits T) []uint {
	set := bitset.From([]uint64{uint64(bits)})
	out := make([]uint, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, i)
	}
	return out
}

// Describe renders bits as "NAME|NAME|0x..." using names for known single-bit
// flags. Bits without a name are kept and printed in hex.
func Describe[T Bits](bits T, names map[T]string) string {
	if bits == 0 {
		return "0"
	}
	var parts []string
	var unknown uint64
	for _, i := range Indices(bits) {
		flag := T(uint64(1) << i)
		if name, ok := names[flag]; ok {
			parts = append(parts, name)
			continue
		}
		unknown |= uint64(1) << i
	}
	if unknown != 0 {
		parts = append(parts, "0x"+strconv.FormatUint(unknown, 16))
	}
	return strings.Join(parts, "|")
}

// Encode32 is the storage representation of a 32-bit flags value.
func Encode32[T ~uint32](bits T) int64 {
	return int64(uint32(bits))
}

// Encode64 is the storage representation of a 64-bit flags value.
func Encode64[T ~int64](bits T) int64 {
	return int64(bits)
}

// Decode32 converts any integer-like value into a 32-bit flags value,
// truncating bits above bit 31.
func Decode32[T ~uint32](v any) (T, error) {
	raw, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	return T(uint32(raw)), nil
}

// Decode64 converts any integer-like value into a 64-bit flags value.
func Decode64[T ~int64](v any) (T, error) {
	raw, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	return T(int64(raw)), nil
}

// Value32 implements driver.Valuer for 32-bit flags types.
func Value32[T ~uint32](bits T) (driver.Value, error) {
	return Encode32(bits), nil
}

// Value64 implements driver.Valuer for 64-bit flags types.
func Value64[T ~int64](bits T) (driver.Value, error) {
	return Encode64(bits), nil
}

// Scan32 implements sql.Scanner for 32-bit flags types. NULL scans as zero.
func Scan32[T ~uint32](dst *T, src any) error {
	if src == nil {
		*dst = 0
		return nil
	}
	v, err := Decode32[T](src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// Scan64 implements sql.Scanner for 64-bit flags types. NULL scans as zero.
func Scan64[T ~int64](dst *T, src any) error {
	if src == nil {
		*dst = 0
		return nil
	}
	v, err := Decode64[T](src)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// MarshalJSON32 writes the flags as an unsigned JSON number.
func MarshalJSON32[T ~uint32](bits T) ([]byte, error) {
	return strconv.AppendUint(nil, uint64(uint32(bits)), 10), nil
}

// MarshalJSON64 writes the flags as a signed JSON number.
func MarshalJSON64[T ~int64](bits T) ([]byte, error) {
	return strconv.AppendInt(nil, int64(bits), 10), nil
}

// UnmarshalJSON32 reads a JSON number (or numeric string) into dst.
// A JSON null leaves dst untouched.
func UnmarshalJSON32[T ~uint32](dst *T, data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v, err := Decode32[T](unquote(data))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// UnmarshalJSON64 reads a JSON number (or numeric string) into dst.
// A JSON null leaves dst untouched.
func UnmarshalJSON64[T ~int64](dst *T, data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	v, err := Decode64[T](unquote(data))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func unquote(data []byte) []byte {
	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		return data[1 : len(data)-1]
	}
	return data
}

func toUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case int64:
		return uint64(n), nil
	case int:
		return uint64(n), nil
	case int32:
		return uint64(n), nil
	case int16:
		return uint64(n), nil
	case int8:
		return uint64(n), nil
	case uint64:
		return n, nil
	case uint:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case float64:
		return fromFloat(n)
	case float32:
		return fromFloat(float64(n))
	case []byte:
		return parseInteger(string(n))
	case string:
		return parseInteger(n)
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", errs.ErrInvalidFlagValue, v)
	}
}

func fromFloat(f float64) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %v is not an integer", errs.ErrInvalidFlagValue, f)
	}
	if f < 0 {
		return uint64(int64(f)), nil
	}
	return uint64(f), nil
}

func parseInteger(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return u, nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return uint64(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(f)
	}
	return 0, fmt.Errorf("%w: %q", errs.ErrInvalidFlagValue, s)
}
