package bytesutil

import "github.com/fungibit/chainscan/errors"

// VarInt decodes a Bitcoin compact-size integer from the front of b.
// It returns the decoded value and the number of bytes consumed.
//
// Encoding: first byte v. v < 0xFD: value = v, consumed = 1.
// v == 0xFD: value = next 2 bytes LE, consumed = 3.
// v == 0xFE: value = next 4 bytes LE, consumed = 5.
// v == 0xFF: value = next 8 bytes LE, consumed = 9.
func VarInt(b []byte) (value uint64, consumed int, err error) {
	if len(b) < 1 {
		return 0, 0, errors.NewMalformedVarint("empty buffer")
	}

	switch v := b[0]; {
	case v < 0xFD:
		return uint64(v), 1, nil

	case v == 0xFD:
		if len(b) < 3 {
			return 0, 0, errors.NewMalformedVarint("need 3 bytes, have %d", len(b))
		}
		return UintLE(b[1:3], 2), 3, nil

	case v == 0xFE:
		if len(b) < 5 {
			return 0, 0, errors.NewMalformedVarint("need 5 bytes, have %d", len(b))
		}
		return UintLE(b[1:5], 4), 5, nil

	default: // 0xFF
		if len(b) < 9 {
			return 0, 0, errors.NewMalformedVarint("need 9 bytes, have %d", len(b))
		}
		return UintLE(b[1:9], 8), 9, nil
	}
}
