package wallet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// DerivationPath is the internal representation of a hierarchical
// deterministic wallet account
type DerivationPath []uint32

// DefaultAccountDerivationPath m/44'/60'/0'/0/0
var DefaultAccountDerivationPath = DerivationPath{
	hdkeychain.HardenedKeyStart + 44,
	hdkeychain.HardenedKeyStart + 60,
	hdkeychain.HardenedKeyStart,
	0,
	0,
}

// ParseDerivationPath accepts absolute ("m/44'/60'/0'/0/0") and relative
// ("0'/0/0") paths with at least two segments. Segments may be decimal or
// 0x-prefixed hex and a trailing ' marks them hardened.
func ParseDerivationPath(strPath string) (DerivationPath, error) {
	if strPath == "" {
		return nil, ErrNullDerivationPath
	}

	segments := strings.Split(strPath, "/")
	if len(segments) < 2 {
		return nil, ErrMalformedDerivationPath
	}
	if strings.TrimSpace(segments[0]) == "m" {
		segments = segments[1:]
	}

	path := make(DerivationPath, 0, len(segments))
	for _, segment := range segments {
		index, err := parseSegment(segment)
		if err != nil {
			return nil, err
		}
		path = append(path, index)
	}
	return path, nil
}

func parseSegment(segment string) (uint32, error) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return 0, ErrMalformedDerivationPath
	}

	hardened := strings.HasSuffix(segment, "'")
	if hardened {
		segment = strings.TrimSpace(strings.TrimSuffix(segment, "'"))
	}

	n, err := strconv.ParseUint(segment, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: segment %q", ErrInvalidDerivationPath, segment)
	}
	if !hardened {
		return uint32(n), nil
	}
	if n >= hdkeychain.HardenedKeyStart {
		return 0, fmt.Errorf(
			"%w: hardened segment %d out of range", ErrInvalidDerivationPath, n,
		)
	}
	return hdkeychain.HardenedKeyStart + uint32(n), nil
}

// String converts a binary derivation path to its canonical representation
func (path DerivationPath) String() string {
	if len(path) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("m")
	for _, index := range path {
		sb.WriteByte('/')
		if index >= hdkeychain.HardenedKeyStart {
			sb.WriteString(strconv.FormatUint(uint64(index-hdkeychain.HardenedKeyStart), 10))
			sb.WriteByte('\'')
			continue
		}
		sb.WriteString(strconv.FormatUint(uint64(index), 10))
	}
	return sb.String()
}
