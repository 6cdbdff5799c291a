package types

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type PublicKey [48]byte
type Address [20]byte

var (
	ErrLength            = fmt.Errorf("incorrect byte length")
	ErrInvalidPublicKey  = fmt.Errorf("invalid BLS public key")
	ErrInvalidAddress    = fmt.Errorf("invalid execution address")
	ErrInvalidGasLimit   = fmt.Errorf("invalid gas limit")
	ErrInvalidMinValue   = fmt.Errorf("invalid min value")
	ErrPointAtInfinityPK = fmt.Errorf("public key cannot be the point-at-infinity")
)

// The point-at-infinity is 48 zero bytes.
var pointAtInfinityPubKey = PublicKey{}

func (p PublicKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (p *PublicKey) UnmarshalText(input []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(input); err != nil {
		return err
	}
	if len(b) != len(p) {
		return ErrLength
	}
	p.FromSlice(b)
	return nil
}

// String returns the lowercase 0x-prefixed hex encoding, which is also the storage form.
func (p PublicKey) String() string {
	return hexutil.Bytes(p[:]).String()
}

func (p *PublicKey) FromSlice(x []byte) {
	copy(p[:], x)
}

// IsInfinity reports whether p is the point-at-infinity.
func (p PublicKey) IsInfinity() bool {
	return bytes.Equal(p[:], pointAtInfinityPubKey[:])
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(input []byte) error {
	var b hexutil.Bytes
	if err := b.UnmarshalText(input); err != nil {
		return err
	}
	if len(b) != len(a) {
		return ErrLength
	}
	a.FromSlice(b)
	return nil
}

// String returns the EIP-55 checksummed form.
func (a Address) String() string {
	return common.Address(a).Hex()
}

func (a *Address) FromSlice(x []byte) {
	copy(a[:], x)
}

// ParsePublicKey parses a 0x-prefixed, 48-byte hex BLS public key.
func ParsePublicKey(s string) (PublicKey, error) {
	var pk PublicKey
	if err := pk.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return pk, fmt.Errorf("%w: %q: %w", ErrInvalidPublicKey, s, err)
	}
	return pk, nil
}

// NormalizePublicKey returns the canonical lowercase form of a BLS public key.
func NormalizePublicKey(s string) (string, error) {
	pk, err := ParsePublicKey(s)
	if err != nil {
		return "", err
	}
	return pk.String(), nil
}

// ParseAddress parses a 20-byte hex execution address. Mixed-case input is
// accepted regardless of its checksum, the result is always re-checksummed.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) || !strings.HasPrefix(s, "0x") {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return Address(common.HexToAddress(s)), nil
}

// NormalizeAddress returns the checksummed form of an execution address.
func NormalizeAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
