// Package crypto provides WireGuard key material: a fixed-size key value type
// with constant-time base64 and hexadecimal codecs, and Curve25519 key pairs.
//
// The codecs deliberately avoid the standard library encoding packages. Key
// material is classified and translated with branchless arithmetic so that
// neither timing nor memory access patterns depend on the key bytes, and a
// malformed input is only reported after the whole string has been processed.
package crypto

import (
	"errors"
	"fmt"
)

// Lengths of the supported key representations, in bytes.
const (
	KeyLength       = 32
	KeyLengthBase64 = 44
	KeyLengthHex    = 64
)

var (
	// ErrKeyLength is returned when raw bytes or a base64 string have the
	// wrong length for a key.
	ErrKeyLength = errors.New("incorrect key length")
	// ErrKeyFormat is returned when encoded input cannot represent a key:
	// characters outside the alphabet, a missing '=' terminator, bad
	// padding bits, or hex input of the wrong length.
	ErrKeyFormat = errors.New("invalid key format")
)

// Key is a WireGuard public, private, or preshared key. The zero value is the
// all-zero key, which is never valid key material.
type Key [KeyLength]byte

// NewKey copies a raw 32-byte key.
func NewKey(b []byte) (Key, error) {
	if len(b) != KeyLength {
		return Key{}, fmt.Errorf("%w: keys must be %d bytes", ErrKeyLength, KeyLength)
	}
	var k Key
	copy(k[:], b)
	return k, nil
}

// decodeBase64 translates one 4-character group into a 24-bit value. The
// result is negative when any character falls outside the base64 alphabet;
// every character is classified with the same arithmetic either way.
func decodeBase64(src []byte) int32 {
	var val int32
	for i := 0; i < 4; i++ {
		c := int32(src[i])
		val |= (-1 +
			(int32(uint32((('A'-1)-c)&(c-('Z'+1)))>>8) & (c - 64)) +
			(int32(uint32((('a'-1)-c)&(c-('z'+1)))>>8) & (c - 70)) +
			(int32(uint32((('0'-1)-c)&(c-('9'+1)))>>8) & (c + 5)) +
			(int32(uint32((('+'-1)-c)&(c-('+'+1)))>>8) & 63) +
			(int32(uint32((('/'-1)-c)&(c-('/'+1)))>>8) & 64)) << (18 - 6*i)
	}
	return val
}

// encodeBase64 translates three bytes of src into four base64 characters in
// dest. The 6-bit value to letter mapping is branchless.
func encodeBase64(src []byte, dest []byte) {
	input := [4]int32{
		int32(src[0] >> 2 & 63),
		int32((src[0]<<4 | src[1]>>4) & 63),
		int32((src[1]<<2 | src[2]>>6) & 63),
		int32(src[2] & 63),
	}
	for i := 0; i < 4; i++ {
		in := input[i]
		dest[i] = byte(in + 'A' +
			(int32(uint32(25-in)>>8) & 6) -
			(int32(uint32(51-in)>>8) & 75) -
			(int32(uint32(61-in)>>8) & 15) +
			(int32(uint32(62-in)>>8) & 3))
	}
}

// ParseKey decodes a base64 string in the canonical WireGuard form: 44
// characters, the last of which is '='. Validity is accumulated across the
// whole string and checked once at the end.
func ParseKey(s string) (Key, error) {
	if len(s) != KeyLengthBase64 {
		return Key{}, fmt.Errorf("%w: base64 keys must be %d characters encoding %d bytes", ErrKeyLength, KeyLengthBase64, KeyLength)
	}
	if s[KeyLengthBase64-1] != '=' {
		return Key{}, fmt.Errorf("%w: base64 keys must end in '='", ErrKeyFormat)
	}
	input := []byte(s)
	var key Key
	var ret int32
	var i int
	for i = 0; i < KeyLength/3; i++ {
		val := decodeBase64(input[i*4:])
		ret |= int32(uint32(val) >> 31)
		key[i*3] = byte(val >> 16)
		key[i*3+1] = byte(val >> 8)
		key[i*3+2] = byte(val)
	}
	// The final group carries only two bytes; the low bits of a canonical
	// encoding are zero once the '=' is replaced by 'A'.
	end := [4]byte{input[i*4], input[i*4+1], input[i*4+2], 'A'}
	val := decodeBase64(end[:])
	ret |= int32(uint32(val)>>31) | (val & 0xff)
	key[i*3] = byte(val >> 16)
	key[i*3+1] = byte(val >> 8)

	if ret != 0 {
		return Key{}, fmt.Errorf("%w: base64 key has characters outside the alphabet or non-canonical padding", ErrKeyFormat)
	}
	return key, nil
}

// ParseHexKey decodes a 64-character hexadecimal string. Both cases are
// accepted; validity is accumulated and checked once at the end.
func ParseHexKey(s string) (Key, error) {
	if len(s) != KeyLengthHex {
		return Key{}, fmt.Errorf("%w: hex keys must be %d characters encoding %d bytes", ErrKeyFormat, KeyLengthHex, KeyLength)
	}
	input := []byte(s)
	var key Key
	var ret int32
	for i := 0; i < KeyLengthHex; i += 2 {
		c := int32(input[i])
		cNum := c ^ 48
		cNum0 := (int32(uint32(cNum-10)>>8) & 0xff)
		cAlpha := (c &^ 32) - 55
		cAlpha0 := (int32(uint32((cAlpha-10)^(cAlpha-16))>>8) & 0xff)
		ret |= int32(uint32((cNum0|cAlpha0)-1) >> 8)
		cVal := (cNum0 & cNum) | (cAlpha0 & cAlpha)
		cAcc := cVal * 16

		c = int32(input[i+1])
		cNum = c ^ 48
		cNum0 = (int32(uint32(cNum-10)>>8) & 0xff)
		cAlpha = (c &^ 32) - 55
		cAlpha0 = (int32(uint32((cAlpha-10)^(cAlpha-16))>>8) & 0xff)
		ret |= int32(uint32((cNum0|cAlpha0)-1) >> 8)
		cVal = (cNum0 & cNum) | (cAlpha0 & cAlpha)
		key[i/2] = byte(cAcc | cVal)
	}
	if ret != 0 {
		return Key{}, fmt.Errorf("%w: hex key has characters outside 0-9a-fA-F", ErrKeyFormat)
	}
	return key, nil
}

// Bytes returns a copy of the raw key.
func (k Key) Bytes() []byte {
	b := make([]byte, KeyLength)
	copy(b, k[:])
	return b
}

// IsZero reports whether the key is the all-zero key.
func (k Key) IsZero() bool {
	return k == Key{}
}

// String encodes the key in the canonical 44-character base64 form.
func (k Key) String() string {
	var out [KeyLengthBase64]byte
	var i int
	for i = 0; i < KeyLength/3; i++ {
		encodeBase64(k[i*3:], out[i*4:])
	}
	end := [3]byte{k[i*3], k[i*3+1], 0}
	encodeBase64(end[:], out[i*4:])
	out[KeyLengthBase64-1] = '='
	return string(out[:])
}

// Hex encodes the key as 64 lowercase hexadecimal characters.
func (k Key) Hex() string {
	var out [KeyLengthHex]byte
	for i := 0; i < KeyLength; i++ {
		hi := int32(k[i] >> 4)
		lo := int32(k[i] & 0xf)
		out[i*2] = byte(87 + hi + (((hi - 10) >> 8) &^ 38))
		out[i*2+1] = byte(87 + lo + (((lo - 10) >> 8) &^ 38))
	}
	return string(out[:])
}

// MarshalText implements encoding.TextMarshaler using the base64 form.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the base64 form.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := ParseKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
