package crypto

import (
	"bytes"
	"testing"

	"github.com/iov-one/custody/errors"
	"github.com/iov-one/custody/weavetest/assert"
)

func TestEd25519Signing(t *testing.T) {
	key := GenPrivKeyEd25519()
	other := GenPrivKeyEd25519()

	release := []byte("escrow/release")
	refund := []byte("escrow/refund")
	relSig, err := key.Sign(release)
	assert.Nil(t, err)
	refSig, err := key.Sign(refund)
	assert.Nil(t, err)
	foreign, err := other.Sign(release)
	assert.Nil(t, err)

	cases := map[string]struct {
		msg  []byte
		sig  *Signature
		want bool
	}{
		"matching message":      {msg: release, sig: relSig, want: true},
		"second message":        {msg: refund, sig: refSig, want: true},
		"signature of another":  {msg: release, sig: refSig, want: false},
		"signed by another key": {msg: release, sig: foreign, want: false},
		"empty signature":       {msg: release, sig: &Signature{}, want: false},
		"nil signature":         {msg: release, sig: nil, want: false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := key.PublicKey().Verify(tc.msg, tc.sig); got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}

	a, err := relSig.Marshal()
	assert.Nil(t, err)
	b, err := refSig.Marshal()
	assert.Nil(t, err)
	if bytes.Equal(a, b) {
		t.Fatal("two signatures share one encoding")
	}
}

func TestEd25519Condition(t *testing.T) {
	maker := GenPrivKeyEd25519().PublicKey()
	receiver := GenPrivKeyEd25519().PublicKey()

	assert.Nil(t, maker.Condition().Validate())
	if maker.Address().Equals(receiver.Address()) {
		t.Fatal("two keys share one address")
	}

	var blank PublicKey
	assert.Nil(t, blank.Condition())
	assert.Nil(t, blank.Address())

	raw, err := maker.Marshal()
	assert.Nil(t, err)
	var decoded PublicKey
	assert.Nil(t, decoded.Unmarshal(raw))
	assert.Equal(t, maker.Address(), decoded.Address())
}

func TestPrivKeyEd25519FromSeed(t *testing.T) {
	cases := map[string]struct {
		seed     []byte
		expected []byte
	}{
		"success 1": {
			seed:     []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expected: []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 59, 106, 39, 188, 206, 182, 164, 45, 98, 163, 168, 208, 42, 111, 13, 115, 101, 50, 21, 119, 29, 226, 67, 166, 58, 192, 72, 161, 139, 89, 218, 41},
		},
		"success 2": {
			seed:     []byte{31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31},
			expected: []byte{31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 31, 67, 4, 107, 254, 64, 146, 179, 233, 73, 148, 234, 218, 21, 220, 194, 13, 138, 170, 7, 182, 88, 253, 57, 84, 235, 142, 14, 251, 139, 220, 165, 222},
		},
		"failure no seed": {
			seed:     nil,
			expected: nil,
		},
		"failure wrong seed size (n<32)": {
			seed:     []byte{0},
			expected: nil,
		},
		"failure wrong seed size (n>32)": {
			seed:     []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			expected: nil,
		},
	}

	for _, tc := range cases {
		if tc.expected != nil {
			privKey := PrivKeyEd25519FromSeed(tc.seed)
			assert.Equal(t, tc.expected, privKey.GetEd25519())
		} else {
			assert.Panics(t, func() { PrivKeyEd25519FromSeed(tc.seed) })
		}
	}
}

func TestPublicKeyValidate(t *testing.T) {
	pub := PrivKeyEd25519FromSeed(make([]byte, 32)).PublicKey()
	assert.Nil(t, pub.Validate())

	var empty *PublicKey
	assert.IsErr(t, errors.ErrEmpty, empty.Validate())
	assert.IsErr(t, errors.ErrInvalidInput, (&PublicKey{Ed25519: []byte("short")}).Validate())

	if (&PublicKey{Ed25519: []byte("short")}).Verify([]byte("msg"), &Signature{}) {
		t.Fatal("malformed key must not verify")
	}
}

func TestDeterministicAddress(t *testing.T) {
	a := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{7}, 32)).PublicKey().Address()
	b := PrivKeyEd25519FromSeed(bytes.Repeat([]byte{7}, 32)).PublicKey().Address()
	assert.Nil(t, a.Validate())
	if !a.Equals(b) {
		t.Fatal("same seed must produce the same address")
	}
}
