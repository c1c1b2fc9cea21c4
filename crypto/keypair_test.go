package crypto

import "testing"

func TestNewKeyPairDerivation(t *testing.T) {
	private, err := ParseKey("sDy6PGozYyAzXlAZEyWyPtpibexfi08uvPg9pQBknn0=")
	if err != nil {
		t.Fatalf("ParseKey: %v", err)
	}
	kp := NewKeyPair(private)
	if got, want := kp.PublicKey().String(), "14nWLDf+tZ6CXwC6WNEq/VWsbOoSr/yggbyRX17goEM="; got != want {
		t.Fatalf("derived public key = %q, want %q", got, want)
	}
	if kp.PrivateKey() != private {
		t.Fatalf("NewKeyPair altered the private key")
	}
}

func TestNewKeyPairPreservesUnclampedPrivate(t *testing.T) {
	// A private key read from existing configuration may not have the
	// clamped bit pattern; it must be stored verbatim regardless.
	var private Key
	for i := range private {
		private[i] = 0xff
	}
	kp := NewKeyPair(private)
	if kp.PrivateKey() != private {
		t.Fatalf("private key was rewritten: %v", kp.PrivateKey())
	}
	if kp.PublicKey().IsZero() {
		t.Fatalf("public key is zero")
	}
}

func TestGenerateKeyPair(t *testing.T) {
	kp, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	private := kp.PrivateKey()
	if private[0]&7 != 0 {
		t.Fatalf("low bits of private[0] not cleared: %#x", private[0])
	}
	if private[31]&128 != 0 {
		t.Fatalf("high bit of private[31] not cleared: %#x", private[31])
	}
	if private[31]&64 == 0 {
		t.Fatalf("bit 6 of private[31] not set: %#x", private[31])
	}
	if kp.PublicKey().IsZero() {
		t.Fatalf("public key is zero")
	}
	if NewKeyPair(private).PublicKey() != kp.PublicKey() {
		t.Fatalf("re-derived public key differs")
	}
}

func TestGenerateKeyPairIsRandom(t *testing.T) {
	a, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	b, err := GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	if a.PrivateKey() == b.PrivateKey() {
		t.Fatalf("two generated private keys are identical")
	}
}

func TestGeneratePresharedKey(t *testing.T) {
	a, err := GeneratePresharedKey()
	if err != nil {
		t.Fatalf("GeneratePresharedKey: %v", err)
	}
	b, err := GeneratePresharedKey()
	if err != nil {
		t.Fatalf("GeneratePresharedKey: %v", err)
	}
	if a.IsZero() || b.IsZero() {
		t.Fatalf("preshared key is zero")
	}
	if a == b {
		t.Fatalf("two preshared keys are identical")
	}
}
