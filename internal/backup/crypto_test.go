package backup

import (
	"bytes"
	"testing"
)

func TestGenerateSalt(t *testing.T) {
	salt1, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if len(salt1) != saltSize {
		t.Errorf("salt length = %d, want %d", len(salt1), saltSize)
	}

	salt2, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt 2: %v", err)
	}
	if bytes.Equal(salt1, salt2) {
		t.Error("two salts should not be equal")
	}
}

func TestDeriveKeyDeterminism(t *testing.T) {
	salt := []byte("1234567890abcdef")

	key1 := DeriveKey("mypassphrase", salt)
	key2 := DeriveKey("mypassphrase", salt)

	if !bytes.Equal(key1, key2) {
		t.Error("same passphrase+salt should produce same key")
	}
	if len(key1) != keySize {
		t.Errorf("key length = %d, want %d", len(key1), keySize)
	}
	if bytes.Equal(key1, DeriveKey("otherpassphrase", salt)) {
		t.Error("different passphrases should produce different keys")
	}
}

func TestSealOpenRoundTrip(t *testing.T) {
	salt, _ := GenerateSalt()
	original := []byte(`{"shoppingHistory":[],"wasteReports":[]}`)

	sealed, err := Seal(original, "correct horse", salt)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if !bytes.Equal(sealed[:saltSize], salt) {
		t.Error("sealed data should start with the salt")
	}
	if bytes.Contains(sealed, original) {
		t.Error("sealed data contains the plaintext")
	}

	opened, err := Open(sealed, "correct horse")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, original) {
		t.Errorf("opened = %q, want %q", opened, original)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	salt, _ := GenerateSalt()
	sealed, _ := Seal([]byte("secret data"), "right", salt)

	if _, err := Open(sealed, "wrong"); err == nil {
		t.Error("expected error for wrong passphrase")
	}
}

func TestOpenTooSmall(t *testing.T) {
	if _, err := Open([]byte("short"), "pass"); err == nil {
		t.Error("expected error for truncated data")
	}
}

func TestSealRejectsBadSalt(t *testing.T) {
	if _, err := Seal([]byte("x"), "pass", []byte("short")); err == nil {
		t.Error("expected error for short salt")
	}
}
