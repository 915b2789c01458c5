package sec

import (
	"bytes"
	"strings"
	"testing"
)

func TestCipherRoundTrip(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	c, err := NewXChaCha20Poly1305CipherBase64(key)
	if err != nil {
		t.Fatalf("NewXChaCha20Poly1305CipherBase64: %v", err)
	}

	plaintext := []byte("4f2c9a Session Id")
	enc, err := c.EncryptEncode(plaintext)
	if err != nil {
		t.Fatalf("EncryptEncode: %v", err)
	}
	dec, err := c.DecodeDecrypt(enc)
	if err != nil {
		t.Fatalf("DecodeDecrypt: %v", err)
	}
	if !bytes.Equal(dec, plaintext) {
		t.Fatalf("roundtrip mismatch: %q", dec)
	}
}

func TestCipherRejectsTampering(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	c, err := NewXChaCha20Poly1305CipherBase64(key)
	if err != nil {
		t.Fatal(err)
	}
	enc, err := c.EncryptEncode([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	tampered := "A" + enc[1:]
	if _, err := c.DecodeDecrypt(tampered); err == nil {
		t.Fatal("tampered ciphertext must not decrypt")
	}
}

func TestCipherRejectsShortKey(t *testing.T) {
	if _, err := NewXChaCha20Poly1305CipherBase64([]byte("short")); err == nil {
		t.Fatal("short key must be rejected")
	}
}
