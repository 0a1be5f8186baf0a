// Package vault verifies an operator's passphrase against an
// ansible-vault encrypted file without shelling out to ansible. Only the
// AES256 envelope (format 1.1, and 1.2 with a vault id label) is
// supported. Verification recomputes the payload HMAC from the derived
// key; the ciphertext is never decrypted and the secret never leaves
// process memory.
package vault

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/pbdeck/pbdeck/internal/errors"
)

const (
	headerPrefix = "$ANSIBLE_VAULT;"
	cipherName   = "AES256"

	// ansible-vault derives 80 bytes with PBKDF2-HMAC-SHA256:
	// 32 for the AES key, 32 for the HMAC key, 16 for the IV.
	kdfIterations = 10000
	derivedLen    = 80
)

// IsEncrypted reports whether data starts with a vault envelope header.
func IsEncrypted(data []byte) bool {
	return strings.HasPrefix(strings.TrimSpace(string(data)), headerPrefix)
}

// Verify checks secret against the vault file at path. It returns nil when
// the passphrase matches and a VAULT-coded error otherwise.
func Verify(path string, secret []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrVault,
			"Cannot read vault file "+path,
			"Check the path and file permissions")
	}
	return VerifyData(data, secret)
}

// VerifyData checks secret against an in-memory vault envelope.
func VerifyData(data, secret []byte) error {
	salt, mac, ciphertext, err := parseEnvelope(data)
	if err != nil {
		return err
	}

	derived := pbkdf2.Key(secret, salt, kdfIterations, derivedLen, sha256.New)
	defer zero(derived)

	m := hmac.New(sha256.New, derived[32:64])
	m.Write(ciphertext)
	if !hmac.Equal(m.Sum(nil), mac) {
		return errors.New(errors.ErrVault,
			"Vault passphrase does not match",
			"Re-enter the passphrase for this vault")
	}
	return nil
}

// parseEnvelope splits a vault file into its salt, HMAC and ciphertext.
// The body is a hex blob wrapped at 80 columns; decoded, it holds three
// newline-separated hex fields.
func parseEnvelope(data []byte) (salt, mac, ciphertext []byte, err error) {
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	header := strings.TrimSpace(lines[0])
	if !strings.HasPrefix(header, headerPrefix) {
		return nil, nil, nil, errors.New(errors.ErrVault,
			"Not an ansible-vault file",
			"Expected a $ANSIBLE_VAULT header on the first line")
	}

	parts := strings.Split(header, ";")
	if len(parts) < 3 || (parts[1] != "1.1" && parts[1] != "1.2") || parts[2] != cipherName {
		return nil, nil, nil, errors.New(errors.ErrVault,
			"Unsupported vault format "+header,
			"Only 1.1/1.2 AES256 envelopes can be verified")
	}

	payload, err := hex.DecodeString(strings.Join(lines[1:], ""))
	if err != nil {
		return nil, nil, nil, errors.WrapWithCode(err, errors.ErrVault,
			"Malformed vault payload",
			"The file body is not valid hex; it may be truncated or edited")
	}

	fields := strings.Split(string(payload), "\n")
	if len(fields) != 3 {
		return nil, nil, nil, errors.New(errors.ErrVault,
			"Malformed vault payload",
			"Expected salt, HMAC and ciphertext sections")
	}

	if salt, err = hex.DecodeString(fields[0]); err == nil {
		if mac, err = hex.DecodeString(fields[1]); err == nil {
			ciphertext, err = hex.DecodeString(fields[2])
		}
	}
	if err != nil {
		return nil, nil, nil, errors.WrapWithCode(err, errors.ErrVault,
			"Malformed vault payload",
			"One of the envelope sections is not valid hex")
	}
	return salt, mac, ciphertext, nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
