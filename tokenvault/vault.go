package tokenvault

import (
	"github.com/fernet/fernet-go"
	"github.com/pkg/errors"
)

// Vault encrypts and decrypts authentication tokens for storage at rest with
// an authenticated symmetric cipher. The key is supplied at startup.
type Vault struct {
	key *fernet.Key
}

// New returns a vault over the given base64 Fernet key.
func New(key string) (*Vault, error) {
	decodedKey, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, errors.Wrap(err, "invalid fernet key")
	}
	return &Vault{key: decodedKey}, nil
}

// Encrypt encrypts plaintext into a base64 Fernet token.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	ciphertext, err := fernet.EncryptAndSign([]byte(plaintext), v.key)
	if err != nil {
		return "", errors.Wrap(err, "couldn't encrypt token")
	}
	return string(ciphertext), nil
}

// Decrypt decrypts a base64 Fernet token back into its plaintext.
func (v *Vault) Decrypt(ciphertext string) (string, error) {
	plaintext := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, []*fernet.Key{v.key})
	if plaintext == nil {
		return "", errors.New("couldn't decrypt token")
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether s is a token this vault can decrypt.
func (v *Vault) IsEncrypted(s string) bool {
	return fernet.VerifyAndDecrypt([]byte(s), 0, []*fernet.Key{v.key}) != nil
}
