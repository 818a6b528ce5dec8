package ports

// PasswordHasher is a one-way credential digest. Implementations must use a
// memory-hard algorithm; no other contract is assumed.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(digest, plaintext string) (bool, error)
}
