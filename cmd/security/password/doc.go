// Package password hashes and verifies account passwords with Argon2id.
//
// Encoded hashes use the PHC string format:
//
//	$argon2id$v=19$m=<mem>,t=<iter>,p=<par>$<salt_b64>$<key_b64>
//
// Every Hash call draws a fresh random salt, so hashing the same plaintext twice
// yields different strings that both verify. Verify re-derives the key with the
// salt and parameters embedded in the stored hash and compares in constant time.
//
// Stored hashes are treated as untrusted input: Verify rejects malformed strings
// and parameters far above the configured cost.
package password
