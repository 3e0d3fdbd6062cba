// Package cryptoutils provides key-derivation helpers for the provisioning
// workflow.
package cryptoutils

import (
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// passwordSaltPrefix namespaces the derivation so the same seed used for
// another purpose never yields the same key material.
const passwordSaltPrefix = "KEYMANAGER-USER-"

// DeriveUserPassword creates a deterministic per-user password from a master
// seed using the Argon2id KDF. The user name is part of the salt, so every
// user gets a distinct password while the plan stays reproducible from
// configuration alone.
//
// Parameters: time=1, memory=64MiB, threads=4, keyLen=16. The result is
// hex-encoded (32 characters).
func DeriveUserPassword(seed, userName string) string {
	salt := append([]byte(passwordSaltPrefix), userName...)
	key := argon2.IDKey([]byte(seed), salt, 1, 64*1024, 4, 16)
	return hex.EncodeToString(key)
}
