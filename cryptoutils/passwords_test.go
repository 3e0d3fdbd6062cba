package cryptoutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveUserPassword_Deterministic(t *testing.T) {
	first := DeriveUserPassword("deployment-seed", "project_a_creator")
	second := DeriveUserPassword("deployment-seed", "project_a_creator")
	assert.Equal(t, first, second, "same seed and user must derive the same password")
	assert.Len(t, first, 32)
}

func TestDeriveUserPassword_DistinctPerUser(t *testing.T) {
	a := DeriveUserPassword("deployment-seed", "project_a_creator")
	b := DeriveUserPassword("deployment-seed", "project_b_creator")
	assert.NotEqual(t, a, b, "different users must get different passwords")
}

func TestDeriveUserPassword_DistinctPerSeed(t *testing.T) {
	a := DeriveUserPassword("seed-one", "project_a_creator")
	b := DeriveUserPassword("seed-two", "project_a_creator")
	assert.NotEqual(t, a, b)
}
