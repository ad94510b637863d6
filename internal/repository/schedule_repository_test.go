package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwnerAdvisoryLockKeyIsStable(t *testing.T) {
	ownerID := uuid.MustParse("11111111-2222-3333-4444-555555555555")

	assert.Equal(t, ownerAdvisoryLockKey(ownerID), ownerAdvisoryLockKey(ownerID))
}

func TestOwnerAdvisoryLockKeyDiffersPerOwner(t *testing.T) {
	a := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	b := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	assert.NotEqual(t, ownerAdvisoryLockKey(a), ownerAdvisoryLockKey(b))
}
