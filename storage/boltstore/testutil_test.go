package boltstore

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) (*Store, func()) {
	path := "./" + t.Name() + ".db"
	s, err := Open(path)
	assert.NoError(t, err)
	return s, func() {
		s.Close()
		os.Remove(path)
	}
}
