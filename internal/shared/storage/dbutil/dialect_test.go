package dbutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebindToQuestion(t *testing.T) {
	assert.Equal(t, "SELECT * FROM t WHERE id = ? AND name = ?",
		RebindToQuestion("SELECT * FROM t WHERE id = $1 AND name = $2"))
	assert.Equal(t, "SELECT 1", RebindToQuestion("SELECT 1"))
}

func TestStripPgCasts(t *testing.T) {
	assert.Equal(t, "UPDATE t SET rating = $1 WHERE id = $2",
		StripPgCasts("UPDATE t SET rating = $1::int WHERE id = $2"))
}

func TestRebindToPositional(t *testing.T) {
	q := "SELECT * FROM t WHERE id = $1"
	assert.Equal(t, q, RebindToPositional(q))
}
