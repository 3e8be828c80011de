package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	got := dsn("nana", "secret", "127.0.0.1", "3306", "academy")
	assert.True(t, strings.HasPrefix(got, "nana:secret@tcp(127.0.0.1:3306)/academy"), got)
	assert.Contains(t, got, "parseTime=true")
	assert.Contains(t, got, "charset=utf8mb4")
}

func TestDSNEmptyPassword(t *testing.T) {
	got := dsn("nana", "", "127.0.0.1", "3306", "academy")
	assert.True(t, strings.HasPrefix(got, "nana@tcp(127.0.0.1:3306)/academy"), got)
}
