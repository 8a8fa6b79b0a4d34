package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("garage", "s3cret", "db.internal", "3306", "garagehub")

	assert.Contains(t, dsn, "garage:s3cret@tcp(db.internal:3306)/garagehub")
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "loc=UTC")
}

func TestBuildDSNWithoutPassword(t *testing.T) {
	dsn := buildDSN("root", "", "localhost", "3306", "garagehub")

	assert.Contains(t, dsn, "root@tcp(localhost:3306)/garagehub")
	assert.NotContains(t, dsn, "root:@")
}
