package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewMemory(t *testing.T) {
	db, err := NewMemory()
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Conn().Exec(`CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT)`)
	require.NoError(t, err)

	_, err = db.Conn().Exec(`INSERT INTO t (v) VALUES (?)`, "hello")
	require.NoError(t, err)

	var v string
	err = db.Conn().QueryRow(`SELECT v FROM t WHERE id = 1`).Scan(&v)
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestHealthCheck(t *testing.T) {
	db, err := NewMemory()
	require.NoError(t, err)
	defer db.Close()

	status, err := db.HealthCheck(context.Background())
	require.NoError(t, err)
	require.True(t, status.Healthy)
}
