package db

import (
	"testing"

	"github.com/smallbiznis/orderdesk/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect(t *testing.T) {
	tests := []struct {
		dbType string
		name   string
		err    bool
	}{
		{dbType: "postgres", name: "postgres"},
		{dbType: "mysql", name: "mysql"},
		{dbType: "sqlite", name: "sqlite"},
		{dbType: "", name: "sqlite"},
		{dbType: "oracle", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			d, err := Dialect(config.Config{DBType: tt.dbType, DBName: "orderdesk"})
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name())
		})
	}
}

func TestNewTest(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	var one int
	require.NoError(t, conn.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
