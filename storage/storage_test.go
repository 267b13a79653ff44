package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "default uses ~/.timekeeper",
			envVars:  map[string]string{"TIMEKEEPER_HOME": ""},
			expected: filepath.Join(home, ".timekeeper"),
		},
		{
			name:     "respects TIMEKEEPER_HOME",
			envVars:  map[string]string{"TIMEKEEPER_HOME": "/srv/node"},
			expected: "/srv/node",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.envVars {
				t.Setenv(k, v)
			}
			assert.Equal(t, tc.expected, Dir())
		})
	}
}

func TestProductionLayout(t *testing.T) {
	t.Setenv("TIMEKEEPER_HOME", "/srv/node")
	m := Production()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "ledger", got: LedgerDir(3, m), want: "/srv/node/storage/ledger-3"},
		{name: "bft primary", got: BFTPrimaryDir(3, m), want: "/srv/node/storage/bft-3/primary"},
		{name: "bft worker", got: BFTWorkerDir(3, 7, m), want: "/srv/node/storage/bft-3/worker-7"},
		{name: "prover", got: ProverDir(0, m), want: "/srv/node/storage/prover-0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, filepath.FromSlash(tc.want), tc.got)
		})
	}
}

func TestDevelopmentLayout(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("TIMEKEEPER_HOME", "/srv/node")
	m := Development(2)

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "ledger", got: LedgerDir(3, m), want: filepath.Join(cwd, ".ledger-3-2")},
		{name: "bft primary", got: BFTPrimaryDir(3, m), want: filepath.Join(cwd, ".bft-3", "primary-2")},
		{name: "bft worker", got: BFTWorkerDir(3, 7, m), want: filepath.Join(cwd, ".bft-3", "worker-2-7")},
		{name: "prover", got: ProverDir(1, m), want: filepath.Join(cwd, ".prover-1-2")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.got)
		})
	}
}

func TestLayout(t *testing.T) {
	t.Setenv("TIMEKEEPER_HOME", "/srv/node")

	entries := Layout(1, 4, Production())
	require.Len(t, entries, 4)
	assert.Equal(t, "ledger", entries[0].Role)
	assert.Equal(t, LedgerDir(1, Production()), entries[0].Path)
	assert.Equal(t, BFTWorkerDir(1, 4, Production()), entries[2].Path)
}

func TestMode(t *testing.T) {
	id, dev := Production().IsDevelopment()
	assert.False(t, dev)
	assert.Zero(t, id)
	assert.Equal(t, "production", Production().String())

	id, dev = Development(9).IsDevelopment()
	assert.True(t, dev)
	assert.Equal(t, uint16(9), id)
	assert.Equal(t, "development(9)", Development(9).String())
}
