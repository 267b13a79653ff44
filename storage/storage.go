// Package storage builds filesystem paths for a node's on-disk layout.
//
// In production mode every role lives under the base directory:
//
//	~/.timekeeper/storage/ledger-{network}
//	~/.timekeeper/storage/bft-{network}/primary
//	~/.timekeeper/storage/bft-{network}/worker-{worker}
//	~/.timekeeper/storage/prover-{network}
//
// In development mode paths are hidden directories under the working
// directory and carry the development node id, so several local nodes can
// share one checkout. Nothing here touches the filesystem beyond resolving
// the home and working directories.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexander-akhmetov/timekeeper/internal/debug"
)

// DirName is the base directory name created under the user's home.
const DirName = ".timekeeper"

// Mode selects production or development layout.
type Mode struct {
	dev bool
	id  uint16
}

// Production returns the production mode.
func Production() Mode { return Mode{} }

// Development returns the development mode for node id.
func Development(id uint16) Mode { return Mode{dev: true, id: id} }

// IsDevelopment reports whether m is development mode, and its node id.
func (m Mode) IsDevelopment() (uint16, bool) { return m.id, m.dev }

func (m Mode) String() string {
	if m.dev {
		return fmt.Sprintf("development(%d)", m.id)
	}
	return "production"
}

// Dir returns the base directory: $TIMEKEEPER_HOME if set, otherwise
// ~/.timekeeper. Without a home directory it falls back to the working
// directory.
func Dir() string {
	if dir := os.Getenv("TIMEKEEPER_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		debug.Logf("storage: no home directory (%v), using working directory", err)
		return filepath.Join(workDir(), DirName)
	}
	return filepath.Join(home, DirName)
}

func workDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		debug.Logf("storage: no working directory (%v), using \".\"", err)
		return "."
	}
	return cwd
}

func base(m Mode) string {
	if m.dev {
		return workDir()
	}
	return filepath.Join(Dir(), "storage")
}

// LedgerDir returns the ledger directory for network.
func LedgerDir(network uint16, m Mode) string {
	if m.dev {
		return filepath.Join(base(m), fmt.Sprintf(".ledger-%d-%d", network, m.id))
	}
	return filepath.Join(base(m), fmt.Sprintf("ledger-%d", network))
}

// BFTPrimaryDir returns the BFT primary's directory for network.
func BFTPrimaryDir(network uint16, m Mode) string {
	if m.dev {
		return filepath.Join(base(m), fmt.Sprintf(".bft-%d", network), fmt.Sprintf("primary-%d", m.id))
	}
	return filepath.Join(base(m), fmt.Sprintf("bft-%d", network), "primary")
}

// BFTWorkerDir returns the directory of BFT worker for network. In
// development mode the name also carries the primary's node id.
func BFTWorkerDir(network uint16, worker uint32, m Mode) string {
	if m.dev {
		return filepath.Join(base(m), fmt.Sprintf(".bft-%d", network), fmt.Sprintf("worker-%d-%d", m.id, worker))
	}
	return filepath.Join(base(m), fmt.Sprintf("bft-%d", network), fmt.Sprintf("worker-%d", worker))
}

// ProverDir returns the prover directory for network.
func ProverDir(network uint16, m Mode) string {
	if m.dev {
		return filepath.Join(base(m), fmt.Sprintf(".prover-%d-%d", network, m.id))
	}
	return filepath.Join(base(m), fmt.Sprintf("prover-%d", network))
}

// Entry is one role directory.
type Entry struct {
	Role string
	Path string
}

// Layout lists every role directory for network, in a stable order.
func Layout(network uint16, worker uint32, m Mode) []Entry {
	return []Entry{
		{Role: "ledger", Path: LedgerDir(network, m)},
		{Role: "bft primary", Path: BFTPrimaryDir(network, m)},
		{Role: "bft worker", Path: BFTWorkerDir(network, worker, m)},
		{Role: "prover", Path: ProverDir(network, m)},
	}
}
