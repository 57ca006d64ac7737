// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state holds the in-memory world state read and written by an
// external EVM engine.
//
//	  [ engine ]
//	      |
//	[ Database ] ---- LocalDB, or fork.DB fetching misses remotely
//	      |
//	  [ Commit ]     folds a ChangeSet into the store
//	      |
//	  [ Store ]      accounts, contracts, logs, block hashes
//
// Account records are created lazily and never removed. A self-destruct
// resets the record in place. Whether an absent storage slot reads as zero
// depends on the record's AccountState.
package state
