// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// Commit folds changes into s. Entries are keyed by distinct addresses, so
// the map iteration order does not matter.
func Commit(s *Store, changes ChangeSet) {
	for addr, change := range changes {
		if change == nil || !change.Touched {
			continue
		}
		acc := s.Account(addr)
		if change.SelfDestructed {
			acc.reset()
			continue
		}

		info := change.Info.Copy()
		s.InsertContract(&info)
		acc.Info = info

		switch {
		case change.Created:
			clear(acc.Storage)
			acc.State = StorageCleared
		case acc.State == StorageCleared:
			// all storage is still known locally, never downgrade
		default:
			acc.State = Touched
		}

		for slot, value := range change.Storage {
			acc.Storage[slot] = value
		}
	}
}
