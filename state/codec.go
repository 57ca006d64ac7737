// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/holiman/uint256"
)

// putLE writes v as 32 little endian bytes.
func putLE(v *uint256.Int) []byte {
	b := make([]byte, 32)
	for i, limb := range v {
		binary.LittleEndian.PutUint64(b[i*8:], limb)
	}
	return b
}

func getLE(b []byte) (uint256.Int, error) {
	var v uint256.Int
	if len(b) != 32 {
		return v, fmt.Errorf("invalid 256-bit blob length %d", len(b))
	}
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(b[i*8:])
	}
	return v, nil
}

func putLE64(v uint64) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)
}

func getLE64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("invalid 64-bit blob length %d", len(b))
	}
	return binary.LittleEndian.Uint64(b), nil
}

// writeCompressed rlp encodes val into a snappy stream.
func writeCompressed(w io.Writer, val any) error {
	sw := snappy.NewBufferedWriter(w)
	if err := rlp.Encode(sw, val); err != nil {
		return err
	}
	return sw.Close()
}

func readCompressed(r io.Reader, val any) error {
	return rlp.Decode(snappy.NewReader(r), val)
}

func saveFile(path string, val any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return writeCompressed(f, val)
}

func loadFile(path string, val any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return readCompressed(f, val)
}
