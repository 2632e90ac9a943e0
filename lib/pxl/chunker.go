// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import "fmt"

// ChunkSize is the fixed chunk size of the .pxl format. This is a
// protocol constant — changing it moves every chunk boundary and
// therefore every chunk digest and Merkle root, breaking signature
// reproducibility against existing containers.
const ChunkSize = 256 * 1024 // 256 KiB

// Chunk is one ordered, zero-based byte span of the source image.
// Data is a sub-slice of the input buffer, not a copy — chunks are
// only valid while the input buffer is unmodified.
type Chunk struct {
	Index int
	Data  []byte
}

// Split cuts data into chunks of chunkSize bytes. Chunks cover the
// input contiguously with no gaps and no overlap; the final chunk
// holds the remainder (between 1 and chunkSize bytes). Concatenating
// the chunks in index order reproduces the input exactly.
//
// Split is a pure function: identical input and chunkSize always
// produce identical boundaries. Returns ErrEmptyInput for a
// zero-length buffer.
func Split(data []byte, chunkSize int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("pxl: chunk size must be positive, got %d", chunkSize)
	}
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}

	chunks := make([]Chunk, 0, (len(data)+chunkSize-1)/chunkSize)
	for offset := 0; offset < len(data); offset += chunkSize {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}
		chunks = append(chunks, Chunk{
			Index: len(chunks),
			Data:  data[offset:end],
		})
	}
	return chunks, nil
}

// chunkCountFor returns the number of chunks a buffer of the given
// size splits into at the protocol chunk size.
func chunkCountFor(size uint64) uint64 {
	return (size + ChunkSize - 1) / ChunkSize
}
