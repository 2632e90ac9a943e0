// Copyright 2026 The Pixealed Authors
// SPDX-License-Identifier: Apache-2.0

package pxl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"runtime"
	"sync"

	"github.com/pixealed/pixealed/lib/identity"
)

// Container format constants. All integers in the layout are
// little-endian fixed-width with no padding.
const (
	// Version is the container format version written and accepted by
	// this package.
	Version byte = 0x01

	// headerSize is the fixed header: 4-byte magic + 1-byte version +
	// 4-byte chunk count + 8-byte image size.
	headerSize = 4 + 1 + 4 + 8

	// signatureSize is the Ed25519 signature length.
	signatureSize = 64

	// trailerFixedSize is everything after the chunk region except
	// the manifest itself: 4-byte manifest length + signature +
	// 4-byte footer.
	trailerFixedSize = 4 + signatureSize + 4
)

var (
	containerMagic  = [4]byte{'P', 'X', 'L', '!'}
	containerFooter = [4]byte{'E', 'N', 'D', '!'}
)

// Pack assembles a .pxl container for image. The sequence is strictly
// ordered: split, hash (the only parallel step), Merkle root, manifest
// assembly, canonical encoding, signing, emission. Any failure aborts
// the whole operation — the container is built entirely in memory, so
// a failed pack produces no partial artifact.
//
// metadata is the extractor's field map and may be nil or empty; the
// core does not interpret it. Returns ErrEmptyInput for a zero-length
// image.
func Pack(image []byte, metadata map[string]string, id *identity.Identity) ([]byte, error) {
	chunks, err := Split(image, ChunkSize)
	if err != nil {
		return nil, err
	}

	digests := hashChunks(chunks)

	root, err := MerkleRoot(digests)
	if err != nil {
		return nil, err
	}

	chunkHashes := make([]string, len(digests))
	for i, digest := range digests {
		chunkHashes[i] = FormatHash(digest)
	}

	// The metadata map is copied so later caller mutations cannot
	// desynchronize the container from its signature.
	metadataCopy := make(map[string]string, len(metadata))
	for key, value := range metadata {
		metadataCopy[key] = value
	}

	manifest := &Manifest{
		Metadata:          metadataCopy,
		ChunkHashes:       chunkHashes,
		MerkleRoot:        FormatHash(root),
		DeviceFingerprint: identity.FingerprintHex(id.PublicKey()),
		TrustLevel:        id.TrustLevel(),
	}

	manifestBytes, err := manifest.Encode()
	if err != nil {
		return nil, err
	}

	signature, err := id.Sign(manifestBytes)
	if err != nil {
		return nil, fmt.Errorf("signing manifest: %w", err)
	}

	var container bytes.Buffer
	container.Grow(headerSize + len(image) + len(manifestBytes) + trailerFixedSize)

	container.Write(containerMagic[:])
	container.WriteByte(Version)

	var count [4]byte
	binary.LittleEndian.PutUint32(count[:], uint32(len(chunks)))
	container.Write(count[:])

	var size [8]byte
	binary.LittleEndian.PutUint64(size[:], uint64(len(image)))
	container.Write(size[:])

	container.Write(image)

	var manifestLen [4]byte
	binary.LittleEndian.PutUint32(manifestLen[:], uint32(len(manifestBytes)))
	container.Write(manifestLen[:])
	container.Write(manifestBytes)

	container.Write(signature)
	container.Write(containerFooter[:])

	return container.Bytes(), nil
}

// hashChunks computes the ordered chunk digests. Each chunk hash is
// independent, so the work is spread over a bounded worker pool; each
// worker writes only its own index's slot, and the pool is joined
// before the result is read (the Merkle reduction needs the complete
// ordered sequence).
func hashChunks(chunks []Chunk) []Hash {
	digests := make([]Hash, len(chunks))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(chunks) {
		workers = len(chunks)
	}
	if workers <= 1 {
		for i, chunk := range chunks {
			digests[i] = HashChunk(chunk.Data)
		}
		return digests
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				digests[i] = HashChunk(chunks[i].Data)
			}
		}()
	}
	for i := range chunks {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return digests
}
