// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package jobdef

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/buildmatrix/lib/schema/job"
)

// digestContext separates job document digests from any other BLAKE3
// use of the same bytes.
const digestContext = "buildmatrix 2026 job document digest v1"

// Digest returns the BLAKE3 digest of the document's deterministic CBOR
// encoding. Identical job lists always produce identical digests, so
// two generation runs can be compared without diffing their output.
// The digest is independent of the output format chosen for a run.
func Digest(jobs []job.Job) ([32]byte, error) {
	data, err := Marshal(jobs, FormatCBOR)
	if err != nil {
		return [32]byte{}, fmt.Errorf("computing document digest: %w", err)
	}

	hasher := blake3.NewDeriveKey(digestContext)
	if _, err := hasher.Write(data); err != nil {
		return [32]byte{}, fmt.Errorf("computing document digest: %w", err)
	}

	var digest [32]byte
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// FormatDigest returns the hex encoding of a digest.
func FormatDigest(digest [32]byte) string {
	return hex.EncodeToString(digest[:])
}
