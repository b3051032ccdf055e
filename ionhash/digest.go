/*
 * Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License").
 * You may not use this file except in compliance with the License.
 * A copy of the License is located at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * or in the "license" file accompanying this file. This file is distributed
 * on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either
 * express or implied. See the License for the specific language governing
 * permissions and limitations under the License.
 */

// Package ionhash computes deterministic, content-addressable digests of
// Ion values, following the tree-hash construction: every value frames its
// type-qualified representation between escape bytes, containers hash the
// sorted set of their children, and annotations wrap the value they
// decorate.
package ionhash

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"hash"

	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"
)

// A DigestFactory constructs a fresh hash.Hash, matching the shape of the
// standard library's crypto/*.New constructors so any hash.Hash
// implementation can back a Hash call.
type DigestFactory func() hash.Hash

// SHA256 builds a SHA-256 digest factory.
func SHA256() hash.Hash { return sha256.New() }

// SHA1 builds a SHA-1 digest factory.
func SHA1() hash.Hash { return sha1.New() }

// MD5 builds an MD5 digest factory.
func MD5() hash.Hash { return md5.New() }

// Blake2b256 builds a keyless BLAKE2b-256 digest factory.
func Blake2b256() hash.Hash {
	h, _ := blake2b.New256(nil) // nil key never errors
	return h
}

// SipHash returns a digest factory for a keyed SipHash-2-4 64-bit digest.
// Unlike the cryptographic hashes above, a SipHash digest depends on the
// caller-supplied key: it is meant for hashing Ion values used as cache or
// lookup keys without exposing a public hash oracle, not for
// content-addressable storage where any caller must reproduce the digest.
func SipHash(k0, k1 uint64) DigestFactory {
	return func() hash.Hash {
		var key [16]byte
		binary.LittleEndian.PutUint64(key[0:8], k0)
		binary.LittleEndian.PutUint64(key[8:16], k1)
		return siphash.New(key[:])
	}
}
