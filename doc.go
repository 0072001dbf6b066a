// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

/*
Package jwkit models JSON Web Keys (RFC 7517) and key sets for RSA and P-256 EC
keys.

Untrusted JSON goes through ParseKey or ParseSet, which decode and then
Validate. Valid keys convert to and from crypto/rsa and crypto/ecdsa keys with
ToNative and FromNative. GenerateRSA and GenerateEC create new keys from a
caller-supplied random source.
*/
package jwkit
