// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures exchanged with the Arcana
// backend: users and their birth profiles, conversations, messages, and
// the tarot drawing types.
//
// All state of record lives on the backend. The client holds cached
// copies of these records and only ever replaces them wholesale with
// server responses; it never patches individual fields of a fetched
// record. JSON field names must stay bit-exact with the backend's wire
// format.
package model
