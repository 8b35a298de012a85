// Package ir provides the canonical data model for the lineup engine.
//
// This package contains type definitions and their encodings only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - salaries and prices are int64
//   - Slot identifiers are structured (position, ordinal) pairs; the
//     "{position}_{index}" string form exists only at the persistence edge
//   - All JSON and YAML tags use snake_case
//   - Position codes are normalized before comparison (see NormalizeCode)
package ir
