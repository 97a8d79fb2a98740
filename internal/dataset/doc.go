// Package dataset implements the loading and caching layer for the
// pre-aggregated dashboard CSV files.
//
// Each dataset is read from disk on first request, validated against a
// statically defined schema, coerced into typed records and memoized for the
// lifetime of the process. The cache is an explicit Store object owned by the
// application; it is keyed by dataset identifier and can be invalidated per
// dataset or wholesale. Loading the same dataset twice returns the memoized
// rows without touching the file again, and concurrent first loads are
// collapsed into a single read.
//
// Error vocabulary: a missing file surfaces as a NOT_FOUND AppError, a
// missing or misnamed column as a SCHEMA AppError, and a malformed cell as a
// PARSING AppError naming the offending row and column.
package dataset
