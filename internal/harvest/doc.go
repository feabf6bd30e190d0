// Package harvest turns farmer, plot and planting records into harvest
// forecasts: per-planting detail rows, month buckets of expected tonnage,
// free-text and month filtering, and the series/export encodings built on them.
//
// Every function here is pure over its inputs. Rows are built fresh for one
// request and nothing is cached between calls, so callers may run any number
// of forecasts concurrently without locking.
package harvest
