// Package containers keeps the console's offline copy of the container list
// in the local SQLite cache. Timestamps are stored as Unix nanoseconds so
// ordering stays numeric.
package containers
