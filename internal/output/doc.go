// Package output provides pluggable destinations for filtered trace text via
// the [Writer] interface, with [StdoutWriter] and [FileWriter] implementations.
package output
