package trace

import "strings"

// StartMarkerPrefix begins the line that separates the discarded banner from
// the traceback region of a crash dump.
const StartMarkerPrefix = "PC="

// Chunk-header markers. A chunk starts either at the literal entry-point
// frame or at a goroutine heading.
const (
	entryPointMarker      = "main.main()"
	goroutineMarkerPrefix = "goroutine "
)

// registerTokens are the amd64 register names the Go runtime prints after
// the traceback on a fatal signal. The first line starting with one of these
// tokens ends the chunked region.
var registerTokens = []string{
	"rax", "rbx", "rcx", "rdx", "rdi", "rsi", "rbp", "rsp",
	"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15",
	"rip", "rflags", "cs", "fs", "gs",
}

// IsStartMarker reports whether line begins the traceback region.
func IsStartMarker(line string) bool {
	return strings.HasPrefix(line, StartMarkerPrefix)
}

// IsChunkHeader reports whether line starts a new chunk.
func IsChunkHeader(line string) bool {
	line = trimTerminator(line)

	return line == entryPointMarker || strings.HasPrefix(line, goroutineMarkerPrefix)
}

// IsEndMarker reports whether line is a register-dump line. The token must
// be followed by a space so that identifiers that merely start with a
// register name (e.g. "rax_shadow") do not terminate the region early.
func IsEndMarker(line string) bool {
	for _, tok := range registerTokens {
		if strings.HasPrefix(line, tok+" ") {
			return true
		}
	}

	return false
}
