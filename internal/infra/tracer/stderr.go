package tracer

import "os"

// stderrWriter routes exporter output to stderr. stdout is reserved for
// the MCP wire protocol.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}
