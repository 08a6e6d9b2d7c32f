// Package buildinfo carries version metadata injected at link time:
//
//	go build -ldflags "-X github.com/YorHaaa/ATAI/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version   = "dev"
	Revision  = ""
	BuildDate = ""
)

// Name is the server name reported to MCP clients.
const Name = "atai"
