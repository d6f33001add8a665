// Package scoutserver exposes the discovery pipeline as MCP tools:
// channel_scan, channel_discover, branding_check.
package scoutserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"channelscout/internal/engine"
	"channelscout/internal/engine/sources"
)

// Deps carries the live browsing stack shared by all tools. The session is
// driven serially; the MCP server handles one tool call at a time per run
// contract, and tools that need no browser take no dep.
type Deps struct {
	Session   *engine.Session
	Discovery *sources.Discovery
	Channels  *sources.Channels
}

// RegisterTools registers all channel-scouting tools on the given MCP server.
func RegisterTools(server *mcp.Server, d *Deps) {
	registerChannelScan(server, d)
	registerChannelDiscover(server, d)
	registerBrandingCheck(server)
}
