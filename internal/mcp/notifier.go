package mcpserver

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/mark3labs/mcp-go/server"

	"mushaf/internal/logging"
)

// NotificationMethod is the MCP notification carrying reader events.
const NotificationMethod = "notifications/mushaf/event"

// Notifier forwards reader events to every connected MCP client. It can
// be handed to the reader before the server exists; events emitted
// before Attach are only logged.
type Notifier struct {
	srv atomic.Pointer[server.MCPServer]
}

// Attach starts forwarding to srv.
func (n *Notifier) Attach(srv *server.MCPServer) {
	n.srv.Store(srv)
}

func (n *Notifier) Emit(_ context.Context, event string, data any) {
	logging.Logger().Debug("reader event", slog.String("event", event), slog.Any("data", data))
	srv := n.srv.Load()
	if srv == nil {
		return
	}
	srv.SendNotificationToAllClients(NotificationMethod, map[string]any{
		"event": event,
		"data":  data,
	})
}
