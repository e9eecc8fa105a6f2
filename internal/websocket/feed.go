package websocket

import (
	"github.com/dukerupert/compras/internal/backup"
	"github.com/dukerupert/compras/internal/model"
	"github.com/dukerupert/compras/internal/shopping"
)

const (
	entityShopping = "shopping"
	entityBackup   = "backup"
)

// ShoppingMessage builds the notification for a store event.
func ShoppingMessage(ev shopping.Event, st model.State) Message {
	var listID string
	extra := map[string]any{
		"history":       len(st.ShoppingHistory),
		"waste_reports": len(st.WasteReports),
	}
	if st.CurrentList != nil {
		listID = st.CurrentList.ID
		extra["items"] = len(st.CurrentList.Items)
	}
	return NewMessage(entityShopping, string(ev.Op), listID, extra)
}

// Attach broadcasts every store event to the hub. Broadcast never blocks, so
// it is safe to call from a store listener.
func Attach(hub *Hub, s *shopping.Store) {
	s.Subscribe(func(ev shopping.Event, st model.State) {
		hub.Broadcast(ShoppingMessage(ev, st))
	})
}

// BackupStatusCallback returns a backup.StatusCallback that broadcasts state
// changes.
func BackupStatusCallback(hub *Hub) backup.StatusCallback {
	return func(s backup.Status) {
		extra := map[string]any{"in_progress": s.InProgress}
		if s.Error != "" {
			extra["error"] = s.Error
		}
		hub.Broadcast(NewMessage(entityBackup, string(s.State), "", extra))
	}
}
