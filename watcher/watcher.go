// Package watcher implements the change feed behind the dashboards: any
// insert/update/delete on the reports collection turns into a bare
// "reports_changed" ping over the WebSocket hub, and every dashboard
// re-queries its own scope in response. The ping deliberately carries no
// payload, so a missed event costs nothing more than a slightly later
// refresh.
package watcher

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/SimpleHunt/Appointment-app/config"
	"github.com/SimpleHunt/Appointment-app/models"
	"github.com/SimpleHunt/Appointment-app/websocket"
)

const pollInterval = 5 * time.Second

// ReportWatcher streams report changes into the hub.
type ReportWatcher struct {
	collection *mongo.Collection
	hub        *websocket.Hub
}

func NewReportWatcher(db *mongo.Client, hub *websocket.Hub) *ReportWatcher {
	return &ReportWatcher{
		collection: config.GetCollection(db, "reports"),
		hub:        hub,
	}
}

// Run watches the reports collection until ctx is cancelled. Change
// streams need a replica set; on a standalone deployment the watch call
// fails and we fall back to polling updated_at.
func (w *ReportWatcher) Run(ctx context.Context) {
	stream, err := w.collection.Watch(ctx, mongo.Pipeline{},
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		log.Printf("Change streams unavailable (%v), falling back to polling", err)
		w.poll(ctx)
		return
	}
	defer stream.Close(ctx)

	log.Println("Watching reports collection for changes")
	for stream.Next(ctx) {
		w.broadcast()
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		log.Printf("Report change stream ended: %v, falling back to polling", err)
		w.poll(ctx)
	}
}

// poll approximates the change feed by observing the newest updated_at
// and the collection size.
func (w *ReportWatcher) poll(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	lastSeen, lastCount := w.snapshot(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			seen, count := w.snapshot(ctx)
			if seen.After(lastSeen) || count != lastCount {
				lastSeen, lastCount = seen, count
				w.broadcast()
			}
		}
	}
}

func (w *ReportWatcher) snapshot(ctx context.Context) (time.Time, int64) {
	opCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := w.collection.CountDocuments(opCtx, bson.M{})
	if err != nil {
		log.Printf("Report poll count failed: %v", err)
		return time.Time{}, -1
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	var latest models.Report
	err = w.collection.FindOne(opCtx, bson.M{}, opts).Decode(&latest)
	if err != nil {
		if err != mongo.ErrNoDocuments {
			log.Printf("Report poll failed: %v", err)
		}
		return time.Time{}, count
	}
	return latest.UpdatedAt, count
}

func (w *ReportWatcher) broadcast() {
	w.hub.Broadcast(websocket.Notification{
		Type:    websocket.NotificationTypeReportsChanged,
		Message: "Reports have changed",
	})
}
