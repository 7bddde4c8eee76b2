package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/rohanthewiz/logger"
	"github.com/rohanthewiz/serr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"notevault/models"
)

// ============================================================================
// MongoDB remote document store
//
// Each collection is watched through a change stream. Every change event
// triggers a re-read of the whole collection, so subscribers always receive a
// complete snapshot. Deployments without change streams (a standalone server)
// fall back to polling at the configured interval.
// ============================================================================

// MongoOptions configures the MongoDB store.
type MongoOptions struct {
	URI      string
	Database string
	// Transactions wraps every batch in a multi-document transaction. It needs
	// a replica set; without one batches are plain ordered bulk upserts.
	Transactions bool
	PollInterval time.Duration
}

// Mongo implements models.RemoteStore on MongoDB.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	opts   MongoOptions
}

// ConnectMongo connects, pings and ensures indexes.
func ConnectMongo(ctx context.Context, opts MongoOptions) (*Mongo, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, serr.Wrap(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, serr.Wrap(err, "failed to ping mongo")
	}

	m := &Mongo{client: client, db: client.Database(opts.Database), opts: opts}
	if err := m.ensureIndexes(ctx); err != nil {
		logger.LogErr(err, "could not create remote indexes")
	}

	logger.Info("Remote store connected", "database", opts.Database, "transactions", opts.Transactions)
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	for _, coll := range []models.Collection{models.CollectionModules, models.CollectionItems} {
		_, err := m.db.Collection(string(coll)).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys: bson.D{{Key: "createdAt", Value: 1}},
		})
		if err != nil {
			return serr.Wrap(err, "failed to create index on "+string(coll))
		}
	}
	return nil
}

// Close disconnects the client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Subscribe starts a watcher goroutine for coll.
func (m *Mongo) Subscribe(ctx context.Context, coll models.Collection) (*models.Subscription, error) {
	wctx, cancel := context.WithCancel(ctx)
	ch := make(chan models.Snapshot, 1)

	go func() {
		defer close(ch)
		m.watch(wctx, coll, ch)
	}()
	return models.NewSubscription(ch, cancel), nil
}

func (m *Mongo) watch(ctx context.Context, coll models.Collection, ch chan models.Snapshot) {
	c := m.db.Collection(string(coll))
	m.emitCurrent(ctx, coll, ch)

	for ctx.Err() == nil {
		stream, err := c.Watch(ctx, mongo.Pipeline{})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn("Change streams unavailable, polling instead",
				"collection", string(coll), "error", err.Error())
			m.poll(ctx, coll, ch)
			return
		}

		for stream.Next(ctx) {
			m.emitCurrent(ctx, coll, ch)
		}
		streamErr := stream.Err()
		_ = stream.Close(context.Background())
		if ctx.Err() != nil {
			return
		}
		if streamErr != nil {
			send(ctx, ch, models.Snapshot{Collection: coll, Err: serr.Wrap(streamErr, "change stream interrupted")})
		}

		// Re-read once the stream is back so changes missed in between are delivered.
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.opts.PollInterval):
		}
		m.emitCurrent(ctx, coll, ch)
	}
}

func (m *Mongo) poll(ctx context.Context, coll models.Collection, ch chan models.Snapshot) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.emitCurrent(ctx, coll, ch)
		}
	}
}

func (m *Mongo) emitCurrent(ctx context.Context, coll models.Collection, ch chan models.Snapshot) {
	docs, err := m.readAll(ctx, coll)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		send(ctx, ch, models.Snapshot{Collection: coll, Err: err})
		return
	}
	send(ctx, ch, models.Snapshot{Collection: coll, Documents: docs})
}

func (m *Mongo) readAll(ctx context.Context, coll models.Collection) ([]models.Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := m.db.Collection(string(coll)).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, serr.Wrap(err, "failed to read "+string(coll))
	}
	defer cursor.Close(ctx)

	var raw []bson.M
	if err := cursor.All(ctx, &raw); err != nil {
		return nil, serr.Wrap(err, "failed to decode "+string(coll))
	}

	docs := make([]models.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, documentFromBSON(r))
	}
	return docs, nil
}

// send replaces an unconsumed snapshot with the newer one.
func send(ctx context.Context, ch chan models.Snapshot, snap models.Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- snap:
	case <-ctx.Done():
	}
}

// BatchWrite upserts every document, inside a transaction when enabled.
func (m *Mongo) BatchWrite(ctx context.Context, writes []models.DocumentWrite) error {
	if len(writes) == 0 {
		return nil
	}

	var order []models.Collection
	grouped := make(map[models.Collection][]mongo.WriteModel)
	for _, w := range writes {
		if _, ok := grouped[w.Collection]; !ok {
			order = append(order, w.Collection)
		}
		grouped[w.Collection] = append(grouped[w.Collection], mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": w.Document.ID}).
			SetReplacement(documentToBSON(w.Document)).
			SetUpsert(true))
	}

	apply := func(ctx context.Context) error {
		for _, coll := range order {
			_, err := m.db.Collection(string(coll)).BulkWrite(ctx, grouped[coll], options.BulkWrite().SetOrdered(true))
			if err != nil {
				return serr.Wrap(err, "bulk upsert into "+string(coll)+" failed")
			}
		}
		return nil
	}

	if !m.opts.Transactions {
		return apply(ctx)
	}

	sess, err := m.client.StartSession()
	if err != nil {
		return serr.Wrap(err, "failed to start mongo session")
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, apply(sc)
	})
	if err != nil {
		return serr.Wrap(err, "batch transaction failed")
	}
	logger.Debug("Remote batch committed", "documents", len(writes))
	return nil
}

// DeleteDocument removes one document by id.
func (m *Mongo) DeleteDocument(ctx context.Context, coll models.Collection, id string) error {
	res, err := m.db.Collection(string(coll)).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return serr.Wrap(err, "failed to delete "+string(coll)+"/"+id)
	}
	if res.DeletedCount == 0 {
		logger.Debug("Remote delete matched nothing", "collection", string(coll), "id", id)
	}
	return nil
}

// ---- BSON mapping ------------------------------------------------------------

func documentToBSON(doc models.Document) bson.M {
	out := make(bson.M, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		out[k] = v
	}
	out["_id"] = doc.ID
	return out
}

func documentFromBSON(raw bson.M) models.Document {
	fields := make(map[string]any, len(raw))
	for k, v := range raw {
		if k == "_id" {
			continue
		}
		fields[k] = normalizeValue(v)
	}
	return models.Document{ID: idString(raw["_id"]), Fields: fields}
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case primitive.ObjectID:
		return id.Hex()
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

// normalizeValue converts driver-specific types into plain Go values.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case primitive.A:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case primitive.M:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = normalizeValue(item)
		}
		return out
	case primitive.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = normalizeValue(e.Value)
		}
		return out
	case primitive.DateTime:
		return int64(t)
	case primitive.ObjectID:
		return t.Hex()
	case int32:
		return int64(t)
	default:
		return v
	}
}
