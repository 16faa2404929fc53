package db

import (
	"context"
	"fmt"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ActivityRepo struct {
	col *mongo.Collection
}

func (r *ActivityRepo) CreateActivity(ctx context.Context, a *models.ActivityLog) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, a)
	return err
}

func createdAtRange(from, to *time.Time) bson.M {
	if from == nil && to == nil {
		return nil
	}
	rng := bson.M{}
	if from != nil {
		rng["$gte"] = *from
	}
	if to != nil {
		rng["$lte"] = *to
	}
	return rng
}

func (r *ActivityRepo) ListActivity(ctx context.Context, f store.ActivityFilter) ([]models.ActivityLog, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Actor != nil {
		filter["actor"] = *f.Actor
	}
	if f.Action != "" {
		filter["action"] = f.Action
	}
	if f.EntityType != "" {
		filter["entityType"] = f.EntityType
	}
	if rng := createdAtRange(f.From, f.To); rng != nil {
		filter["createdAt"] = rng
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetSkip(f.Skip)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	logs := []models.ActivityLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

func (r *ActivityRepo) ActivityStats(ctx context.Context, groupBy store.GroupBy, from, to *time.Time) ([]store.ActivityStat, error) {
	if !groupBy.Valid() {
		return nil, fmt.Errorf("unsupported group: %q", groupBy)
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{}
	if rng := createdAtRange(from, to); rng != nil {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"createdAt": rng}}})
	}
	pipeline = append(pipeline,
		bson.D{{Key: "$group", Value: bson.M{
			"_id":          bson.M{"$toString": "$" + string(groupBy)},
			"count":        bson.M{"$sum": 1},
			"lastActivity": bson.M{"$max": "$createdAt"},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	)

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	stats := []store.ActivityStat{}
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *ActivityRepo) DeleteActivityBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
