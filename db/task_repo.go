package db

import (
	"context"
	"time"

	"github.com/purbarunBC13/team-tracker/models"
	"github.com/purbarunBC13/team-tracker/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type TaskRepo struct {
	col *mongo.Collection
}

func (r *TaskRepo) CreateTask(ctx context.Context, t *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	if t.Comments == nil {
		t.Comments = []models.Comment{}
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *TaskRepo) GetTask(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var task models.Task
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return nil, notFound(err)
	}
	return &task, nil
}

func (r *TaskRepo) UpdateTask(ctx context.Context, t *models.Task) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"title":       t.Title,
		"description": t.Description,
		"assignee":    t.Assignee,
		"project":     t.Project,
		"status":      t.Status,
		"priority":    t.Priority,
		"dueDate":     t.DueDate,
		"completedAt": t.CompletedAt,
		"updatedAt":   t.UpdatedAt,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": t.ID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) DeleteTask(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) ListTasks(ctx context.Context, f store.TaskFilter) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Project != nil {
		filter["project"] = *f.Project
	}
	if f.Assignee != nil {
		filter["assignee"] = *f.Assignee
	}
	if f.InvolvedUser != nil {
		filter["$or"] = bson.A{
			bson.M{"assignee": *f.InvolvedUser},
			bson.M{"creator": *f.InvolvedUser},
		}
	}

	cursor, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	tasks := []models.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepo) CountTasksByProject(ctx context.Context, projectID primitive.ObjectID) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{"project": projectID})
}

func (r *TaskRepo) AddComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{
			"$push": bson.M{"comments": c},
			"$set":  bson.M{"updatedAt": c.CreatedAt},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) UpdateComment(ctx context.Context, taskID, commentID primitive.ObjectID, text string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": taskID, "comments._id": commentID},
		bson.M{"$set": bson.M{"comments.$.text": text, "comments.$.updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepo) DeleteComment(ctx context.Context, taskID, commentID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$pull": bson.M{"comments": bson.M{"_id": commentID}}},
	)
	if err != nil {
		return err
	}
	if res.ModifiedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
