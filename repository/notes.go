package repository

import (
	"context"
	"errors"
	"os"
	"time"

	"notevault/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NoteRepo struct {
	MongoCollection *mongo.Collection
}

func GetNoteRepo(client *mongo.Client) *NoteRepo {
	return &NoteRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("notes"),
	}
}

// ownerFilter is the compound predicate applied to every per-note
// operation. It is the only ownership mechanism in the system.
func ownerFilter(noteID, userID string) bson.M {
	return bson.M{"_id": noteID, "user_id": userID}
}

func (r *NoteRepo) InsertNote(ctx context.Context, note *model.Note) error {
	if note.UserID == "" {
		return errors.New("user ID is required")
	}
	_, err := r.MongoCollection.InsertOne(ctx, note)
	return err
}

// FindNote returns nil without error when the note is missing or owned
// by someone else; the two cases are indistinguishable here by design.
func (r *NoteRepo) FindNote(ctx context.Context, noteID, userID string) (*model.Note, error) {
	var note model.Note
	err := r.MongoCollection.FindOne(ctx, ownerFilter(noteID, userID)).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

// FindNotesPage returns one page of the user's notes, newest first, and
// the total match count. A search term becomes a case-insensitive
// substring match over title and body.
func (r *NoteRepo) FindNotesPage(ctx context.Context, userID, search string, page, limit int) ([]*model.Note, int64, error) {
	filter := bson.M{"user_id": userID}
	if search != "" {
		filter["$or"] = []bson.M{
			{"title": bson.M{"$regex": search, "$options": "i"}},
			{"body": bson.M{"$regex": search, "$options": "i"}},
		}
	}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// UpdateTitleBody sets whichever of title/body are non-empty and
// refreshes updated_at. Returns false when the owner filter matched
// nothing.
func (r *NoteRepo) UpdateTitleBody(ctx context.Context, noteID, userID, title, body string) (bool, error) {
	set := bson.M{"updated_at": time.Now()}
	if title != "" {
		set["title"] = title
	}
	if body != "" {
		set["body"] = body
	}

	result, err := r.MongoCollection.UpdateOne(ctx, ownerFilter(noteID, userID), bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *NoteRepo) DeleteNote(ctx context.Context, noteID, userID string) (bool, error) {
	result, err := r.MongoCollection.DeleteOne(ctx, ownerFilter(noteID, userID))
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// DeleteNotes removes every id in the set owned by userID and reports
// how many documents actually went away.
func (r *NoteRepo) DeleteNotes(ctx context.Context, userID string, noteIDs []string) (int64, error) {
	result, err := r.MongoCollection.DeleteMany(ctx, bson.M{
		"_id":     bson.M{"$in": noteIDs},
		"user_id": userID,
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// AddTags unions tags into the note's tag set and returns the updated
// note, or nil when the owner filter matched nothing.
func (r *NoteRepo) AddTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	return r.findOneAndUpdate(ctx, noteID, userID, bson.M{
		"$addToSet": bson.M{"tags": bson.M{"$each": tags}},
	})
}

// RemoveTags pulls matching tags and returns the updated note, or nil
// when the owner filter matched nothing.
func (r *NoteRepo) RemoveTags(ctx context.Context, noteID, userID string, tags []string) (*model.Note, error) {
	return r.findOneAndUpdate(ctx, noteID, userID, bson.M{
		"$pull": bson.M{"tags": bson.M{"$in": tags}},
	})
}

func (r *NoteRepo) findOneAndUpdate(ctx context.Context, noteID, userID string, update bson.M) (*model.Note, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var note model.Note
	err := r.MongoCollection.FindOneAndUpdate(ctx, ownerFilter(noteID, userID), update, opts).Decode(&note)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

func (r *NoteRepo) FindNotesByTag(ctx context.Context, userID, tag string, page, limit int) ([]*model.Note, int64, error) {
	filter := bson.M{"user_id": userID, "tags": tag}

	total, err := r.MongoCollection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// CountNotesByTag aggregates distinct tags with occurrence counts,
// highest count first. Order among equal counts is whatever the server
// yields.
func (r *NoteRepo) CountNotesByTag(ctx context.Context, userID string) ([]model.TagCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userID}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$tags",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"name":  "$_id",
			"count": 1,
		}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tags := []model.TagCount{}
	if err = cursor.All(ctx, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *NoteRepo) SetPinned(ctx context.Context, noteID, userID string, pinned bool) (bool, error) {
	return r.setFlag(ctx, noteID, userID, "is_pinned", pinned)
}

func (r *NoteRepo) SetFavorite(ctx context.Context, noteID, userID string, favorite bool) (bool, error) {
	return r.setFlag(ctx, noteID, userID, "is_favorite", favorite)
}

func (r *NoteRepo) setFlag(ctx context.Context, noteID, userID, field string, value bool) (bool, error) {
	result, err := r.MongoCollection.UpdateOne(ctx, ownerFilter(noteID, userID),
		bson.M{"$set": bson.M{field: value, "updated_at": time.Now()}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *NoteRepo) FindPinnedNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.findByFlag(ctx, userID, "is_pinned")
}

func (r *NoteRepo) FindFavoriteNotes(ctx context.Context, userID string) ([]*model.Note, error) {
	return r.findByFlag(ctx, userID, "is_favorite")
}

func (r *NoteRepo) findByFlag(ctx context.Context, userID, field string) ([]*model.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.MongoCollection.Find(ctx, bson.M{"user_id": userID, field: true}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// SetReminder replaces the note's reminder subdocument wholly; there is
// at most one reminder per note.
func (r *NoteRepo) SetReminder(ctx context.Context, noteID, userID string, reminder *model.Reminder) (bool, error) {
	result, err := r.MongoCollection.UpdateOne(ctx, ownerFilter(noteID, userID),
		bson.M{"$set": bson.M{"reminder": reminder}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

// FindUpcomingReminders returns notes whose reminder is uncompleted and
// due at or after the given time, soonest first.
func (r *NoteRepo) FindUpcomingReminders(ctx context.Context, userID string, after time.Time, limit int) ([]*model.Note, error) {
	filter := bson.M{
		"user_id":               userID,
		"reminder.date":         bson.M{"$gte": after},
		"reminder.is_completed": false,
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "reminder.date", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"title": 1, "reminder": 1})

	cursor, err := r.MongoCollection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []*model.Note
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// AppendVersion pushes a snapshot onto the note's version history. The
// list is append-only and unbounded.
func (r *NoteRepo) AppendVersion(ctx context.Context, noteID, userID string, version model.Version) (bool, error) {
	result, err := r.MongoCollection.UpdateOne(ctx, ownerFilter(noteID, userID),
		bson.M{"$push": bson.M{"versions": version}})
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}
