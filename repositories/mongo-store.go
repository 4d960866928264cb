package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"facility-maintenance/microservices/statistics-service/logging"
	"facility-maintenance/microservices/statistics-service/models"
)

type taskDocument struct {
	ID         primitive.ObjectID   `bson:"_id"`
	Department primitive.ObjectID   `bson:"department"`
	Title      string               `bson:"title"`
	Status     string               `bson:"status"`
	Priority   string               `bson:"priority"`
	Category   []string             `bson:"category"`
	AssignedTo []primitive.ObjectID `bson:"assignedTo"`
	Date       time.Time            `bson:"date"`
}

func (d taskDocument) toModel() models.Task {
	task := models.Task{
		ID:           d.ID.Hex(),
		DepartmentID: d.Department.Hex(),
		Title:        d.Title,
		Status:       models.TaskStatus(d.Status),
		Priority:     models.TaskPriority(d.Priority),
		Date:         d.Date.UTC(),
	}
	for _, c := range d.Category {
		task.Category = append(task.Category, models.TaskCategory(c))
	}
	for _, id := range d.AssignedTo {
		task.AssignedTo = append(task.AssignedTo, id.Hex())
	}
	return task
}

type userDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
}

// MongoStore reads tasks, users and departments from their MongoDB
// collections. Ids are ObjectIds on the wire and hex strings in the models.
type MongoStore struct {
	tasks        *mongo.Collection
	users        *mongo.Collection
	departments  *mongo.Collection
	queryTimeout time.Duration
}

func NewMongoStore(db *mongo.Database, tasks, users, departments string, queryTimeout time.Duration) *MongoStore {
	return &MongoStore{
		tasks:        db.Collection(tasks),
		users:        db.Collection(users),
		departments:  db.Collection(departments),
		queryTimeout: queryTimeout,
	}
}

func (s *MongoStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

func (s *MongoStore) FindTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	departmentID, err := primitive.ObjectIDFromHex(filter.DepartmentID)
	if err != nil {
		// no stored task can reference a malformed id
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	query := bson.M{
		"department": departmentID,
		"date": bson.M{
			"$gte": models.StartOfDay(filter.From),
			"$lt":  filter.Until(),
		},
	}
	opts := options.Find().SetProjection(bson.M{
		"title": 1, "department": 1, "status": 1, "priority": 1,
		"category": 1, "assignedTo": 1, "date": 1,
	})

	cursor, err := s.tasks.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	for cursor.Next(ctx) {
		var doc taskDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, doc.toModel())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return tasks, nil
}

func (s *MongoStore) FindUsers(ctx context.Context, ids []string) ([]models.User, error) {
	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, oid)
	}
	if len(objectIDs) == 0 {
		return nil, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"firstName": 1, "lastName": 1, "email": 1})
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, models.User{
			ID:        d.ID.Hex(),
			FirstName: d.FirstName,
			LastName:  d.LastName,
			Email:     d.Email,
		})
	}
	return users, nil
}

func (s *MongoStore) UserExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, s.users, id)
}

func (s *MongoStore) DepartmentExists(ctx context.Context, id string) (bool, error) {
	return s.exists(ctx, s.departments, id)
}

func (s *MongoStore) exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	err = coll.FindOne(ctx, bson.M{"_id": oid}, opts).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %s: %w", coll.Name(), id, err)
	}
	return true, nil
}

type changeEvent struct {
	OperationType            string        `bson:"operationType"`
	FullDocument             *taskDocument `bson:"fullDocument"`
	FullDocumentBeforeChange *taskDocument `bson:"fullDocumentBeforeChange"`
}

// changedDepartments lists the departments a task change touches. A delete
// without a pre-image yields a single empty id.
func changedDepartments(ev changeEvent) []string {
	var departments []string
	add := func(d *taskDocument) {
		if d == nil || d.Department.IsZero() {
			return
		}
		hex := d.Department.Hex()
		for _, existing := range departments {
			if existing == hex {
				return
			}
		}
		departments = append(departments, hex)
	}
	add(ev.FullDocumentBeforeChange)
	add(ev.FullDocument)
	if len(departments) == 0 {
		return []string{""}
	}
	return departments
}

// Watch follows the tasks change stream and reports the affected department of
// every insert, update, replace and delete.
func (s *MongoStore) Watch(ctx context.Context, onChange func(departmentID string)) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	opts := options.ChangeStream().
		SetFullDocument(options.UpdateLookup).
		SetFullDocumentBeforeChange(options.WhenAvailable)

	stream, err := s.tasks.Watch(ctx, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to open task change stream: %w", err)
	}
	defer stream.Close(context.Background())

	logging.Logger.Infof("Event ID: CHANGE_STREAM_OPENED, Description: Watching %s for task changes", s.tasks.Name())

	for stream.Next(ctx) {
		var ev changeEvent
		if err := stream.Decode(&ev); err != nil {
			logging.Logger.Warnf("Event ID: CHANGE_EVENT_DECODE_FAILED, Description: %v", err)
			onChange("")
			continue
		}
		for _, departmentID := range changedDepartments(ev) {
			onChange(departmentID)
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("task change stream failed: %w", err)
	}
	return nil
}
