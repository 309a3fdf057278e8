package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskade/taskade-backend/logger"
	"github.com/taskade/taskade-backend/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// taskCollection is the slice of *mongo.Collection the task handlers need.
// Narrow on purpose so tests can substitute a double.
type taskCollection interface {
	InsertOne(ctx context.Context, document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter interface{},
		opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{},
		opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

type TasksHandler struct {
	tasks taskCollection
	ctx   context.Context
}

func NewTaskHandler(ctx context.Context, tasks taskCollection) *TasksHandler {
	return &TasksHandler{
		tasks: tasks,
		ctx:   ctx,
	}
}

// StatusHandler - GET / liveness probe
func (handler *TasksHandler) StatusHandler(c *gin.Context) {
	c.String(http.StatusOK, "Hello World!")
}

// NewTaskHandler - POST /task
// Inserts the task exactly as sent; the archive and checked flags are
// whatever the client supplied, missing fields become zero values.
func (handler *TasksHandler) NewTaskHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var task model.Task
	if err := c.ShouldBindJSON(&task); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task.ID = primitive.NewObjectID()
	result, err := handler.tasks.InsertOne(ctx, task)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"acknowledged": true,
		"insertedId":   result.InsertedID,
	})
}

// ActiveTasksHandler - GET /task/:email
func (handler *TasksHandler) ActiveTasksHandler(c *gin.Context) {
	handler.listTasks(c, c.Param("email"), false)
}

// ArchivedTasksHandler - GET /archive/:email
func (handler *TasksHandler) ArchivedTasksHandler(c *gin.Context) {
	handler.listTasks(c, c.Param("email"), true)
}

// listTasks scopes strictly by exact email match plus the archive flag.
func (handler *TasksHandler) listTasks(c *gin.Context, email string, archived bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cur, err := handler.tasks.Find(ctx, bson.M{"email": email, "archive": archived})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer cur.Close(ctx)

	tasks := make([]model.Task, 0)
	for cur.Next(ctx) {
		var task model.Task
		if err := cur.Decode(&task); err != nil {
			logger.FromCtx(c.Request.Context()).Warn("skipping undecodable task", zap.Error(err))
			continue
		}
		tasks = append(tasks, task)
	}
	if err := cur.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

// ArchiveTaskHandler - PUT /task/:id
// One-way flip: archive is only ever set to true here, so repeating the
// call is a no-op.
func (handler *TasksHandler) ArchiveTaskHandler(c *gin.Context) {
	handler.setFields(c, bson.M{"archive": true})
}

// MarkTaskHandler - PUT /task/mark/:id
func (handler *TasksHandler) MarkTaskHandler(c *gin.Context) {
	var body struct {
		Checked bool `json:"checked"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handler.setFields(c, bson.M{"checked": body.Checked})
}

// EditTaskHandler - PUT /task/update/:id
func (handler *TasksHandler) EditTaskHandler(c *gin.Context) {
	var body struct {
		TaskName    string `json:"taskName"`
		TaskDetails string `json:"taskDetails"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	handler.setFields(c, bson.M{"taskName": body.TaskName, "taskDetails": body.TaskDetails})
}

// setFields applies a $set of the given fields to the task addressed by the
// :id route parameter. Plain update, no upsert: an unknown id is a 404, it
// must not create a partial document.
func (handler *TasksHandler) setFields(c *gin.Context, fields bson.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id format"})
		return
	}

	result, err := handler.tasks.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": fields})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No task found with the given id"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"matchedCount":  result.MatchedCount,
		"modifiedCount": result.ModifiedCount,
	})
}
