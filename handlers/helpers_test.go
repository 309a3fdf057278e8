package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taskade/taskade-backend/mailer"
	"github.com/taskade/taskade-backend/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeTasks records every call so tests can assert on the exact filters
// and update documents the handlers produce.
type fakeTasks struct {
	insertCalls  int
	insertedDoc  interface{}
	findCalls    int
	findFilter   interface{}
	findDocs     []interface{}
	updateCalls  int
	updateFilter interface{}
	updateDoc    interface{}
	matched      int64
	modified     int64
	err          error
}

func (f *fakeTasks) InsertOne(ctx context.Context, document interface{},
	opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	f.insertCalls++
	f.insertedDoc = document
	if f.err != nil {
		return nil, f.err
	}
	if task, ok := document.(model.Task); ok {
		return &mongo.InsertOneResult{InsertedID: task.ID}, nil
	}
	return &mongo.InsertOneResult{InsertedID: primitive.NewObjectID()}, nil
}

func (f *fakeTasks) Find(ctx context.Context, filter interface{},
	opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findCalls++
	f.findFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return mongo.NewCursorFromDocuments(f.findDocs, nil, nil)
}

func (f *fakeTasks) UpdateOne(ctx context.Context, filter interface{}, update interface{},
	opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.updateCalls++
	f.updateFilter = filter
	f.updateDoc = update
	if f.err != nil {
		return nil, f.err
	}
	return &mongo.UpdateResult{MatchedCount: f.matched, ModifiedCount: f.modified}, nil
}

func (f *fakeTasks) calls() int {
	return f.insertCalls + f.findCalls + f.updateCalls
}

// fakeUsers doubles the users collection behind the login upsert.
type fakeUsers struct {
	calls  int
	filter interface{}
	update interface{}
	opts   []*options.UpdateOptions
	result *mongo.UpdateResult
	err    error
}

func (f *fakeUsers) UpdateOne(ctx context.Context, filter interface{}, update interface{},
	opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.calls++
	f.filter = filter
	f.update = update
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

type fakeSender struct {
	calls int
	msg   mailer.Message
	err   error
}

func (f *fakeSender) Send(msg mailer.Message) error {
	f.calls++
	f.msg = msg
	return f.err
}

// newTestRouter wires the full route table the way routes.SetupRoutes does,
// over doubles instead of live collections.
func newTestRouter(tasks *fakeTasks, users *fakeUsers, secret string, sender mailer.Sender) (*gin.Engine, *AuthHandler) {
	authHandler := NewAuthHandler(context.Background(), users, []byte(secret))
	taskHandler := NewTaskHandler(context.Background(), tasks)
	emailHandler := NewEmailHandler(sender, "inbox@taskade.app")

	router := gin.New()
	router.GET("/", taskHandler.StatusHandler)
	router.PUT("/users/:email", authHandler.UpsertUserHandler)

	auth := router.Group("/")
	auth.Use(authHandler.AuthMiddleware())
	{
		auth.POST("/task", taskHandler.NewTaskHandler)
		auth.GET("/task/:email", taskHandler.ActiveTasksHandler)
		auth.GET("/archive/:email", taskHandler.ArchivedTasksHandler)
		auth.PUT("/task/:id", taskHandler.ArchiveTaskHandler)
		auth.PUT("/task/mark/:id", taskHandler.MarkTaskHandler)
		auth.PUT("/task/update/:id", taskHandler.EditTaskHandler)
		auth.POST("/email", emailHandler.ContactHandler)
	}
	return router, authHandler
}

func doRequest(router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	header := ""
	if token != "" {
		header = "Bearer " + token
	}
	return doRequestAuth(router, method, path, body, header)
}

// doRequestAuth sets the Authorization header verbatim, so tests can send
// degenerate values like "Bearer " with no token after the scheme.
func doRequestAuth(router *gin.Engine, method, path, body, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return body
}

func mustToken(t *testing.T, authHandler *AuthHandler, email string) string {
	t.Helper()
	token, err := authHandler.IssueToken(email)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}
