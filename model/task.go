package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Task is a single to-do item owned by the email that created it. The
// archive flag moves it between the active and archived lists, checked is
// the completion state toggled from the UI.
type Task struct {
	ID          primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	Email       string             `json:"email" bson:"email"`
	TaskName    string             `json:"taskName" bson:"taskName"`
	TaskDetails string             `json:"taskDetails" bson:"taskDetails"`
	Archive     bool               `json:"archive" bson:"archive"`
	Checked     bool               `json:"checked" bson:"checked"`
}
