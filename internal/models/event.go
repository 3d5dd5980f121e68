package models

// Event types recognized by the fan-out engine. Any other value is recorded
// as a diagnostic notification rather than rejected.
const (
	EventNewPost   = "new_post"
	EventNewLike   = "new_like"
	EventNewFollow = "new_follow"
)

// Event defines the inbound action event consumed by the fan-out engine
type Event struct {
	Type         string `json:"type"`
	ActorID      string `json:"actorId" validate:"required"`
	Text         string `json:"text,omitempty"`
	ObjectType   string `json:"objectType,omitempty"`
	ObjectID     string `json:"objectId,omitempty"`
	TargetUserID string `json:"targetUserId,omitempty"`
	FolloweeID   string `json:"followeeId,omitempty"`
	NotifyUserID string `json:"notifyUserId,omitempty"`
}
