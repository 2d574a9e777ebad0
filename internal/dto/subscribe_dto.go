package dto

// SubscribeRequest is a newsletter signup payload.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}
