package ai

import "context"

// Message is a single turn of an assistant conversation.
type Message struct {
	Role    string
	Content string
}

// Assistant describes an AI model capable of answering learning questions.
type Assistant interface {
	Answer(ctx context.Context, history []Message, question string) (string, error)
}
