package service

import (
	"fmt"
	"unicode/utf8"
)

// UserCount is the number of users returned by Users.
const UserCount = 100

// User is a synthesized demo record. Nothing is stored.
type User struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EchoResult is the outcome of Echo.
type EchoResult struct {
	Received string `json:"received"`
	Length   int    `json:"length"`
}

// DemoService synthesizes the static demo payloads.
type DemoService struct{}

// NewDemoService creates a new DemoService.
func NewDemoService() *DemoService {
	return &DemoService{}
}

// User returns the fixed demo user with the given id.
func (s *DemoService) User(id int) User {
	return User{
		ID:    id,
		Name:  "John Doe",
		Email: "john@example.com",
	}
}

// Users returns UserCount users whose ids equal their index.
func (s *DemoService) Users() []User {
	users := make([]User, UserCount)
	for i := range users {
		users[i] = User{
			ID:    i,
			Name:  fmt.Sprintf("User %d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}
	}
	return users
}

// Echo returns text along with its length in Unicode code points.
func (s *DemoService) Echo(text string) EchoResult {
	return EchoResult{
		Received: text,
		Length:   utf8.RuneCountInString(text),
	}
}
