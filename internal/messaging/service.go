package messaging

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/triplethreads/hubstock-backend/pkg/auth"
	"github.com/triplethreads/hubstock-backend/pkg/db/models"
	"github.com/triplethreads/hubstock-backend/pkg/enums"
	pkgerrors "github.com/triplethreads/hubstock-backend/pkg/errors"
	"gorm.io/gorm"
)

type userLookup interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service covers the internal message board.
type Service interface {
	Send(ctx context.Context, actor auth.Actor, input SendInput) (*models.Message, error)
	Threads(ctx context.Context, actor auth.Actor) ([]ThreadSummary, error)
	Thread(ctx context.Context, actor auth.Actor, name string) ([]models.Message, error)
	UnreadCount(ctx context.Context, actor auth.Actor) (int, error)
}

// SendInput is one outgoing message. Thread is optional; when empty the
// conversation between the two participants is used.
type SendInput struct {
	Receiver string `json:"receiver"`
	Body     string `json:"body"`
	Thread   string `json:"thread"`
}

// ThreadSummary is one conversation in a user's inbox. Unread is derived:
// the thread counts as unread when its latest message was not written by
// the viewer.
type ThreadSummary struct {
	Name        string         `json:"name"`
	LastMessage models.Message `json:"last_message"`
	Unread      bool           `json:"unread"`
}

type service struct {
	repo  Repository
	users userLookup
}

// NewService wires the messaging service with the provided dependencies.
func NewService(repo Repository, users userLookup) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("messaging repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) Send(ctx context.Context, actor auth.Actor, input SendInput) (*models.Message, error) {
	input.Receiver = strings.TrimSpace(input.Receiver)
	input.Body = strings.TrimSpace(input.Body)
	input.Thread = strings.TrimSpace(input.Thread)

	if input.Receiver == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "receiver is required")
	}
	if input.Body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message body is required")
	}
	if input.Receiver == actor.Username {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot message yourself")
	}

	receiver, err := s.users.FindByUsername(ctx, input.Receiver)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "receiver not found")
		}
		return nil, err
	}

	// Non-admin accounts only reach HQ; cross-hub chatter goes through admins.
	if !actor.IsAdmin() && receiver.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "messages must be addressed to an admin")
	}

	thread := input.Thread
	if thread == "" {
		thread = defaultThread(actor.Username, receiver.Username)
	}

	message := &models.Message{
		Sender:   actor.Username,
		Receiver: receiver.Username,
		Body:     input.Body,
		Thread:   thread,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, err
	}
	return message, nil
}

func (s *service) Threads(ctx context.Context, actor auth.Actor) ([]ThreadSummary, error) {
	messages, err := s.repo.ListByParticipant(ctx, actor.Username)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]models.Message)
	for _, message := range messages {
		latest[message.Thread] = message
	}

	summaries := make([]ThreadSummary, 0, len(latest))
	for name, last := range latest {
		summaries = append(summaries, ThreadSummary{
			Name:        name,
			LastMessage: last,
			Unread:      last.Sender != actor.Username,
		})
	}
	// Most recent activity first.
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessage.CreatedAt.After(summaries[j].LastMessage.CreatedAt)
	})
	return summaries, nil
}

func (s *service) Thread(ctx context.Context, actor auth.Actor, name string) ([]models.Message, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "thread name is required")
	}

	messages, err := s.repo.ListThread(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "thread not found")
	}

	if !actor.IsAdmin() && !isParticipant(messages, actor.Username) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "thread not accessible for this account")
	}
	return messages, nil
}

func (s *service) UnreadCount(ctx context.Context, actor auth.Actor) (int, error) {
	summaries, err := s.Threads(ctx, actor)
	if err != nil {
		return 0, err
	}
	unread := 0
	for _, summary := range summaries {
		if summary.Unread {
			unread++
		}
	}
	return unread, nil
}

func defaultThread(sender, receiver string) string {
	return sender + "-" + receiver
}

func isParticipant(messages []models.Message, username string) bool {
	for _, message := range messages {
		if message.Sender == username || message.Receiver == username {
			return true
		}
	}
	return false
}
