package main

import (
	"context"
	"log/slog"

	"github.com/chatwire/chatwire/internal/broadcast"
	"github.com/chatwire/chatwire/internal/data"

	"github.com/gofiber/fiber/v2"
)

// MessageService is the handler-side view of the message service. List has
// no error return: a backend failure surfaces as an empty slice.
type MessageService interface {
	Save(ctx context.Context, msg *data.Message) (*data.Message, error)
	List(ctx context.Context) []data.Message
}

// UserService is the handler-side view of the account service. Every
// success value is the safe projection.
type UserService interface {
	Create(ctx context.Context, user *data.User) (*data.SafeUser, error)
	GetByUsername(ctx context.Context, username string) (*data.SafeUser, error)
	Login(ctx context.Context, username, password string) (*data.SafeUser, error)
	DeleteByUsername(ctx context.Context, username string) (*data.SafeUser, error)
	ResetPassword(ctx context.Context, username, newPassword string) (*data.SafeUser, error)
}

// Server holds the handlers' dependencies: the two services and the
// broadcast publish capability.
type Server struct {
	users    UserService
	messages MessageService
	events   broadcast.Publisher
	log      *slog.Logger
}

// newServer returns a ready-to-use Server wired with services and publisher.
func newServer(users UserService, messages MessageService, events broadcast.Publisher, log *slog.Logger) *Server {
	return &Server{users: users, messages: messages, events: events, log: log}
}

// registerRoutes mounts the HTTP surface on the fiber app.
func registerRoutes(app *fiber.App, s *Server) {
	app.Post("/addMessage", s.addMessage)
	app.Get("/getMessages", s.getMessages)
	app.Post("/signup", s.createUser)
	app.Post("/login", s.userLogin)
	app.Get("/getUser/:username", s.getUser)
	app.Delete("/deleteUser/:username", s.deleteUser)
	app.Patch("/resetPassword", s.resetPassword)
}
