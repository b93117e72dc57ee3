package main

import (
	"strings"
	"time"

	"github.com/chatwire/chatwire/internal/broadcast"
	"github.com/chatwire/chatwire/internal/data"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// incomingMessage is the client-supplied part of a message. Any sentAt the
// client sends is ignored; the server stamps it.
type incomingMessage struct {
	From string `json:"from" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// addMessageRequest is the envelope around an incoming message.
type addMessageRequest struct {
	MessageToAdd *incomingMessage `json:"messageToAdd" validate:"required"`
}

// credentialsRequest is the body shape shared by signup, login and the
// password reset (where password carries the new value).
type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// addMessage validates the body, stamps sentAt, persists via the service
// and, on success, publishes a messageUpdate event to the broadcast channel.
func (s *Server) addMessage(c *fiber.Ctx) error {
	var req addMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid message body")
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid message body")
	}
	// whitespace-only counts as empty
	if strings.TrimSpace(req.MessageToAdd.From) == "" || strings.TrimSpace(req.MessageToAdd.Text) == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid message body")
	}

	msg := &data.Message{
		From: req.MessageToAdd.From,
		Text: req.MessageToAdd.Text,
		// the single authoritative source of message ordering
		SentAt: time.Now().UTC(),
	}
	// re-check the constructed record before handing it to the service
	if err := msg.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid message body")
	}

	saved, err := s.messages.Save(c.UserContext(), msg)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	// Fire-and-forget: published only after the insert is acknowledged, and
	// a publish failure never changes the HTTP response.
	if err := s.events.Publish(c.UserContext(), broadcast.EventMessageUpdate, broadcast.MessagePayload{Msg: saved}); err != nil {
		s.log.Warn("broadcast messageUpdate failed", "err", err)
	}

	return c.JSON(saved)
}

// getMessages returns the full stream ordered by sentAt ascending. Always
// 200: a backend failure already collapsed to an empty slice in the service.
func (s *Server) getMessages(c *fiber.Ctx) error {
	return c.JSON(s.messages.List(c.UserContext()))
}

// parseCredentials runs the structural validation shared by the account
// endpoints. A false return means the 400 has already been written.
func (s *Server) parseCredentials(c *fiber.Ctx) (*credentialsRequest, bool) {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).SendString("Invalid user body")
		return nil, false
	}
	if err := validate.Struct(req); err != nil {
		_ = c.Status(fiber.StatusBadRequest).SendString("Invalid user body")
		return nil, false
	}
	if strings.TrimSpace(req.Username) == "" {
		_ = c.Status(fiber.StatusBadRequest).SendString("Invalid user body")
		return nil, false
	}
	return &req, true
}

// createUser stamps dateJoined and delegates to the user service.
func (s *Server) createUser(c *fiber.Ctx) error {
	req, ok := s.parseCredentials(c)
	if !ok {
		return nil
	}

	user := &data.User{
		Username:   req.Username,
		Password:   req.Password,
		DateJoined: time.Now().UTC(),
	}
	safe, err := s.users.Create(c.UserContext(), user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(safe)
}

// userLogin authenticates by username + password. Any service error maps to
// 401; the message is the same for unknown users and wrong passwords.
func (s *Server) userLogin(c *fiber.Ctx) error {
	req, ok := s.parseCredentials(c)
	if !ok {
		return nil
	}

	safe, err := s.users.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(safe)
}

// getUser looks up the account named in the path.
func (s *Server) getUser(c *fiber.Ctx) error {
	safe, err := s.users.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(safe)
}

// deleteUser removes the account named in the path and returns its safe
// projection.
func (s *Server) deleteUser(c *fiber.Ctx) error {
	safe, err := s.users.DeleteByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(safe)
}

// resetPassword replaces the password of the named account; the password
// field of the body carries the new value.
func (s *Server) resetPassword(c *fiber.Ctx) error {
	req, ok := s.parseCredentials(c)
	if !ok {
		return nil
	}

	safe, err := s.users.ResetPassword(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(safe)
}
