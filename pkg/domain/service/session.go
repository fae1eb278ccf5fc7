package service

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

var ErrAlreadySignedIn = errors.New("already signed in")

const missingCredentialsMessage = "Please enter both username and password."

type SessionReader interface {
	Identity() model.Identity
}

type SessionController interface {
	SessionReader
	Login(ctx context.Context, username, password string) error
	Logout()
}

func NewSessionController(client model.SyncClient, dispatcher EventDispatcher, logger logrus.FieldLogger) SessionController {
	return &sessionController{
		client:     client,
		dispatcher: dispatcher,
		logger:     logger.WithField("component", "session"),
	}
}

type sessionController struct {
	// transitionMu serializes transitions; mu guards identity for readers.
	transitionMu sync.Mutex
	mu           sync.RWMutex
	identity     model.Identity

	client     model.SyncClient
	dispatcher EventDispatcher
	logger     logrus.FieldLogger
}

func (s *sessionController) Identity() model.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Login leaves the session untouched on any failure. On success the
// SessionChanged event, and every remount it triggers, has been delivered
// before Login returns.
func (s *sessionController) Login(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return &model.ValidationError{Message: missingCredentialsMessage}
	}

	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	if !s.Identity().IsAnonymous() {
		return ErrAlreadySignedIn
	}

	if err := s.client.Login(ctx, username, password); err != nil {
		s.logger.WithError(err).WithField("username", username).Warn("login failed")
		return err
	}

	s.transition(model.Named(username))
	return nil
}

// Logout never touches the cart.
func (s *sessionController) Logout() {
	s.transitionMu.Lock()
	defer s.transitionMu.Unlock()

	if s.Identity().IsAnonymous() {
		return
	}
	s.transition(model.Anonymous())
}

func (s *sessionController) transition(next model.Identity) {
	s.mu.Lock()
	previous := s.identity
	s.identity = next
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{"from": previous.String(), "to": next.String()}).Info("session changed")
	dispatchEvent(s.dispatcher, s.logger, model.SessionChanged{Previous: previous, Current: next})
}
