package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"storefront/pkg/domain/model"
)

// LoginScreen keeps the inline message for the last failed attempt.
type LoginScreen struct {
	scope   *Scope
	session SessionController

	mu      sync.Mutex
	message string
}

func NewLoginScreen(scope *Scope, session SessionController) *LoginScreen {
	return &LoginScreen{scope: scope, session: session}
}

// Submit signs in. On success the navigator has already remounted into the
// authenticated graph, which unmounts this screen. An unmounted screen
// refuses with ErrScreenClosed.
func (l *LoginScreen) Submit(ctx context.Context, username, password string) error {
	if !l.scope.Active() {
		return ErrScreenClosed
	}
	err := l.session.Login(ctx, username, password)
	l.mu.Lock()
	l.message = model.UserMessage(err)
	l.mu.Unlock()
	return err
}

func (l *LoginScreen) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.message
}

type RegistrationScreen struct {
	scope     *Scope
	client    model.SyncClient
	navigator Navigator
	logger    logrus.FieldLogger

	mu      sync.Mutex
	form    model.RegistrationForm
	message string
}

func NewRegistrationScreen(scope *Scope, client model.SyncClient, navigator Navigator, logger logrus.FieldLogger) *RegistrationScreen {
	return &RegistrationScreen{
		scope:     scope,
		client:    client,
		navigator: navigator,
		logger:    logger.WithField("component", "register"),
	}
}

func (r *RegistrationScreen) Edit(change func(form *model.RegistrationForm)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	change(&r.form)
}

func (r *RegistrationScreen) Form() model.RegistrationForm {
	r.mu.Lock()
	defer r.mu.Unlock()
	form := r.form
	form.Preferences.Regions = append([]string(nil), r.form.Preferences.Regions...)
	form.Preferences.FlavorProfiles = append([]string(nil), r.form.Preferences.FlavorProfiles...)
	return form
}

// Submit validates locally, registers, and redirects to Login. The session
// stays anonymous. Once the anonymous graph is gone the screen refuses with
// ErrScreenClosed and nothing is sent.
func (r *RegistrationScreen) Submit(ctx context.Context) error {
	if !r.scope.Active() {
		return ErrScreenClosed
	}

	form := r.Form()
	err := form.Validate()
	if err == nil {
		err = r.client.Register(ctx, form)
	}

	r.mu.Lock()
	r.message = model.UserMessage(err)
	r.mu.Unlock()
	if err != nil {
		if !model.IsValidation(err) {
			r.logger.WithError(err).WithField("username", form.Username).Warn("registration failed")
		}
		return err
	}

	if !r.scope.Active() {
		return nil
	}
	return r.navigator.OpenDrawer(model.RouteLogin)
}

func (r *RegistrationScreen) Message() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.message
}

// ProfileScreen is the User drawer entry of the authenticated graph.
type ProfileScreen struct {
	scope    *Scope
	client   model.SyncClient
	session  SessionController
	username string
	logger   logrus.FieldLogger

	mu      sync.Mutex
	profile model.Profile
}

func NewProfileScreen(scope *Scope, client model.SyncClient, session SessionController, logger logrus.FieldLogger) *ProfileScreen {
	username := session.Identity().Username()
	return &ProfileScreen{
		scope:    scope,
		client:   client,
		session:  session,
		username: username,
		logger:   logger.WithField("component", "profile"),
		profile:  model.Profile{Username: username},
	}
}

func (p *ProfileScreen) Enter() {
	Launch(p.scope, "fetchProfile",
		func(ctx context.Context) (model.Profile, error) {
			return p.client.FetchProfile(ctx, p.username)
		},
		func(profile model.Profile, err error) {
			if err != nil {
				p.logger.WithError(err).Warn("error fetching user data")
				return
			}
			p.mu.Lock()
			p.profile.Email = profile.Email
			p.profile.Preferences = profile.Preferences
			p.mu.Unlock()
		})
}

func (p *ProfileScreen) Profile() model.Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.profile
}

func (p *ProfileScreen) Logout() {
	p.session.Logout()
}
