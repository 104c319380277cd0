package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	initialized   bool
	authenticated bool
}

func (f fakeSession) Initialized() bool     { return f.initialized }
func (f fakeSession) IsAuthenticated() bool { return f.authenticated }

func TestGuard_Resolve(t *testing.T) {
	tests := []struct {
		name      string
		session   fakeSession
		wantRoute Route
		wantOK    bool
	}{
		{
			name:    "initializing holds any decision",
			session: fakeSession{initialized: false, authenticated: false},
			wantOK:  false,
		},
		{
			name:    "initializing holds even with a token already read",
			session: fakeSession{initialized: false, authenticated: true},
			wantOK:  false,
		},
		{
			name:      "authenticated goes home",
			session:   fakeSession{initialized: true, authenticated: true},
			wantRoute: RouteHome,
			wantOK:    true,
		},
		{
			name:      "anonymous goes to login",
			session:   fakeSession{initialized: true, authenticated: false},
			wantRoute: RouteLogin,
			wantOK:    true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := NewGuard(tc.session)
			route, ok := g.Resolve()
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantRoute, route)
			}
		})
	}
}

func TestGuard_PredicatesAreComplementary(t *testing.T) {
	for _, authed := range []bool{true, false} {
		g := NewGuard(fakeSession{initialized: true, authenticated: authed})
		assert.Equal(t, authed, g.CanEnterProtected())
		assert.Equal(t, !authed, g.CanEnterPublic())
	}
}
