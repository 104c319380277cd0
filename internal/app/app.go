package app

import (
	"go.uber.org/zap"
)

// Application wires the components together: config feeds the logger and the
// gateway, the session store and gateway reference each other (token out,
// teardown hook in), and the registry and query flow sit on top.
type Application struct {
	Config    Config
	Log       *zap.Logger
	API       *APIClient
	Session   *SessionStore
	Documents *DocumentRegistry
	Query     *QueryFlow
	Guard     Guard
}

func NewApplication(cfg Config) (*Application, error) {
	log, err := NewLogger(cfg)
	if err != nil {
		return nil, err
	}

	api := NewAPIClient(cfg.APIBaseURL, cfg.Timeout(), log)
	session := NewSessionStore(NewTokenFile(cfg.StateDir), api, log)
	api.BindSession(session)

	return &Application{
		Config:    cfg,
		Log:       log,
		API:       api,
		Session:   session,
		Documents: NewDocumentRegistry(api, log),
		Query:     NewQueryFlow(api, log),
		Guard:     NewGuard(session),
	}, nil
}

func (a *Application) Close() {
	_ = a.Log.Sync()
}
