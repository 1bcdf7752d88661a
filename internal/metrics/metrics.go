package metrics

import (
	"context"

	"codeberg.org/mutker/hotctl/internal/errors"
	"codeberg.org/mutker/hotctl/internal/logger"
	"github.com/google/uuid"
)

type service struct {
	repo    Repository
	cfg     Config
	session uuid.UUID
}

// No-op implementation
type noopRecorder struct {
	session uuid.UUID
}

// NewService returns a recorder for cfg. Every service gets a fresh session
// id so snapshots of separate runs can be told apart.
func NewService(cfg Config, log logger.Logger) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	log = log.With("metrics")
	session := uuid.New()

	// If recording is disabled, return a no-op recorder
	if !cfg.Enabled {
		log.Debug().Msg("Snapshot recording disabled, using no-op recorder")
		return &noopRecorder{session: session}, nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create metrics repository")
		return nil, err
	}

	log.Debug().
		Str("db_path", cfg.DBPath).
		Str("session", session.String()).
		Msg("Metrics service initialized successfully")

	return &service{
		repo:    repo,
		cfg:     cfg,
		session: session,
	}, nil
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}
	if snapshot.Session == uuid.Nil {
		snapshot.Session = s.session
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Record(snapshot); err != nil {
			return errFactory.Wrap(ErrRecordFailed, err)
		}
	}

	return nil
}

func (s *service) Session() uuid.UUID {
	return s.session
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}

	return nil
}

func (*noopRecorder) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (n *noopRecorder) Session() uuid.UUID {
	return n.session
}

func (*noopRecorder) Close() error {
	return nil
}
