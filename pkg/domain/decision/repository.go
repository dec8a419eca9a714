package decision

import "context"

const DefaultListLimit = 50

//go:generate mockery --name=Repository --dir=. --output=./mocks --filename=decision_repository_mock.go --case=underscore --with-expecter
type Repository interface {
	Save(ctx context.Context, d *Decision) error
	// ListRecent returns at most limit decisions, newest first.
	ListRecent(ctx context.Context, limit int) ([]*Decision, error)
	Summary(ctx context.Context) (*Summary, error)
}
