package archive

import (
	"context"

	"github.com/jkopstals/slack-keeper/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// fakePlatform implements Platform with per-call overrides and call recording.
// Unset functions fall back to benign defaults.
type fakePlatform struct {
	channels []entity.Channel
	listErr  error

	joinFn    func(channelID string) (entity.ChannelAccess, error)
	historyFn func(req HistoryRequest) (*Page, error)
	repliesFn func(req RepliesRequest) (*Page, error)
	userFn    func(userID string) (*entity.User, error)

	historyCalls []HistoryRequest
	repliesCalls []RepliesRequest
	userCalls    []string
}

func (f *fakePlatform) ListChannels(ctx context.Context) ([]entity.Channel, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.channels, nil
}

func (f *fakePlatform) JoinChannel(ctx context.Context, channelID string) (entity.ChannelAccess, error) {
	if f.joinFn != nil {
		return f.joinFn(channelID)
	}
	return entity.AccessJoined, nil
}

func (f *fakePlatform) FetchHistory(ctx context.Context, req HistoryRequest) (*Page, error) {
	f.historyCalls = append(f.historyCalls, req)
	if f.historyFn != nil {
		return f.historyFn(req)
	}
	return &Page{}, nil
}

func (f *fakePlatform) FetchReplies(ctx context.Context, req RepliesRequest) (*Page, error) {
	f.repliesCalls = append(f.repliesCalls, req)
	if f.repliesFn != nil {
		return f.repliesFn(req)
	}
	return &Page{}, nil
}

func (f *fakePlatform) FetchUserProfile(ctx context.Context, userID string) (*entity.User, error) {
	f.userCalls = append(f.userCalls, userID)
	if f.userFn != nil {
		return f.userFn(userID)
	}
	return &entity.User{ID: userID, Name: "user-" + userID, Updated: 1}, nil
}

// fakeUserRepo counts upserts and can be made to fail.
type fakeUserRepo struct {
	users   map[string]*entity.User
	upserts int
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (r *fakeUserRepo) Get(ctx context.Context, id string) (*entity.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (r *fakeUserRepo) Upsert(ctx context.Context, user *entity.User) error {
	r.upserts++
	if r.err != nil {
		return r.err
	}
	if existing, ok := r.users[user.ID]; ok && existing.Updated >= user.Updated {
		return nil
	}
	r.users[user.ID] = user
	return nil
}

// failingRunRepo returns the configured error from every operation.
type failingRunRepo struct {
	err error
}

func (r *failingRunRepo) InsertStart(ctx context.Context, run *entity.SyncRun) error {
	return r.err
}

func (r *failingRunRepo) Finalize(ctx context.Context, run *entity.SyncRun) error {
	return r.err
}

func (r *failingRunRepo) LastCompleted(ctx context.Context) (*entity.SyncRun, error) {
	return nil, r.err
}

func msgAt(ts string) *entity.Message {
	return &entity.Message{TS: ts, UserID: "U1", Text: "hello"}
}
