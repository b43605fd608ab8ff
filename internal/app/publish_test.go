package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"academy/internal/app/mocks"
	"academy/internal/domain"
	"academy/internal/github"
	"academy/internal/logging"
	"academy/internal/publish"
	"academy/internal/store"
)

type PublishTestSuite struct {
	suite.Suite
	ctrl *gomock.Controller

	kv        *store.MemoryKV
	publisher *mocks.MockPublisher
	sinkA     *mocks.MockSink
	sinkB     *mocks.MockSink

	controller *Controller
}

func (s *PublishTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.kv = store.NewMemoryKV()
	s.publisher = mocks.NewMockPublisher(s.ctrl)
	s.sinkA = mocks.NewMockSink(s.ctrl)
	s.sinkB = mocks.NewMockSink(s.ctrl)
	s.sinkA.EXPECT().Name().Return("mirror").AnyTimes()
	s.sinkB.EXPECT().Name().Return("notify").AnyTimes()

	log := logging.Discard()
	s.controller = New(context.Background(), Deps{
		Catalog:   store.NewCatalogStore(s.kv, log),
		Settings:  store.NewSettingsStore(s.kv),
		Publisher: s.publisher,
		Sinks:     []Sink{s.sinkA, s.sinkB},
		Session:   NewSession("12345", "12345"),
		Defaults:  PublishDefaults{Message: "msg", Format: publish.FormatModule},
		Log:       log,
	})
	s.controller.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	s.Require().True(s.controller.Session().Login("12345", "12345"))
}

func (s *PublishTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestPublishTestSuite(t *testing.T) {
	suite.Run(t, new(PublishTestSuite))
}

func (s *PublishTestSuite) storeTarget(t store.PublishTarget) {
	s.Require().NoError(store.NewSettingsStore(s.kv).Save(context.Background(), t))
}

func (s *PublishTestSuite) TestPublish_MissingTokenFailsWithoutNetwork() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Repo: "acme/site", Path: "data/mockData.ts"})
	before := s.kv.Snapshot()

	rep, err := s.controller.Publish(ctx, PublishOptions{})

	s.NoError(err)
	s.False(rep.OK)
	s.ErrorIs(rep.Err, publish.ErrConfig)
	s.Equal("token is required", rep.Message)
	s.Equal(before, s.kv.Snapshot())
}

func (s *PublishTestSuite) TestPublish_SuccessDeliversToSinks() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Token: "tok", Repo: "acme/site"})
	cat := s.controller.Catalog()

	want := publish.Settings{Token: "tok", Repo: "acme/site", Path: "data/mockData.ts", Message: "msg", Format: publish.FormatModule}
	plan := &publish.Plan{Settings: want, Current: "old", Content: "new", SHA: "T1"}
	s.publisher.EXPECT().Preview(ctx, want, cat).Return(plan, nil)
	s.publisher.EXPECT().Write(ctx, plan).Return(&publish.Result{Repo: "acme/site", Path: "data/mockData.ts", CommitSHA: "c1"}, nil)

	var got domain.Publication
	s.sinkA.EXPECT().Deliver(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, p domain.Publication) error {
		got = p
		return nil
	})
	s.sinkB.EXPECT().Deliver(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	rep, err := s.controller.Publish(ctx, PublishOptions{})

	s.NoError(err)
	s.True(rep.OK)
	s.Equal("published to acme/site/data/mockData.ts", rep.Message)
	s.Equal([]string{"notify: broker down"}, rep.Warnings)
	s.Equal("c1", got.CommitSHA)
	s.Equal(cat, got.Catalog)
	courses, lessons, previews := cat.Counts()
	s.Equal(courses, got.Courses)
	s.Equal(lessons, got.Lessons)
	s.Equal(previews, got.Previews)
}

func (s *PublishTestSuite) TestPublish_ConflictLeavesLocalStateAlone() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Token: "tok", Repo: "acme/site", Path: "data/mockData.ts"})
	before := s.kv.Snapshot()
	catBefore := s.controller.Catalog()

	plan := &publish.Plan{Content: "new", SHA: "T1"}
	s.publisher.EXPECT().Preview(ctx, gomock.Any(), gomock.Any()).Return(plan, nil)
	s.publisher.EXPECT().Write(ctx, plan).Return(nil, &publish.Error{
		Kind:    publish.KindConflict,
		Message: "the remote file changed since it was read; publish again",
		Err:     github.ErrConflict,
	})

	rep, err := s.controller.Publish(ctx, PublishOptions{})

	s.NoError(err)
	s.False(rep.OK)
	s.ErrorIs(rep.Err, publish.ErrConflict)
	s.Contains(rep.Message, "publish again")
	s.Equal(before, s.kv.Snapshot())
	s.Equal(catBefore, s.controller.Catalog())
}

func (s *PublishTestSuite) TestPublish_DryRunDoesNotWrite() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Token: "tok", Repo: "acme/site", Path: "data/mockData.ts"})

	s.publisher.EXPECT().Preview(ctx, gomock.Any(), gomock.Any()).Return(&publish.Plan{
		Current: "same",
		Content: "same",
		Missing: []string{"previews"},
	}, nil)

	rep, err := s.controller.Publish(ctx, PublishOptions{DryRun: true})

	s.NoError(err)
	s.True(rep.OK)
	s.Equal("data/mockData.ts is already up to date", rep.Message)
	s.Len(rep.Warnings, 1)
}

func (s *PublishTestSuite) TestPublish_TargetOverrideIsSaved() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Token: "old", Repo: "acme/site", Path: "data/mockData.ts"})

	s.publisher.EXPECT().Preview(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, st publish.Settings, _ domain.Catalog) (*publish.Plan, error) {
			s.Equal("new", st.Token)
			s.Equal("acme/site", st.Repo)
			return nil, &publish.Error{Kind: publish.KindFetch, Message: "Bad credentials"}
		})

	rep, err := s.controller.Publish(ctx, PublishOptions{Target: &store.PublishTarget{Token: "new"}})

	s.NoError(err)
	s.False(rep.OK)
	s.Equal("Bad credentials", rep.Message)

	saved, err := store.NewSettingsStore(s.kv).Load(ctx)
	s.NoError(err)
	s.Equal(store.PublishTarget{Token: "new", Repo: "acme/site", Path: "data/mockData.ts"}, saved)
}

func (s *PublishTestSuite) TestPublish_RejectsReentry() {
	ctx := context.Background()
	s.storeTarget(store.PublishTarget{Token: "tok", Repo: "acme/site", Path: "p"})

	entered := make(chan struct{})
	release := make(chan struct{})
	s.publisher.EXPECT().Preview(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, publish.Settings, domain.Catalog) (*publish.Plan, error) {
			close(entered)
			<-release
			return nil, fmt.Errorf("network down")
		}).Times(1)

	done := make(chan *Report)
	go func() {
		rep, _ := s.controller.Publish(ctx, PublishOptions{})
		done <- rep
	}()

	<-entered
	_, err := s.controller.Publish(ctx, PublishOptions{})
	s.ErrorIs(err, ErrPublishInFlight)

	close(release)
	rep := <-done
	s.False(rep.OK)
	s.Equal("network down", rep.Message)
}
