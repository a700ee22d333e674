package intervention

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/store"
)

type fakePostStore struct {
	inserted      []domain.Comment
	likesByID     map[string]int
	postLikes     int
	postComments  int
	counterCalls  int
	insertErr     error
	nextCommentID int
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{likesByID: make(map[string]int)}
}

func (f *fakePostStore) GetPost(_ context.Context, postID string) (*domain.Post, error) {
	return &domain.Post{ID: postID}, nil
}

func (f *fakePostStore) HottestComments(_ context.Context, _ string, _ int) ([]domain.Comment, error) {
	return nil, nil
}

func (f *fakePostStore) NewestComments(_ context.Context, _ string, _ int) ([]domain.Comment, error) {
	return nil, nil
}

func (f *fakePostStore) InsertComment(_ context.Context, postID, authorID, content string) (string, error) {
	if f.insertErr != nil {
		return "", f.insertErr
	}
	f.nextCommentID++
	id := fmt.Sprintf("comment-%d", f.nextCommentID)
	f.inserted = append(f.inserted, domain.Comment{
		ID:       id,
		PostID:   postID,
		AuthorID: authorID,
		Content:  content,
	})
	return id, nil
}

func (f *fakePostStore) UpdatePostCounters(_ context.Context, _ string, deltaLikes, deltaComments int) error {
	f.counterCalls++
	f.postLikes += deltaLikes
	f.postComments += deltaComments
	return nil
}

func (f *fakePostStore) UpdateCommentLikes(_ context.Context, commentID string, delta int) error {
	f.likesByID[commentID] += delta
	return nil
}

var _ store.PostStore = (*fakePostStore)(nil)

type stubProvider struct {
	result domain.StrategyResult
	err    error
	calls  int
}

func (s *stubProvider) CreateStrategy(_ context.Context, _ domain.Alert) (domain.StrategyResult, error) {
	s.calls++
	return s.result, s.err
}

func okStrategy() domain.StrategyResult {
	return domain.StrategyResult{
		Success: true,
		Strategy: domain.Strategy{
			Name:          "gentle_reframe",
			CoreViewpoint: "there is another side to this",
			ContentIDs:    []string{"k1", "k2"},
		},
	}
}

type countingMetrics struct {
	success int
	failure int
}

func (m *countingMetrics) InterventionExecuted(success bool) {
	if success {
		m.success++
	} else {
		m.failure++
	}
}

func testAlert() domain.Alert {
	return domain.Alert{AlertID: "alert-1", PostID: "post-1", Level: 3, TriggerContent: "the original viewpoint"}
}

func testTask() *domain.MonitoringTask {
	return &domain.MonitoringTask{TaskID: "task-1", ActionID: "action-1", TargetPostID: "post-1"}
}

func TestExecutePostsLeadersAndAmplifiers(t *testing.T) {
	posts := newFakePostStore()
	metrics := &countingMetrics{}
	e := NewExecutor(posts, &stubProvider{result: okStrategy()}, TemplateSynthesizer{},
		logging.Nop(), WithMetrics(metrics))
	task := testTask()

	result, err := e.Execute(context.Background(), task, testAlert())

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Len(t, result.LeaderCommentIDs, 2)
	assert.Equal(t, 3, result.AmplifierComments)
	assert.Len(t, posts.inserted, 5)
	assert.InDelta(t, 1.0, result.BaseEffectiveness, 1e-9)

	// Every amplifier likes every leader comment once.
	for _, leaderID := range result.LeaderCommentIDs {
		assert.Equal(t, 3, posts.likesByID[leaderID])
	}

	// One aggregate counter write: amplifier likes, all posted comments.
	assert.Equal(t, 1, posts.counterCalls)
	assert.Equal(t, 3, posts.postLikes)
	assert.Equal(t, 5, posts.postComments)

	assert.Equal(t, 1, task.InterventionCount)
	require.NotNil(t, task.InitialStrategy)
	assert.Equal(t, "gentle_reframe", task.InitialStrategy.Strategy.Name)
	assert.Equal(t, 1, metrics.success)
}

func TestExecuteCustomAmplifierCount(t *testing.T) {
	posts := newFakePostStore()
	e := NewExecutor(posts, &stubProvider{result: okStrategy()}, TemplateSynthesizer{},
		logging.Nop(), WithAmplifierCount(5))

	result, err := e.Execute(context.Background(), testTask(), testAlert())

	require.NoError(t, err)
	assert.Equal(t, 5, result.AmplifierComments)
	assert.Len(t, posts.inserted, 7)
}

func TestExecuteStrategyProviderDeclines(t *testing.T) {
	posts := newFakePostStore()
	metrics := &countingMetrics{}
	e := NewExecutor(posts, &stubProvider{result: domain.StrategyResult{Success: false}},
		TemplateSynthesizer{}, logging.Nop(), WithMetrics(metrics))
	task := testTask()

	result, err := e.Execute(context.Background(), task, testAlert())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, posts.inserted)
	assert.Zero(t, task.InterventionCount)
	assert.Nil(t, task.InitialStrategy)
	assert.Equal(t, 1, metrics.failure)
}

func TestExecuteStrategyProviderError(t *testing.T) {
	posts := newFakePostStore()
	provider := &stubProvider{err: errors.New("bad request")}
	e := NewExecutor(posts, provider, TemplateSynthesizer{}, logging.Nop())

	result, err := e.Execute(context.Background(), testTask(), testAlert())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, posts.inserted)
}

func TestExecuteRetainsFirstStrategyOnly(t *testing.T) {
	posts := newFakePostStore()
	provider := &stubProvider{result: okStrategy()}
	e := NewExecutor(posts, provider, TemplateSynthesizer{}, logging.Nop())
	task := testTask()

	_, err := e.Execute(context.Background(), task, testAlert())
	require.NoError(t, err)
	first := task.InitialStrategy

	provider.result.Strategy.Name = "evidence_counter"
	_, err = e.Execute(context.Background(), task, testAlert())
	require.NoError(t, err)

	assert.Same(t, first, task.InitialStrategy)
	assert.Equal(t, "gentle_reframe", task.InitialStrategy.Strategy.Name)
	assert.Equal(t, 2, task.InterventionCount)
}

func TestExecuteAllInsertsFailing(t *testing.T) {
	posts := newFakePostStore()
	posts.insertErr = errors.New("invalid row")
	e := NewExecutor(posts, &stubProvider{result: okStrategy()}, TemplateSynthesizer{}, logging.Nop())
	task := testTask()

	result, err := e.Execute(context.Background(), task, testAlert())

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.AmplifierComments)
	assert.Zero(t, posts.counterCalls)
	assert.InDelta(t, 0.0, result.BaseEffectiveness, 1e-9)
	// The attempt still counts as an intervention.
	assert.Equal(t, 1, task.InterventionCount)
}
