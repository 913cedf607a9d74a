package internal

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/iksnae/eebc-chat/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestController(adv Advisor) (*Controller, *FakeClock) {
	clock := NewFakeClock(epoch)
	return NewController(adv, WithControllerClock(clock)), clock
}

// blockingAdvisor holds every request until release is closed
func blockingAdvisor(release <-chan struct{}, resp *ChatResponse) *StubAdvisor {
	return &StubAdvisor{
		Fn: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
			<-release
			return resp, nil
		},
	}
}

func TestControllerSend_EmptyDraft(t *testing.T) {
	for _, draft := range []string{"", "   ", "\n\t "} {
		stub := &StubAdvisor{}
		ctrl, _ := newTestController(stub)
		ctrl.SetDraft(draft)

		reply, err := ctrl.Send(context.Background(), draft)
		assert.ErrorIs(t, err, ErrEmptyDraft)
		assert.Nil(t, reply)
		assert.Equal(t, 0, ctrl.Transcript().Len())
		assert.False(t, ctrl.Busy())
		assert.Equal(t, 0, stub.Calls())
		assert.Equal(t, draft, ctrl.State().Draft, "a rejected send leaves the draft alone")
		_, shown := ctrl.Notifier().Current()
		assert.False(t, shown, "blank drafts are not reported")
	}
}

func TestControllerBegin_AppendsBeforeRequest(t *testing.T) {
	release := make(chan struct{})
	stub := blockingAdvisor(release, &ChatResponse{Answer: "ok"})
	ctrl, _ := newTestController(stub)
	ctrl.SetDraft("  hello  ")

	turn, err := ctrl.Begin("  hello  ")
	require.NoError(t, err)

	assert.True(t, ctrl.Busy())
	assert.Equal(t, "", ctrl.State().Draft)
	msgs := ctrl.Transcript().Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, epoch, msgs[0].CreatedAt)
	assert.Equal(t, 0, stub.Calls(), "no request before Resolve")

	close(release)
	_, err = turn.Resolve(context.Background())
	require.NoError(t, err)
	assert.False(t, ctrl.Busy())
	assert.Equal(t, "hello", stub.Requests[0].Message)
}

func TestControllerSend_BusyGuard(t *testing.T) {
	release := make(chan struct{})
	stub := blockingAdvisor(release, &ChatResponse{Answer: "first answer"})
	ctrl, _ := newTestController(stub)

	turn, err := ctrl.Begin("first")
	require.NoError(t, err)

	_, err = ctrl.Begin("second")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = ctrl.Send(context.Background(), "third")
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, ctrl.Transcript().Len())

	close(release)
	_, err = turn.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, ctrl.Transcript().Len())
	assert.Equal(t, 1, stub.Calls())

	// sending works again once the first turn resolved
	_, err = ctrl.Send(context.Background(), "fourth")
	require.NoError(t, err)
	assert.Equal(t, 4, ctrl.Transcript().Len())
}

func TestControllerSend_ConcurrentCallsIssueOneRequest(t *testing.T) {
	release := make(chan struct{})
	stub := blockingAdvisor(release, &ChatResponse{Answer: "ok"})
	ctrl, _ := newTestController(stub)

	const callers = 20
	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ctrl.Send(context.Background(), "hi")
			results <- err
		}()
	}

	// every caller but the one holding the request is turned away
	for i := 0; i < callers-1; i++ {
		err := <-results
		assert.ErrorIs(t, err, ErrBusy)
	}
	require.Eventually(t, func() bool { return stub.Calls() == 1 }, time.Second, time.Millisecond)
	close(release)
	wg.Wait()
	assert.NoError(t, <-results)

	assert.Equal(t, 2, ctrl.Transcript().Len())
}

func TestControllerSend_SuccessWithoutSources(t *testing.T) {
	srv, _ := testutil.NewBackend(t, http.StatusOK, testutil.AnswerWithoutSourcesBody)
	ctrl, _ := newTestController(NewAdvisorClient(srv.URL))

	reply, err := ctrl.Send(context.Background(), "Is it covered?")
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, RoleAssistant, reply.Role)
	assert.Len(t, reply.Sources, 0)
	assert.Equal(t, AppliesPartial, reply.Meta.Applies)

	last, _ := ctrl.Transcript().Last()
	assert.Equal(t, reply.ID, last.ID)
}

func TestControllerSend_NilResponse(t *testing.T) {
	stub := &StubAdvisor{Fn: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		return nil, nil
	}}
	ctrl, _ := newTestController(stub)

	reply, err := ctrl.Send(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "", reply.Content)
	assert.Equal(t, AppliesUnknown, reply.Meta.Applies)
	assert.Empty(t, reply.Sources)
}

func TestControllerSend_BackendFailure(t *testing.T) {
	srv, _ := testutil.NewBackend(t, http.StatusInternalServerError, "server overloaded")
	ctrl, clock := newTestController(NewAdvisorClient(srv.URL))

	var changes int
	ctrl.Notifier().OnChange(func() { changes++ })

	reply, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.Equal(t, 500, StatusCode(err))

	assert.False(t, ctrl.Busy())
	msgs := ctrl.Transcript().Messages()
	require.Len(t, msgs, 1, "no assistant message on failure")
	assert.Equal(t, RoleUser, msgs[0].Role)

	n, ok := ctrl.Notifier().Current()
	require.True(t, ok)
	assert.Contains(t, n.Message, "500")
	assert.Contains(t, n.Message, "server overloaded")
	assert.Equal(t, 1, changes, "exactly one notification")

	clock.Advance(DefaultNotificationTimeout)
	_, ok = ctrl.Notifier().Current()
	assert.False(t, ok)
}

func TestControllerSend_TransportFailure(t *testing.T) {
	ctrl, _ := newTestController(NewAdvisorClient(testutil.UnreachableURL(t)))

	_, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.False(t, ctrl.Busy())

	n, ok := ctrl.Notifier().Current()
	require.True(t, ok)
	assert.Equal(t, TransportFailureText, n.Message)
	assert.Equal(t, 1, ctrl.Transcript().Len())
}

func TestControllerSend_AdvisorPanic(t *testing.T) {
	stub := &StubAdvisor{Fn: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		panic("boom")
	}}
	ctrl, _ := newTestController(stub)

	reply, err := ctrl.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Nil(t, reply)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, ctrl.Busy(), "busy is cleared even when the advisor panics")
	_, ok := ctrl.Notifier().Current()
	assert.True(t, ok)

	// the session keeps working
	stub.Fn = nil
	_, err = ctrl.Send(context.Background(), "again")
	assert.NoError(t, err)
}

func TestControllerBegin_SnapshotsContext(t *testing.T) {
	release := make(chan struct{})
	stub := blockingAdvisor(release, &ChatResponse{})
	ctrl, _ := newTestController(stub)
	require.NoError(t, ctrl.Form().Set(FieldDistrict, "Colombo"))

	turn, err := ctrl.Begin("hi")
	require.NoError(t, err)
	require.NoError(t, ctrl.Form().Set(FieldDistrict, "Galle"))
	require.NoError(t, ctrl.Form().Set(FieldFloorAreaM2, "900"))

	done := make(chan error, 1)
	go func() {
		_, err := turn.Resolve(context.Background())
		done <- err
	}()
	close(release)
	require.NoError(t, <-done)

	want := &BuildingContext{District: strPtr("Colombo")}
	if diff := cmp.Diff(want, stub.Requests[0].Context); diff != "" {
		t.Errorf("request context mismatch (-want +got):\n%s", diff)
	}
}

func TestTurnResolve_Once(t *testing.T) {
	ctrl, _ := newTestController(&StubAdvisor{})
	turn, err := ctrl.Begin("hi")
	require.NoError(t, err)

	_, err = turn.Resolve(context.Background())
	require.NoError(t, err)
	_, err = turn.Resolve(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, ctrl.Transcript().Len())
}

func TestControllerState(t *testing.T) {
	ctrl, _ := newTestController(&StubAdvisor{})

	st := ctrl.State()
	assert.Equal(t, UIState{}, st)

	ctrl.SetDraft("typing")
	ctrl.Form().Toggle()
	ctrl.Notifier().Show("oops")

	st = ctrl.State()
	assert.Equal(t, "typing", st.Draft)
	assert.True(t, st.DrawerOpen)
	require.NotNil(t, st.Notification)
	assert.Equal(t, "oops", st.Notification.Message)
}

func TestControllerSnapshot(t *testing.T) {
	ctrl, _ := newTestController(&StubAdvisor{Fn: func(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
		return &ChatResponse{Answer: "a", Applies: AppliesNo}, nil
	}})
	require.NoError(t, ctrl.Form().Set(FieldHVACType, "VRF"))
	_, err := ctrl.Send(context.Background(), "q")
	require.NoError(t, err)

	s := ctrl.Snapshot()
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, epoch, s.StartedAt)
	assert.Equal(t, 2, s.Metadata.MessageCount)
	require.NotNil(t, s.Context)
	assert.Equal(t, "VRF", *s.Context.HVACType)
}

func TestControllerClose(t *testing.T) {
	ctrl, clock := newTestController(&StubAdvisor{})
	ctrl.Notifier().Show("pending")
	require.Equal(t, 1, clock.Pending())

	ctrl.Close()
	assert.Equal(t, 0, clock.Pending())
}

// A user describes an office in Colombo and the backend says the code applies.
func TestControllerEndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	srv, rec := testutil.NewBackend(t, http.StatusOK,
		`{"answer":"Yes, the code applies.","applies":"yes","reason":"Commercial office","sources":[]}`)
	defer srv.Close()

	client := NewAdvisorClient(srv.URL, WithHTTPClient(&http.Client{Transport: &http.Transport{}}))
	ctrl := NewController(client)
	defer ctrl.Close()

	form := ctrl.Form()
	require.NoError(t, form.Set(FieldDistrict, "Colombo"))
	require.NoError(t, form.Set(FieldBuildingType, "office"))
	require.NoError(t, form.Set(FieldFloorAreaM2, "1200"))
	require.NoError(t, form.Set(FieldHVACType, "central AC"))

	_, err := ctrl.Send(context.Background(), "New office in Colombo, 1200 m², central AC")
	require.NoError(t, err)

	reqs := rec.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{
		"message": "New office in Colombo, 1200 m², central AC",
		"context": {"district":"Colombo","building_type":"office","floor_area_m2":1200,"hvac_type":"central AC"}
	}`, string(reqs[0].Body))

	msgs := ctrl.Transcript().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
	assert.Equal(t, "YES", msgs[1].Meta.Applies.Label())
	assert.False(t, ctrl.Busy())

	client.httpClient.CloseIdleConnections()
}
