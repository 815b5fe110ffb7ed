package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	electiondomain "WorldRepublic/internal/election/domain"
)

type fakeElections struct {
	elections map[string]*electiondomain.Election
	ranFor    []string
}

func (f *fakeElections) Get(ctx context.Context, id string) (*electiondomain.Election, error) {
	e, ok := f.elections[id]
	if !ok {
		return nil, errors.New("election not found")
	}
	return e, nil
}

func (f *fakeElections) Vote(ctx context.Context, voterID, electionID, candidateID string) error {
	return nil
}

func (f *fakeElections) RunFor(ctx context.Context, citizenID, electionID string) error {
	f.ranFor = append(f.ranFor, citizenID+"@"+electionID)
	return nil
}

func TestRunFor_选举类型错配(t *testing.T) {
	elections := &fakeElections{elections: map[string]*electiondomain.Election{
		"e1": {ID: "e1", Type: electiondomain.TypeCongress},
	}}
	h := runForHandler(Services{Elections: elections}, electiondomain.TypeCountryPresident)

	_, err := h(context.Background(), "c1", json.RawMessage(`{"election":"e1"}`))
	if !errors.Is(err, errBadPayload) {
		t.Fatalf("got=%v", err)
	}
	if len(elections.ranFor) != 0 {
		t.Fatalf("错配不应登记参选")
	}
}

func TestRunFor_类型一致登记(t *testing.T) {
	elections := &fakeElections{elections: map[string]*electiondomain.Election{
		"e1": {ID: "e1", Type: electiondomain.TypeCongress},
	}}
	h := runForHandler(Services{Elections: elections}, electiondomain.TypeCongress)

	if _, err := h(context.Background(), "c1", json.RawMessage(`{"election":"e1"}`)); err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(elections.ranFor) != 1 || elections.ranFor[0] != "c1@e1" {
		t.Fatalf("ranFor=%v", elections.ranFor)
	}
}

func TestDecode_空参数与坏JSON(t *testing.T) {
	type payload struct {
		Company string `json:"company"`
	}

	if _, err := decode[payload](nil); !errors.Is(err, errBadPayload) {
		t.Fatalf("got=%v", err)
	}
	if _, err := decode[payload](json.RawMessage(`{broken`)); !errors.Is(err, errBadPayload) {
		t.Fatalf("got=%v", err)
	}
	p, err := decode[payload](json.RawMessage(`{"company":"co1"}`))
	if err != nil || p.Company != "co1" {
		t.Fatalf("p=%+v err=%v", p, err)
	}
}

func TestRuntime_经actor串行执行(t *testing.T) {
	calls := 0
	d := newTestDispatcher(t, map[Action]HandlerFunc{
		ActionTrain: func(ctx context.Context, uid string, data json.RawMessage) (any, error) {
			calls++
			return nil, nil
		},
	}, nil)

	rt := NewRuntime(d, 2*time.Second)
	defer rt.Shutdown()

	for i := 0; i < 3; i++ {
		res := rt.Execute(context.Background(), "c1", ActionTrain, nil)
		if !res.Success {
			t.Fatalf("res=%+v", res)
		}
	}
	if calls != 3 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestRuntime_空uid(t *testing.T) {
	rt := NewRuntime(newTestDispatcher(t, nil, nil), 2*time.Second)
	defer rt.Shutdown()

	res := rt.Execute(context.Background(), "", ActionTrain, nil)
	if res.Success {
		t.Fatalf("空 uid 不应成功")
	}
}
