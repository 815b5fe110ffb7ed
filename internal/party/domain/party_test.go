package domain

import (
	"errors"
	"testing"
	"time"
)

func TestJoinLeave_基本流转(t *testing.T) {
	p := NewParty("pt1", "Workers", "usa", time.Now())
	if err := p.Join("c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := p.Join("c1"); !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("重复入党应失败, got=%v", err)
	}

	notElectionDay := time.Date(2026, 5, 16, 12, 0, 0, 0, time.UTC)
	if err := p.Leave("c1", notElectionDay); err != nil {
		t.Fatalf("err=%v", err)
	}
	if err := p.Leave("c1", notElectionDay); !errors.Is(err, ErrNotMember) {
		t.Fatalf("非党员退党应失败, got=%v", err)
	}
}

func TestLeave_选举日锁定(t *testing.T) {
	p := NewParty("pt1", "Workers", "usa", time.Now())
	if err := p.Join("c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	electionDay := time.Date(2026, 5, 25, 12, 0, 0, 0, time.UTC)
	if err := p.Leave("c1", electionDay); !errors.Is(err, ErrElectionDayLock) {
		t.Fatalf("选举日退党应锁定, got=%v", err)
	}
}

func TestLeave_官员退党清空职位(t *testing.T) {
	p := NewParty("pt1", "Workers", "usa", time.Now())
	if err := p.Join("c1"); err != nil {
		t.Fatalf("err=%v", err)
	}
	p.AppointPresident("c1")

	day := time.Date(2026, 5, 16, 12, 0, 0, 0, time.UTC)
	if err := p.Leave("c1", day); err != nil {
		t.Fatalf("err=%v", err)
	}
	if p.President != "" {
		t.Fatalf("主席退党应清空职位, got=%q", p.President)
	}
}

func TestSetStance_仅官员(t *testing.T) {
	p := NewParty("pt1", "Workers", "usa", time.Now())
	p.AppointPresident("c1")

	if err := p.SetStance("c2", "tax", "lower"); !errors.Is(err, ErrNotPartyOfficial) {
		t.Fatalf("非官员改党纲应失败, got=%v", err)
	}
	if err := p.SetStance("c1", "tax", "lower"); err != nil {
		t.Fatalf("err=%v", err)
	}
	if p.Stances["tax"] != "lower" {
		t.Fatalf("stances=%v", p.Stances)
	}
}
