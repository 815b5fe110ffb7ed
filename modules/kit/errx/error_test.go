package errx

import (
	"errors"
	"fmt"
	"testing"
)

func TestIs_只按错误码比较(t *testing.T) {
	derived := ErrConflict.WithData("voter_id", 42).WithCause(errors.New("dup"))
	if !errors.Is(derived, ErrConflict) {
		t.Fatalf("期望派生错误与哨兵错误同语义")
	}
	if errors.Is(derived, ErrNotFound) {
		t.Fatalf("不同错误码不应判定相同")
	}
}

func TestWithCause_保留溯源链(t *testing.T) {
	root := errors.New("mongo: write exception")
	err := ErrUnavailable.WithCause(fmt.Errorf("save citizen: %w", root))
	if !errors.Is(err, root) {
		t.Fatalf("期望沿 cause 链找到根因, got=%v", err)
	}
}

func TestWithCause_内部错误捕获一次栈(t *testing.T) {
	err := ErrInternal.WithCause(errors.New("boom"))
	if len(err.Stack()) == 0 {
		t.Fatalf("期望内部错误捕获栈")
	}

	// 再次 wrap 不应重复捕获
	outer := ErrUnavailable.WithCause(err)
	if len(outer.Stack()) != 0 {
		t.Fatalf("下层已有栈时不应再次捕获")
	}
}

func TestWithData_不污染哨兵(t *testing.T) {
	_ = ErrInsufficient.WithData("currency", "USD")
	if ErrInsufficient.Data() != nil {
		t.Fatalf("哨兵错误的 data 应保持为空")
	}
}

func TestKindOf_链上无Error归为内部错误(t *testing.T) {
	if KindOf(errors.New("raw")) != KindInternal {
		t.Fatalf("裸错误应归为内部错误")
	}
	if KindOf(ErrUnauthorized.WithData("company", "c1")) != KindUnauthorized {
		t.Fatalf("期望提取到 KindUnauthorized")
	}
}
