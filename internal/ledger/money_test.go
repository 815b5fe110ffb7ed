package ledger

import (
	"math/rand"
	"testing"
)

func TestRound_两位小数(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.006, 1.01},
		{2.674, 2.67},
		{10.0, 10.0},
		{0.1 + 0.2, 0.3},
		{-1.006, -1.01},
	}
	for _, c := range cases {
		if got := Round(c.in); got != c.want {
			t.Fatalf("Round(%v)=%v, want %v", c.in, got, c.want)
		}
	}
}

func TestWallet_借记恰好归零删除条目(t *testing.T) {
	w := Wallet{{Currency: "USD", Amount: 10}}
	out, ok := w.Debit("USD", 10)
	if !ok {
		t.Fatalf("期望借记成功")
	}
	if len(out) != 0 {
		t.Fatalf("余额归零时应删除条目, got=%v", out)
	}
}

func TestWallet_余额不足借记失败且钱包不变(t *testing.T) {
	w := Wallet{{Currency: "USD", Amount: 5}}
	out, ok := w.Debit("USD", 5.01)
	if ok {
		t.Fatalf("余额不足不应借记成功")
	}
	if out.Amount("USD") != 5 {
		t.Fatalf("失败时钱包必须保持不变, got=%v", out)
	}
}

func TestWallet_随机交易序列守恒(t *testing.T) {
	// 买 q 件单价 p 的商品：买方减 Round(q×p)，卖方加同一数额。
	rnd := rand.New(rand.NewSource(7))
	buyer := Wallet{{Currency: "USD", Amount: 100000}}
	var seller Wallet

	for i := 0; i < 2000; i++ {
		q := rnd.Intn(20) + 1
		p := Round(rnd.Float64() * 30)
		cost := Round(float64(q) * p)

		next, ok := buyer.Debit("USD", cost)
		if !ok {
			continue
		}
		buyer = next
		seller = seller.Credit("USD", cost)

		total := Round(buyer.Amount("USD") + seller.Amount("USD"))
		if total != 100000 {
			t.Fatalf("第 %d 笔交易后总额不守恒: %v", i, total)
		}
		if !buyer.Valid() || !seller.Valid() {
			t.Fatalf("钱包不变量被破坏: buyer=%v seller=%v", buyer, seller)
		}
	}
}

func TestTreasury_借记不足返回假(t *testing.T) {
	tr := Treasury{"gold": 3}
	if tr.Debit("gold", 3.5) {
		t.Fatalf("余额不足不应成功")
	}
	if tr["gold"] != 3 {
		t.Fatalf("失败时国库必须保持不变")
	}
	if !tr.Debit("gold", 3) {
		t.Fatalf("足额借记应成功")
	}
}
