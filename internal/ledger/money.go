package ledger

import "math"

// Round 把金额圆整到两位小数。取 half away from zero 而不是
// 银行家舍入，与线上账本的历史行为保持一致。
// 所有余额入库前、所有金额比较前都必须先过这里，
// 防止成千上万笔交易累积出浮点漂移。
func Round(x float64) float64 {
	return math.Round(x*100) / 100
}

// Entry 是钱包里的一条持币记录；同一钱包内货币唯一。
type Entry struct {
	Currency string  `bson:"currency" json:"currency"`
	Amount   float64 `bson:"amount" json:"amount"`
}

// Wallet 是公民钱包 / 公司资金的共用表示。
type Wallet []Entry

// Amount 返回某货币的当前余额（已圆整），没有条目时为 0。
func (w Wallet) Amount(currency string) float64 {
	for _, e := range w {
		if e.Currency == currency {
			return Round(e.Amount)
		}
	}
	return 0
}

// Credit 返回入账后的新钱包；不存在该货币时追加条目。
func (w Wallet) Credit(currency string, amount float64) Wallet {
	amount = Round(amount)
	out := make(Wallet, 0, len(w)+1)
	credited := false
	for _, e := range w {
		if e.Currency == currency {
			e.Amount = Round(e.Amount + amount)
			credited = true
		}
		out = append(out, e)
	}
	if !credited {
		out = append(out, Entry{Currency: currency, Amount: amount})
	}
	return out
}

// Debit 返回出账后的新钱包；余额恰好归零时删除条目。
// 余额不足返回 ok=false，钱包不变。
func (w Wallet) Debit(currency string, amount float64) (Wallet, bool) {
	amount = Round(amount)
	balance := w.Amount(currency)
	if balance < amount {
		return w, false
	}

	out := make(Wallet, 0, len(w))
	for _, e := range w {
		if e.Currency != currency {
			out = append(out, e)
			continue
		}
		rest := Round(e.Amount - amount)
		if rest == 0 {
			continue
		}
		out = append(out, Entry{Currency: currency, Amount: rest})
	}
	return out, true
}

// Valid 校验钱包不变量：货币唯一、金额非负。
func (w Wallet) Valid() bool {
	seen := make(map[string]struct{}, len(w))
	for _, e := range w {
		if _, dup := seen[e.Currency]; dup {
			return false
		}
		if e.Amount < 0 {
			return false
		}
		seen[e.Currency] = struct{}{}
	}
	return true
}

// Treasury 是国库的货币 -> 余额映射。
type Treasury map[string]float64

// Credit 入账（已圆整）。
func (t Treasury) Credit(currency string, amount float64) {
	t[currency] = Round(t[currency] + Round(amount))
}

// Debit 出账；余额不足返回 false，国库不变。
func (t Treasury) Debit(currency string, amount float64) bool {
	amount = Round(amount)
	if Round(t[currency]) < amount {
		return false
	}
	t[currency] = Round(t[currency] - amount)
	return true
}
