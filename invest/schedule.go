/*
schedule.go - Payment schedule generation

PURPOSE:
  Given a committed investment and its commit timestamp, produce the fixed
  sequence of future Payment records: N installments of roundTo3(total/N)
  each, due at commit + (i+1) * interval for i in [0, N-1].

  Generation is pure; the lifecycle persists the schedule in the same atomic
  unit as the Investment itself, so no Investment ever exists without its
  full schedule.
*/
package invest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Schedule is the generated installment sequence plus the maturity date
// (the due date of the final installment).
type Schedule struct {
	Payments []*Payment
	Maturity time.Time
}

// BuildSchedule creates the full installment sequence for an investment
// committed at the given instant. Indices are dense over [0, N-1] and due
// dates strictly increase by terms.Interval.
func BuildSchedule(wallet *Wallet, inv *Investment, at time.Time, terms Terms) Schedule {
	n := terms.Installments
	amount := roundTo3(inv.Total.Div(decimal.NewFromInt(int64(n))))

	payments := make([]*Payment, 0, n)
	var maturity time.Time
	for i := 0; i < n; i++ {
		due := at.Add(time.Duration(i+1) * terms.Interval)
		payments = append(payments, &Payment{
			ID:           NewPaymentID(),
			InvestmentID: inv.ID,
			WalletID:     wallet.ID,
			Index:        i,
			Amount:       amount,
			Date:         due,
			Status:       PaymentOnQueue,
		})
		maturity = due
	}

	return Schedule{Payments: payments, Maturity: maturity}
}
