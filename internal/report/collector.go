package report

import "errors"

// ErrNoAccounts is returned when a full pass over a document yields no valid account.
var ErrNoAccounts = errors.New("no valid accounts found")

// Collector accumulates accepted records in block order.
type Collector struct {
	accounts []Account
}

// Add appends a record.
func (c *Collector) Add(a Account) {
	c.accounts = append(c.accounts, a)
}

// Len is the number of collected records.
func (c *Collector) Len() int { return len(c.accounts) }

// Accounts returns the collected records in the order they were added.
func (c *Collector) Accounts() []Account {
	out := make([]Account, len(c.accounts))
	copy(out, c.accounts)
	return out
}

// Result returns the collected records, or ErrNoAccounts if there are none.
func (c *Collector) Result() ([]Account, error) {
	if len(c.accounts) == 0 {
		return nil, ErrNoAccounts
	}
	return c.Accounts(), nil
}
