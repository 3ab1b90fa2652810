// SPDX-License-Identifier: Apache-2.0

package mocks

type Rows struct {
	CloseFn   func()
	ErrFn     func() error
	NextFn    func(i uint) bool
	ScanFn    func(i uint, dest ...any) error
	nextCalls uint
}

func (m *Rows) Close() {
	if m.CloseFn != nil {
		m.CloseFn()
	}
}

func (m *Rows) Err() error {
	if m.ErrFn != nil {
		return m.ErrFn()
	}
	return nil
}

func (m *Rows) Next() bool {
	m.nextCalls++
	return m.NextFn(m.nextCalls)
}

// Scan passes the index of the current row, starting at 1.
func (m *Rows) Scan(dest ...any) error {
	return m.ScanFn(m.nextCalls, dest...)
}

// NewRows returns rows that scan each of the given values into the
// destinations, in order.
func NewRows(values ...[]any) *Rows {
	return &Rows{
		NextFn: func(i uint) bool {
			return i <= uint(len(values))
		},
		ScanFn: func(i uint, dest ...any) error {
			return ScanValues(values[i-1], dest...)
		},
	}
}
