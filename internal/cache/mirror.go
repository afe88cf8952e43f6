package cache

import "sync"

// mirror is an in-process read-through copy of the two hottest
// tables. Within one selection run every symbol's fundamentals and
// financials are read several times (scoring, diagnostics, snapshot)
// and the mirror keeps those reads off the database. Each map has its
// own RWMutex so concurrent readers never block each other; only
// writers serialize.
type mirror struct {
	fundMu sync.RWMutex
	funds  map[string]*Fundamental

	finMu sync.RWMutex
	fins  map[string]*Financial
}

func newMirror() *mirror {
	return &mirror{
		funds: make(map[string]*Fundamental),
		fins:  make(map[string]*Financial),
	}
}

func (m *mirror) getFundamental(symbol string) (*Fundamental, bool) {
	m.fundMu.RLock()
	defer m.fundMu.RUnlock()
	f, ok := m.funds[symbol]
	return f, ok
}

func (m *mirror) putFundamental(f *Fundamental) {
	m.fundMu.Lock()
	defer m.fundMu.Unlock()
	m.funds[f.Symbol] = f
}

func (m *mirror) getFinancial(symbol string) (*Financial, bool) {
	m.finMu.RLock()
	defer m.finMu.RUnlock()
	f, ok := m.fins[symbol]
	return f, ok
}

func (m *mirror) putFinancial(f *Financial) {
	m.finMu.Lock()
	defer m.finMu.Unlock()
	m.fins[f.Symbol] = f
}

func (m *mirror) dropFundamental(symbol string) {
	m.fundMu.Lock()
	defer m.fundMu.Unlock()
	if symbol == "" {
		m.funds = make(map[string]*Fundamental)
	} else {
		delete(m.funds, symbol)
	}
}

func (m *mirror) dropFinancial(symbol string) {
	m.finMu.Lock()
	defer m.finMu.Unlock()
	if symbol == "" {
		m.fins = make(map[string]*Financial)
	} else {
		delete(m.fins, symbol)
	}
}

// reset clears both maps. Called on force refresh.
func (m *mirror) reset() {
	m.dropFundamental("")
	m.dropFinancial("")
}
