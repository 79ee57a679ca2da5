package execution

import (
	"sync"

	"github.com/yourusername/quantlink-strategy-host/pkg/model"
)

// PortfolioView answers aggregate exposure queries over the database.
type PortfolioView struct {
	mu         sync.RWMutex
	db         *Database
	strategies map[model.StrategyID]struct{}
}

// NewPortfolioView returns a portfolio over the given database.
func NewPortfolioView(db *Database) *PortfolioView {
	return &PortfolioView{
		db:         db,
		strategies: make(map[model.StrategyID]struct{}),
	}
}

// Track registers a strategy so IsCompletelyFlat covers it.
func (p *PortfolioView) Track(strategyID model.StrategyID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategies[strategyID] = struct{}{}
}

// IsStrategyFlat implements strategy.Portfolio.
func (p *PortfolioView) IsStrategyFlat(strategyID model.StrategyID) bool {
	return p.db.PositionsOpenCount(strategyID) == 0
}

// IsCompletelyFlat implements strategy.Portfolio.
func (p *PortfolioView) IsCompletelyFlat() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for strategyID := range p.strategies {
		if !p.IsStrategyFlat(strategyID) {
			return false
		}
	}
	return true
}
