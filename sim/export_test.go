package sim

// SetDecisionOrder overrides the order in which agents decide within a round.
func SetDecisionOrder(p *Population, order func([]*Agent) []*Agent) {
	p.order = order
}
